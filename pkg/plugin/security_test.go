package plugin

import "testing"

func TestScan_EmptyArchiveIsCritical(t *testing.T) {
	m := Manifest{HasSPI: true}
	findings := Scan(m, nil, DefaultScanConfig())
	if !HasCritical(findings) {
		t.Errorf("findings = %v, want a CRITICAL finding for an empty archive", findings)
	}
}

func TestScan_MissingSPIIsCritical(t *testing.T) {
	m := Manifest{SizeBytes: 10, HasSPI: false}
	findings := Scan(m, nil, DefaultScanConfig())
	if !HasCritical(findings) {
		t.Errorf("findings = %v, want a CRITICAL finding for missing SPI declaration", findings)
	}
}

func TestScan_BlockedSymbolIsCritical(t *testing.T) {
	m := Manifest{SizeBytes: 10, HasSPI: true}
	findings := Scan(m, []string{"foo.os.OpenFile.bar"}, DefaultScanConfig())
	if !HasCritical(findings) {
		t.Errorf("findings = %v, want a CRITICAL finding for blocked symbol reference", findings)
	}
}

func TestScan_CleanManifestHasNoCritical(t *testing.T) {
	m := Manifest{
		ID: "clean", Name: "Clean", Version: "1.0", Author: "me", Description: "ok",
		SizeBytes: 10, HasSPI: true,
	}
	findings := Scan(m, []string{"ReadData"}, DefaultScanConfig())
	if HasCritical(findings) {
		t.Errorf("findings = %v, want no CRITICAL findings", findings)
	}
}

func TestScan_OversizedArchiveIsWarning(t *testing.T) {
	cfg := DefaultScanConfig()
	m := Manifest{HasSPI: true, SizeBytes: cfg.MaxArchiveBytes + 1}
	findings := Scan(m, nil, cfg)

	found := false
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("findings = %v, want a WARNING for oversized archive", findings)
	}
}

func TestScan_DangerousSuffixIsWarning(t *testing.T) {
	m := Manifest{SizeBytes: 10, HasSPI: true}
	findings := Scan(m, []string{"DoThingUnsafe"}, DefaultScanConfig())

	found := false
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("findings = %v, want a WARNING for dangerous-suffix symbol", findings)
	}
}

func TestScan_MissingMetadataIsMinor(t *testing.T) {
	m := Manifest{SizeBytes: 10, HasSPI: true, Author: "someone"}
	findings := Scan(m, nil, DefaultScanConfig())

	found := false
	for _, f := range findings {
		if f.Severity == SeverityMinor {
			found = true
		}
	}
	if !found {
		t.Errorf("findings = %v, want a MINOR finding for missing name/version/description", findings)
	}
}

func TestScan_StrictNamingConvention(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.Strict = true
	m := Manifest{ID: "MyPlugin", SizeBytes: 10, HasSPI: true, Name: "n", Version: "v", Description: "d", Author: "a"}

	findings := Scan(m, nil, cfg)
	found := false
	for _, f := range findings {
		if f.Severity == SeverityMinor && f.Message == "plugin id does not follow lowercase naming convention" {
			found = true
		}
	}
	if !found {
		t.Errorf("findings = %v, want a naming-convention MINOR finding in strict mode", findings)
	}
}

func TestHasCritical_FalseForEmptyFindings(t *testing.T) {
	if HasCritical(nil) {
		t.Error("HasCritical(nil) = true, want false")
	}
}
