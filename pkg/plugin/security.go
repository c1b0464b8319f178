package plugin

import "strings"

// Severity is the level at which a security scan finding is reported.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Finding is one result of a security scan over a plugin archive.
type Finding struct {
	Severity Severity
	Message  string
}

// ScanConfig configures the structural security scan of §4.8.1. It is a
// fixed policy, not a sandbox: the scan never executes plugin code, it only
// inspects declared metadata and symbol names.
type ScanConfig struct {
	// MaxArchiveBytes is the size above which an archive earns a WARNING
	// (default 100 MB).
	MaxArchiveBytes int64

	// MaxFileBytes is the size above which any single file in the archive
	// earns a WARNING (default 10 MB).
	MaxFileBytes int64

	// BlockedSymbols is a fixed blocklist of symbol-name substrings that
	// earn a CRITICAL finding: process spawning, security-manager
	// mutation, raw filesystem writers outside standard APIs, reflective
	// loaders.
	BlockedSymbols []string

	// DangerousSuffixes earn a WARNING when a declared symbol name ends
	// with one of these.
	DangerousSuffixes []string

	// SuspiciousDependencySubstrings earn a WARNING when any declared
	// dependency string contains one of these.
	SuspiciousDependencySubstrings []string

	// Strict adds a naming-convention check (a MINOR finding when the
	// plugin id is not lowercase) to the fixed baseline policy. Scan runs no
	// test-connection probe, in strict mode or otherwise.
	Strict bool
}

// DefaultScanConfig returns the baseline policy named in §4.8.1.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MaxArchiveBytes: 100 * 1024 * 1024,
		MaxFileBytes:    10 * 1024 * 1024,
		BlockedSymbols: []string{
			"exec.Command", "os/exec", "SetSecurityManager",
			"os.OpenFile", "reflect.NewAt", "unsafe.Pointer",
		},
		DangerousSuffixes: []string{"Unsafe", "Native", "Raw"},
		SuspiciousDependencySubstrings: []string{
			"runtime", "process", "script", "eval", "unsafe",
		},
	}
}

// Scan runs the structural scan of §4.8.1 over a manifest and the symbols it
// declares. Registration must be rejected iff any finding is CRITICAL.
func Scan(manifest Manifest, declaredSymbols []string, cfg ScanConfig) []Finding {
	var findings []Finding

	if manifest.SizeBytes == 0 && len(manifest.Files) == 0 {
		findings = append(findings, Finding{SeverityCritical, "archive is empty"})
	}
	if !manifest.HasSPI {
		findings = append(findings, Finding{SeverityCritical, "archive does not declare the plugin service interface"})
	}
	for _, symbol := range declaredSymbols {
		for _, blocked := range cfg.BlockedSymbols {
			if strings.Contains(symbol, blocked) {
				findings = append(findings, Finding{SeverityCritical, "references blocked symbol: " + symbol})
			}
		}
	}

	if manifest.SizeBytes > cfg.MaxArchiveBytes {
		findings = append(findings, Finding{SeverityWarning, "archive exceeds maximum size"})
	}
	for path, size := range manifest.Files {
		if size > cfg.MaxFileBytes {
			findings = append(findings, Finding{SeverityWarning, "file exceeds maximum size: " + path})
		}
	}
	for _, symbol := range declaredSymbols {
		for _, suffix := range cfg.DangerousSuffixes {
			if strings.HasSuffix(symbol, suffix) {
				findings = append(findings, Finding{SeverityWarning, "symbol has dangerous suffix: " + symbol})
			}
		}
	}
	if manifest.Author == "" {
		findings = append(findings, Finding{SeverityWarning, "unknown author"})
	}
	for _, dep := range manifest.Dependencies {
		for _, suspicious := range cfg.SuspiciousDependencySubstrings {
			if strings.Contains(strings.ToLower(dep), suspicious) {
				findings = append(findings, Finding{SeverityWarning, "suspicious dependency: " + dep})
			}
		}
	}

	if manifest.Name == "" {
		findings = append(findings, Finding{SeverityMinor, "missing name metadata"})
	}
	if manifest.Version == "" {
		findings = append(findings, Finding{SeverityMinor, "missing version metadata"})
	}
	if manifest.Description == "" {
		findings = append(findings, Finding{SeverityMinor, "missing description metadata"})
	}

	if cfg.Strict {
		if manifest.ID != "" && strings.ToLower(manifest.ID) != manifest.ID {
			findings = append(findings, Finding{SeverityMinor, "plugin id does not follow lowercase naming convention"})
		}
	}

	return findings
}

// HasCritical reports whether any finding is CRITICAL, the sole condition
// under which registration must be rejected.
func HasCritical(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
