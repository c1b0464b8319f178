package plugin

import (
	"testing"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
)

func newTestRegistry() *Registry {
	return New(logging.New(logging.DefaultConfig()))
}

func TestRegisterInProcess_Succeeds(t *testing.T) {
	r := newTestRegistry()
	impl := newFakePlugin("p1")

	err := r.RegisterInProcess(validManifest("p1"), impl, nil, Descriptor{Priority: PriorityNormal}, map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !impl.initialized {
		t.Error("expected Initialize to be called")
	}

	got, err := r.GetPlugin("p1")
	if err != nil {
		t.Fatalf("GetPlugin: %v", err)
	}
	if got.ID() != "p1" {
		t.Errorf("got plugin id %q, want p1", got.ID())
	}
}

func TestRegisterInProcess_DuplicateRejected(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterInProcess(validManifest("dup"), newFakePlugin("dup"), nil, Descriptor{}, nil); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.RegisterInProcess(validManifest("dup"), newFakePlugin("dup"), nil, Descriptor{}, nil); err == nil {
		t.Fatal("expected error registering duplicate plugin id")
	}
}

// TestRegisterInProcess_RejectedBySecurityScan exercises the scenario where
// a plugin that doesn't declare the service interface is refused
// registration and never appears in the registry.
func TestRegisterInProcess_RejectedBySecurityScan(t *testing.T) {
	r := newTestRegistry()
	manifest := validManifest("bad")
	manifest.HasSPI = false

	if err := r.RegisterInProcess(manifest, newFakePlugin("bad"), nil, Descriptor{}, nil); err == nil {
		t.Fatal("expected registration to be rejected")
	}
	if _, err := r.GetPlugin("bad"); err == nil {
		t.Fatal("plugin should not be present in the registry after rejection")
	}
}

func TestRegisterInProcess_RejectedByBlockedSymbol(t *testing.T) {
	r := newTestRegistry()
	err := r.RegisterInProcess(validManifest("sneaky"), newFakePlugin("sneaky"), []string{"os/exec.Command"}, Descriptor{}, nil)
	if err == nil {
		t.Fatal("expected registration to be rejected for blocked symbol")
	}
}

func TestRegisterInProcess_InitializeFailurePropagates(t *testing.T) {
	r := newTestRegistry()
	impl := newFakePlugin("failing")
	impl.initErr = errBoom

	if err := r.RegisterInProcess(validManifest("failing"), impl, nil, Descriptor{}, nil); err == nil {
		t.Fatal("expected Initialize error to propagate")
	}
	if _, err := r.GetPlugin("failing"); err == nil {
		t.Fatal("plugin should not be registered when Initialize fails")
	}
}

func TestRegisterInProcess_SchemaValidation(t *testing.T) {
	r := newTestRegistry()
	manifest := validManifest("schema")
	manifest.ConfigSchema = `{"type":"object","required":["endpoint"],"properties":{"endpoint":{"type":"string"}}}`

	if err := r.RegisterInProcess(manifest, newFakePlugin("schema"), nil, Descriptor{}, map[string]interface{}{}); err == nil {
		t.Fatal("expected schema validation failure for missing required field")
	}

	manifest2 := validManifest("schema2")
	manifest2.ConfigSchema = manifest.ConfigSchema
	if err := r.RegisterInProcess(manifest2, newFakePlugin("schema2"), nil, Descriptor{}, map[string]interface{}{"endpoint": "http://x"}); err != nil {
		t.Fatalf("expected schema validation to pass: %v", err)
	}
}

func TestUnregister_DestroysPlugin(t *testing.T) {
	r := newTestRegistry()
	impl := newFakePlugin("u1")
	if err := r.RegisterInProcess(validManifest("u1"), impl, nil, Descriptor{}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := r.Unregister("u1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if !impl.destroyed {
		t.Error("expected Destroy to be called")
	}
	if _, err := r.GetPlugin("u1"); err == nil {
		t.Fatal("plugin should be gone after unregister")
	}
}

func TestUnregister_UnknownID(t *testing.T) {
	r := newTestRegistry()
	if err := r.Unregister("nope"); err == nil {
		t.Fatal("expected error unregistering unknown plugin")
	}
}

func TestGetPlugin_TracksUsage(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterInProcess(validManifest("tracked"), newFakePlugin("tracked"), nil, Descriptor{}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := r.GetPlugin("tracked"); err != nil {
		t.Fatalf("get: %v", err)
	}
	usage, ok := r.Usage("tracked")
	if !ok {
		t.Fatal("expected usage info for registered plugin")
	}
	if usage.AccessCount < 1 {
		t.Errorf("AccessCount = %d, want >= 1", usage.AccessCount)
	}
}

func TestCreateConnection_DelegatesToPlugin(t *testing.T) {
	r := newTestRegistry()
	if err := r.RegisterInProcess(validManifest("conn"), newFakePlugin("conn"), nil, Descriptor{}, nil); err != nil {
		t.Fatalf("register: %v", err)
	}

	conn, err := r.CreateConnection("conn", nil, nil)
	if err != nil {
		t.Fatalf("CreateConnection: %v", err)
	}
	if !conn.IsConnected() {
		t.Error("expected a connected connection")
	}
	if err := conn.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestList_ReturnsAllRegistered(t *testing.T) {
	r := newTestRegistry()
	r.RegisterInProcess(validManifest("a"), newFakePlugin("a"), nil, Descriptor{}, nil)
	r.RegisterInProcess(validManifest("b"), newFakePlugin("b"), nil, Descriptor{}, nil)

	ids := r.List()
	if len(ids) != 2 {
		t.Fatalf("List() = %v, want 2 entries", ids)
	}
}

func TestDescriptor_ReturnsStoredDescriptor(t *testing.T) {
	r := newTestRegistry()
	r.RegisterInProcess(validManifest("d"), newFakePlugin("d"), nil, Descriptor{Priority: PriorityCritical, SystemCritical: true}, nil)

	d, ok := r.Descriptor("d")
	if !ok {
		t.Fatal("expected descriptor to be found")
	}
	if d.Priority != PriorityCritical || !d.SystemCritical {
		t.Errorf("descriptor = %+v, want priority critical + system critical", d)
	}
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom = boomError{}
