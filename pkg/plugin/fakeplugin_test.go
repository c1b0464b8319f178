package plugin

import (
	"context"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// fakePlugin is a minimal in-memory types.Plugin used to exercise the
// registry without spawning a real OS process.
type fakePlugin struct {
	id           string
	initErr      error
	destroyed    bool
	initialized  bool
	lastConfig   map[string]interface{}
}

func newFakePlugin(id string) *fakePlugin {
	return &fakePlugin{id: id}
}

func (p *fakePlugin) ID() string          { return p.id }
func (p *fakePlugin) Name() string        { return "fake " + p.id }
func (p *fakePlugin) Version() string     { return "1.0.0" }
func (p *fakePlugin) Author() string      { return "test" }
func (p *fakePlugin) Description() string { return "fake plugin for tests" }
func (p *fakePlugin) SupportedParameters() []types.ParameterSpec { return nil }

func (p *fakePlugin) Initialize(globalConfig map[string]interface{}) error {
	p.lastConfig = globalConfig
	p.initialized = true
	return p.initErr
}

func (p *fakePlugin) ValidateConfig(config map[string]interface{}) types.ValidationResult {
	return types.ValidationResult{}
}

func (p *fakePlugin) CreateConnection(config map[string]interface{}, ctx context.Context) (types.Connection, error) {
	return &fakeConnection{}, nil
}

func (p *fakePlugin) TestConnection(config map[string]interface{}) (types.TestResult, error) {
	return types.TestResult{Success: true}, nil
}

func (p *fakePlugin) Destroy() error {
	p.destroyed = true
	return nil
}

type fakeConnection struct {
	closed bool
}

func (c *fakeConnection) ReadData(ctx context.Context) (interface{}, error) { return "data", nil }
func (c *fakeConnection) IsConnected() bool                                 { return !c.closed }
func (c *fakeConnection) ConnectionInfo() map[string]interface{}            { return nil }
func (c *fakeConnection) Close() error                                      { c.closed = true; return nil }

// validManifest returns a manifest that passes the baseline security scan:
// non-empty, SPI declared, no blocked symbols.
func validManifest(id string) Manifest {
	return Manifest{
		ID:          id,
		Name:        "Fake " + id,
		Version:     "1.0.0",
		Author:      "test",
		Description: "a fake plugin",
		HasSPI:      true,
		SizeBytes:   1024,
	}
}
