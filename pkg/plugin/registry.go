package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// Registry discovers plugins from two sources — in-process service
// declarations registered directly by RegisterInProcess, and archives on
// disk loaded via RegisterArchive — and maintains a catalog keyed by
// pluginId, mirroring the teacher's sync.RWMutex-guarded catalog idiom from
// workflow_registry.go and the lookup/register shape of pkg/executor's own
// node registry.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*instance
	scanCfg   ScanConfig
	logger    *logging.Logger
}

// New creates an empty plugin registry using the default security scan
// policy.
func New(logger *logging.Logger) *Registry {
	return &Registry{
		instances: make(map[string]*instance),
		scanCfg:   DefaultScanConfig(),
		logger:    logger,
	}
}

// WithScanConfig overrides the registry's security scan policy, enabling
// strict mode or tightening the default thresholds.
func (r *Registry) WithScanConfig(cfg ScanConfig) *Registry {
	r.scanCfg = cfg
	return r
}

// RegisterInProcess registers a plugin that already lives in the host's own
// address space (compiled in, not loaded from an archive). It still runs
// through the security scan and globalConfig initialization, since a
// misdeclared in-process plugin is just as able to violate policy as an
// archive one.
func (r *Registry) RegisterInProcess(manifest Manifest, impl types.Plugin, declaredSymbols []string, descriptor Descriptor, globalConfig map[string]interface{}) error {
	return r.register(manifest, impl, nil, declaredSymbols, descriptor, globalConfig)
}

// RegisterArchive launches the archive's entry point as an isolated OS
// process (§4.8's isolated symbol space) and registers the resulting
// RPC-backed plugin.
func (r *Registry) RegisterArchive(manifest Manifest, declaredSymbols []string, descriptor Descriptor, globalConfig map[string]interface{}) error {
	proc, err := launchIsolated(manifest.EntryPoint)
	if err != nil {
		return fmt.Errorf("launching plugin %q: %w", manifest.ID, err)
	}
	if err := r.register(manifest, proc.Plugin, proc, declaredSymbols, descriptor, globalConfig); err != nil {
		proc.shutdown()
		return err
	}
	return nil
}

func (r *Registry) register(manifest Manifest, impl types.Plugin, proc *isolatedProcess, declaredSymbols []string, descriptor Descriptor, globalConfig map[string]interface{}) error {
	findings := Scan(manifest, declaredSymbols, r.scanCfg)
	if HasCritical(findings) {
		return fmt.Errorf("plugin %q rejected by security scan: %v", manifest.ID, findings)
	}
	if r.logger != nil {
		for _, f := range findings {
			r.logger.WithField("plugin", manifest.ID).WithField("severity", string(f.Severity)).Warn(f.Message)
		}
	}

	if manifest.ConfigSchema != "" {
		if err := validateAgainstSchema(manifest.ConfigSchema, globalConfig); err != nil {
			return fmt.Errorf("plugin %q globalConfig failed schema validation: %w", manifest.ID, err)
		}
	}

	if err := impl.Initialize(globalConfig); err != nil {
		return fmt.Errorf("initializing plugin %q: %w", manifest.ID, err)
	}

	descriptor.Manifest = manifest

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instances[manifest.ID]; exists {
		return fmt.Errorf("plugin %q already registered", manifest.ID)
	}
	r.instances[manifest.ID] = &instance{
		descriptor: descriptor,
		plugin:     impl,
		process:    proc,
		usage:      newUsageTracker(),
	}
	return nil
}

// Unregister tears a plugin down: destroy, then dispose its process (if
// any). All handles into a disposed plugin process become unreachable.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	inst, exists := r.instances[id]
	if exists {
		delete(r.instances, id)
	}
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("plugin %q not registered", id)
	}

	err := inst.plugin.Destroy()
	if inst.process != nil {
		inst.process.shutdown()
	}
	return err
}

// GetPlugin resolves a registered plugin by id, recording an access for the
// resource manager's idle/LRU bookkeeping. Satisfies pkg/executor's
// PluginRegistry interface.
func (r *Registry) GetPlugin(pluginID string) (types.Plugin, error) {
	r.mu.RLock()
	inst, exists := r.instances[pluginID]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("plugin %q not found", pluginID)
	}
	inst.usage.touch()
	return inst.plugin, nil
}

// CreateConnection resolves the plugin and creates a scoped Connection.
// Satisfies pkg/executor's PluginRegistry interface.
func (r *Registry) CreateConnection(pluginID string, config map[string]interface{}, ctx context.Context) (types.Connection, error) {
	p, err := r.GetPlugin(pluginID)
	if err != nil {
		return nil, err
	}
	return p.CreateConnection(config, ctx)
}

// List returns the ids of every registered plugin.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.instances))
	for id := range r.instances {
		out = append(out, id)
	}
	return out
}

// Descriptor returns the catalog descriptor for a registered plugin.
func (r *Registry) Descriptor(id string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, exists := r.instances[id]
	if !exists {
		return Descriptor{}, false
	}
	return inst.descriptor, true
}

// Usage returns a snapshot of a plugin's access bookkeeping.
func (r *Registry) Usage(id string) (UsageInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, exists := r.instances[id]
	if !exists {
		return UsageInfo{}, false
	}
	return inst.usage.snapshot(), true
}

// validateAgainstSchema checks globalConfig against a plugin-declared JSON
// Schema before the plugin ever sees it.
func validateAgainstSchema(schema string, globalConfig map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(globalConfig)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%v", msgs)
	}
	return nil
}
