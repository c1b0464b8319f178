package plugin

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
)

// ResourceManagerConfig tunes the eviction passes of §4.8.2.
type ResourceManagerConfig struct {
	// Cadence is how often the normal eviction pass runs (default 5 min).
	Cadence time.Duration

	// EmergencyCadence is how often the emergency pass runs when
	// utilization exceeds EmergencyThreshold (default 30s).
	EmergencyCadence time.Duration

	// IdleTimeout is how long a plugin may go unaccessed before idle
	// eviction considers it (default 30 min).
	IdleTimeout time.Duration

	// MemoryThreshold is the heap utilization fraction above which
	// memory-pressure eviction runs (default 0.8).
	MemoryThreshold float64

	// EmergencyThreshold is the heap utilization fraction above which the
	// emergency pass runs (default 0.9).
	EmergencyThreshold float64

	// MaxPlugins is the loaded-count cap above which capacity eviction
	// runs (default 50).
	MaxPlugins int

	// MaxMemoryEvictionsPerPass bounds how many plugins a single
	// memory-pressure pass unloads (default 5).
	MaxMemoryEvictionsPerPass int
}

// DefaultResourceManagerConfig returns the defaults named in §4.8.2.
func DefaultResourceManagerConfig() ResourceManagerConfig {
	return ResourceManagerConfig{
		Cadence:                   5 * time.Minute,
		EmergencyCadence:          30 * time.Second,
		IdleTimeout:               30 * time.Minute,
		MemoryThreshold:           0.8,
		EmergencyThreshold:        0.9,
		MaxPlugins:                50,
		MaxMemoryEvictionsPerPass: 5,
	}
}

// ResourceManager is the background eviction daemon of §4.8.2: idle,
// memory-pressure, and capacity eviction, all flowing through the
// registry's standard Unregister path. Its lock scope is per-plugin — it
// never holds a global lock while calling Destroy.
type ResourceManager struct {
	registry *Registry
	cfg      ResourceManagerConfig
	logger   *logging.Logger

	// heapUtilization lets tests substitute a synthetic reading instead of
	// the real runtime.MemStats-derived value.
	heapUtilization func() float64
}

// NewResourceManager creates a resource manager for the given registry.
func NewResourceManager(registry *Registry, cfg ResourceManagerConfig, logger *logging.Logger) *ResourceManager {
	return &ResourceManager{
		registry:        registry,
		cfg:             cfg,
		logger:          logger,
		heapUtilization: defaultHeapUtilization,
	}
}

func defaultHeapUtilization() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if stats.HeapSys == 0 {
		return 0
	}
	return float64(stats.HeapAlloc) / float64(stats.HeapSys)
}

// Run blocks, driving the normal and emergency eviction passes until ctx is
// cancelled.
func (m *ResourceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Cadence)
	defer ticker.Stop()
	emergency := time.NewTicker(m.cfg.EmergencyCadence)
	defer emergency.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runPass(false)
		case <-emergency.C:
			if m.heapUtilization() > m.cfg.EmergencyThreshold {
				m.runPass(true)
			}
		}
	}
}

// runPass executes one eviction sweep: idle, then memory-pressure, then
// capacity. emergency passes skip the idle check (it's a slow signal) and go
// straight to memory-pressure eviction.
func (m *ResourceManager) runPass(emergency bool) {
	now := time.Now()

	if !emergency {
		for _, id := range m.evictableIdle(now) {
			m.evict(id, "idle timeout exceeded")
		}
	}

	if m.heapUtilization() > m.cfg.MemoryThreshold {
		for _, id := range m.evictableByUsage(m.cfg.MaxMemoryEvictionsPerPass) {
			m.evict(id, "memory pressure")
			if m.heapUtilization() <= m.cfg.MemoryThreshold {
				break
			}
		}
	}

	for _, id := range m.evictableByCapacity() {
		m.evict(id, "capacity exceeded")
	}
}

func (m *ResourceManager) evict(id, reason string) {
	if err := m.registry.Unregister(id); err != nil {
		if m.logger != nil {
			m.logger.WithField("plugin", id).WithError(err).Warn("eviction failed")
		}
		return
	}
	if m.logger != nil {
		m.logger.WithField("plugin", id).WithField("reason", reason).Info("evicted plugin")
	}
}

func (m *ResourceManager) evictableIdle(now time.Time) []string {
	var ids []string
	for _, id := range m.registry.List() {
		descriptor, ok := m.registry.Descriptor(id)
		if !ok || descriptor.SystemCritical {
			continue
		}
		usage, ok := m.registry.Usage(id)
		if !ok {
			continue
		}
		if now.Sub(usage.LastAccessTime) > m.cfg.IdleTimeout {
			ids = append(ids, id)
		}
	}
	return ids
}

// evictableByUsage orders candidates (accessCount asc, lastAccessTime asc)
// per §4.8.2 and returns up to limit ids.
func (m *ResourceManager) evictableByUsage(limit int) []string {
	type candidate struct {
		id    string
		usage UsageInfo
	}
	var candidates []candidate
	for _, id := range m.registry.List() {
		descriptor, ok := m.registry.Descriptor(id)
		if !ok || descriptor.SystemCritical {
			continue
		}
		usage, ok := m.registry.Usage(id)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{id, usage})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].usage.AccessCount != candidates[j].usage.AccessCount {
			return candidates[i].usage.AccessCount < candidates[j].usage.AccessCount
		}
		return candidates[i].usage.LastAccessTime.Before(candidates[j].usage.LastAccessTime)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids
}

// evictableByCapacity returns the lowest-priority candidates needed to bring
// the loaded count back to MaxPlugins.
func (m *ResourceManager) evictableByCapacity() []string {
	all := m.registry.List()
	if len(all) <= m.cfg.MaxPlugins {
		return nil
	}

	type candidate struct {
		id       string
		priority Priority
	}
	var candidates []candidate
	for _, id := range all {
		descriptor, ok := m.registry.Descriptor(id)
		if !ok || descriptor.SystemCritical {
			continue
		}
		candidates = append(candidates, candidate{id, descriptor.Priority})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].priority < candidates[j].priority })

	overage := len(all) - m.cfg.MaxPlugins
	if overage > len(candidates) {
		overage = len(candidates)
	}
	ids := make([]string, overage)
	for i := 0; i < overage; i++ {
		ids[i] = candidates[i].id
	}
	return ids
}
