package plugin

import (
	"sync"
	"time"
)

// UsageInfo is the per-plugin bookkeeping the resource manager reads to
// decide idle and memory-pressure eviction order.
type UsageInfo struct {
	CreateTime     time.Time
	LastAccessTime time.Time
	AccessCount    int64
}

// usageTracker records access times with a debounce: concurrent reads on a
// hot plugin would otherwise serialize on this tracker's lock far more often
// than the resource manager's cadence needs.
type usageTracker struct {
	mu             sync.Mutex
	createTime     time.Time
	lastAccessTime time.Time
	accessCount    int64
	debounce       time.Duration
}

const defaultUsageDebounce = time.Minute

func newUsageTracker() *usageTracker {
	now := time.Now()
	return &usageTracker{createTime: now, lastAccessTime: now, debounce: defaultUsageDebounce}
}

// touch records an access. Within the debounce window, repeated touches only
// bump AccessCount; LastAccessTime is updated at most once per window so a
// busy plugin doesn't look "freshly idle" on every single call.
func (u *usageTracker) touch() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.accessCount++
	now := time.Now()
	if now.Sub(u.lastAccessTime) >= u.debounce {
		u.lastAccessTime = now
	}
}

func (u *usageTracker) snapshot() UsageInfo {
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageInfo{
		CreateTime:     u.createTime,
		LastAccessTime: u.lastAccessTime,
		AccessCount:    u.accessCount,
	}
}

func (u *usageTracker) idleFor(now time.Time) time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	return now.Sub(u.lastAccessTime)
}
