// Package workflowregistry is the named catalog of workflows (spec component
// F): registration, status, versioning, and the dependency-edge DFS that
// guards Reference-node invocation against circular sub-workflow chains.
package workflowregistry

import (
	"fmt"
	"sync"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflow"
)

// Status is the lifecycle state of a registered workflow.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Entry is one catalog record: the built workflow plus registry-owned
// bookkeeping the workflow itself doesn't carry.
type Entry struct {
	Workflow         *workflow.Workflow
	Status           Status
	Version          string
	Description      string
	RegistrationTime time.Time
	LastAccessTime   time.Time
	// DependsOn lists the workflow ids this workflow's Reference nodes target,
	// used by HasCircularDependency.
	DependsOn []string
}

// Registry is a sync-guarded map of workflow id -> Entry, mirroring the
// teacher's workflow catalog (copy-on-read, Register/Update/Get/Unregister).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New creates an empty workflow registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds a workflow under its id. Returns an error if the id is
// already registered; use Update to replace an existing entry.
func (r *Registry) Register(wf *workflow.Workflow, version, description string, dependsOn []string) error {
	id := wf.Meta().ID
	if id == "" {
		return fmt.Errorf("workflow id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("workflow %q already registered", id)
	}

	now := time.Now()
	r.entries[id] = &Entry{
		Workflow:         wf,
		Status:           StatusActive,
		Version:          version,
		Description:      description,
		RegistrationTime: now,
		LastAccessTime:   now,
		DependsOn:        dependsOn,
	}
	return nil
}

// Update replaces an existing entry's workflow/version/description/
// dependencies in place, preserving RegistrationTime.
func (r *Registry) Update(wf *workflow.Workflow, version, description string, dependsOn []string) error {
	id := wf.Meta().ID

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.entries[id]
	if !exists {
		return fmt.Errorf("workflow %q not registered", id)
	}

	existing.Workflow = wf
	existing.Version = version
	existing.Description = description
	existing.DependsOn = dependsOn
	existing.LastAccessTime = time.Now()
	return nil
}

// Unregister removes a workflow from the catalog.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return fmt.Errorf("workflow %q not registered", id)
	}
	delete(r.entries, id)
	return nil
}

// SetStatus transitions a workflow's lifecycle status.
func (r *Registry) SetStatus(id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return fmt.Errorf("workflow %q not registered", id)
	}
	entry.Status = status
	return nil
}

// Lookup returns the ACTIVE workflow for id, bumping its LastAccessTime.
// Reference invocation (§4.6) must use Lookup, never Get, so an
// administratively-paused workflow cannot be invoked as a sub-workflow.
func (r *Registry) Lookup(id string) (*workflow.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists || entry.Status != StatusActive {
		return nil, fmt.Errorf("workflow %q not found or not active", id)
	}
	entry.LastAccessTime = time.Now()
	return entry.Workflow, nil
}

// Get returns a copy of the full entry regardless of status, for
// administrative tooling.
func (r *Registry) Get(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return Entry{}, fmt.Errorf("workflow %q not registered", id)
	}
	return *entry, nil
}

// List returns a snapshot of every registered entry's id and status.
func (r *Registry) List() map[string]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Status, len(r.entries))
	for id, entry := range r.entries {
		out[id] = entry.Status
	}
	return out
}

// HasCircularDependency reports whether invoking `from` would (transitively,
// through registered DependsOn edges) reach `from` again — the guard
// Reference-node invocation runs before every sub-workflow call (§4.6/§4.9).
func (r *Registry) HasCircularDependency(from string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	visited := make(map[string]bool)
	var dfs func(id string) bool
	dfs = func(id string) bool {
		if id == from && visited[id] {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true

		entry, exists := r.entries[id]
		if !exists {
			return false
		}
		for _, dep := range entry.DependsOn {
			if dep == from {
				return true
			}
			if dfs(dep) {
				return true
			}
		}
		return false
	}

	entry, exists := r.entries[from]
	if !exists {
		return false
	}
	for _, dep := range entry.DependsOn {
		if dep == from || dfs(dep) {
			return true
		}
	}
	return false
}
