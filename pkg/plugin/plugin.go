// Package plugin is the registry that discovers, isolates, and supervises
// data-source plugins (spec component E): archive security scanning,
// process-isolated execution, lifecycle management, and idle/memory/capacity
// eviction.
package plugin

import "github.com/yesoreyeram/thaiyyal/backend/pkg/types"

// Manifest describes a plugin archive on disk: the metadata the security
// scan and the registry's catalog both need, independent of whether the
// plugin is actually loaded yet.
type Manifest struct {
	ID           string
	Name         string
	Version      string
	Author       string
	Description  string
	EntryPoint   string   // path to the plugin's executable, relative to the archive root
	Dependencies []string // third-party dependency strings, as declared by the plugin
	Files        map[string]int64
	SizeBytes    int64
	HasSPI       bool // whether the archive declares the Plugin service interface

	// ConfigSchema is an optional JSON Schema (draft-07) the plugin's
	// globalConfig must satisfy before Initialize is called. Plugins that
	// don't declare one skip this check entirely.
	ConfigSchema string
}

// Priority orders candidates for capacity eviction (§4.8.2): lower priority
// plugins are evicted first. Idle and memory-pressure eviction ignore it.
type Priority int

const (
	PriorityLow      Priority = 0
	PriorityNormal   Priority = 1
	PriorityCritical Priority = 2 // evicted last by capacity; only SystemCritical exempts a plugin from eviction
)

// Descriptor is the registry's catalog record: the loaded plugin plus
// everything the resource manager and the security log need to know about
// it, independent of the plugin's own Plugin interface.
type Descriptor struct {
	Manifest Manifest
	Priority Priority

	// SystemCritical plugins are exempt from every eviction pass regardless
	// of priority or idle time.
	SystemCritical bool
}

// instance pairs a loaded Plugin with its descriptor and the process handle
// that isolates it, plus the usage bookkeeping the resource manager reads.
type instance struct {
	descriptor Descriptor
	plugin     types.Plugin
	process    *isolatedProcess
	usage      *usageTracker
}
