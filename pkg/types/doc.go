// Package types provides shared type definitions for the dataflow engine.
//
// # Overview
//
// This package contains all core data structures and type definitions used across
// the engine. It serves as the foundation for avoiding circular dependencies
// between other packages while providing a consistent type system.
//
// # Key Components
//
// Node Kinds: the closed set of node kinds a workflow document may declare
// (input, output, script, diagnosis, plugin, reference).
//
// Workflow Structure: core data structures for workflows, nodes, edges, and
// execution results.
//
// Execution Context: context keys and helpers for passing execution metadata.
//
// Plugin Contract: parameter specs and usage bookkeeping shared between the
// plugin registry and the node implementations that call into it.
//
// # Usage Example
//
//	wf := &types.Workflow{
//	    Meta: types.WorkflowMeta{ID: "example"},
//	    Nodes: []types.Node{
//	        {ID: "1", Kind: types.NodeKindInput, Config: map[string]any{"value": 42, "outputKey": "x"}},
//	        {ID: "2", Kind: types.NodeKindScript, Config: map[string]any{"expression": "input * 2", "inputKey": "x", "outputKey": "y"}},
//	    },
//	    Edges: []types.Edge{
//	        {Source: "1", Target: "2"},
//	    },
//	}
//
// # Design Principles
//
//   - Minimal dependencies: types imports only pkg/config, for the Config alias.
//   - Immutability: the *workflow.Workflow returned by pkg/workflow.Build does
//     not change afterwards; the plain types.Workflow struct is ordinary data.
//   - Type safety: strong typing for workflow components and plugin parameters.
//
// # Thread Safety
//
// The types defined in this package are generally not thread-safe for mutation.
// Concurrent access should be coordinated by the caller using appropriate synchronization.
package types
