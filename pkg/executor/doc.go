// Package executor implements the node contract and the six built-in node
// kinds of the dataflow engine.
//
// # Overview
//
// Every node in a workflow document is one of: Input, Output (notification),
// Script, Diagnosis, Plugin, or Reference. Each kind has a dedicated
// NodeExecutor that validates its config and executes it against an
// ExecutionContext.
//
// # Node Contract
//
//	type NodeExecutor interface {
//	    Kind() types.NodeKind
//	    Validate(node types.Node) types.ValidationResult
//	    Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error)
//	}
//
// Validate is pure and inspects only config. Execute may read and write the
// execution context; it must not panic across the boundary. Node kinds that
// hold long-lived handles may additionally implement Destroyer; none of the
// six built-in executors does.
//
// # ExecutionContext
//
// ExecutionContext is the seam that keeps leaf node executors from importing
// the scheduler, the plugin registry, the workflow registry, or the
// notification dispatcher directly. Those packages implement the small
// collaborator interfaces declared here (PluginRegistry, ReferenceInvoker,
// NotificationDispatcher); the scheduler wires the concrete instances in at
// construction time.
//
// # Registry
//
// All executors are registered in a central registry:
//
//	registry := executor.NewRegistry()
//	registry.MustRegister(&executor.InputExecutor{})
//	registry.MustRegister(&executor.ScriptExecutor{})
//
// executor.DefaultRegistry() returns a Registry with all six built-in kinds
// already registered.
//
// # Error Taxonomy
//
// Node-level errors are wrapped in a NodeError carrying a stable ErrorCode
// (PLUGIN_NOT_FOUND, CONNECTION_FAILED, INVALID_CONFIG, READ_FAILED,
// CIRCULAR_DEPENDENCY, TIMEOUT, VALIDATION_FAILED, PREDECESSOR_FAILED) so
// callers can branch on failure kind without string-matching messages.
package executor
