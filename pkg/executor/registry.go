package executor

import (
	"fmt"
	"sync"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// Registry manages node executor registration and lookup.
// It provides thread-safe registration and execution of node executors.
type Registry struct {
	executors map[types.NodeKind]NodeExecutor
	mu        sync.RWMutex
}

// NewRegistry creates a new executor registry
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[types.NodeKind]NodeExecutor),
	}
}

// Register adds an executor to the registry.
// Returns error if an executor for this kind already exists.
func (r *Registry) Register(exec NodeExecutor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := exec.Kind()
	if _, exists := r.executors[kind]; exists {
		return fmt.Errorf("executor already registered for kind: %s", kind)
	}

	r.executors[kind] = exec
	return nil
}

// MustRegister registers an executor and panics on error.
func (r *Registry) MustRegister(exec NodeExecutor) {
	if err := r.Register(exec); err != nil {
		panic(err)
	}
}

// Execute dispatches execution to the appropriate executor for the node kind.
func (r *Registry) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	exec := r.GetExecutor(node.Kind)
	if exec == nil {
		return nil, fmt.Errorf("no executor registered for kind: %s", node.Kind)
	}
	return exec.Execute(ctx, node, input)
}

// Validate validates a node using its registered executor.
func (r *Registry) Validate(node types.Node) types.ValidationResult {
	exec := r.GetExecutor(node.Kind)
	if exec == nil {
		return types.ValidationResult{Errors: []string{fmt.Sprintf("no executor registered for kind: %s", node.Kind)}}
	}
	return exec.Validate(node)
}

// Destroy tears down a node if its executor supports it.
func (r *Registry) Destroy(node types.Node) error {
	exec := r.GetExecutor(node.Kind)
	if exec == nil {
		return nil
	}
	if d, ok := exec.(Destroyer); ok {
		return d.Destroy(node)
	}
	return nil
}

// GetExecutor returns the executor for a given node kind, or nil.
func (r *Registry) GetExecutor(kind types.NodeKind) NodeExecutor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.executors[kind]
}

// ListRegisteredKinds returns all registered node kinds.
func (r *Registry) ListRegisteredKinds() []types.NodeKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]types.NodeKind, 0, len(r.executors))
	for kind := range r.executors {
		kinds = append(kinds, kind)
	}
	return kinds
}

// DefaultRegistry returns a Registry with all six built-in node kinds
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(&InputExecutor{})
	r.MustRegister(&ScriptExecutor{})
	r.MustRegister(&DiagnosisExecutor{})
	r.MustRegister(&NotificationExecutor{})
	r.MustRegister(&PluginExecutor{})
	r.MustRegister(&ReferenceExecutor{})
	return r
}
