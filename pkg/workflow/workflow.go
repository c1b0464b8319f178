// Package workflow builds and validates the DAG value type (spec component
// D) from raw node/edge slices, enforcing §3's structural invariants before
// the scheduler ever sees a workflow.
package workflow

import (
	"fmt"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/executor"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/graph"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// Workflow is an immutable, validated DAG: unique node ids, well-formed
// edges, no self-loops, no cycles, at least one node.
type Workflow struct {
	meta  types.WorkflowMeta
	nodes map[string]types.Node
	order []string // insertion order, for deterministic iteration
	edges []types.Edge
	graph *graph.Graph
}

// Build constructs a Workflow from raw nodes/edges, running the full
// validation pass of §3. On failure it returns one error that lists every
// validation error; callers that need the errors as a list should call
// Validate directly instead.
func Build(meta types.WorkflowMeta, nodes []types.Node, edges []types.Edge) (*Workflow, error) {
	result := Validate(meta, nodes, edges)
	if !result.Valid() {
		return nil, fmt.Errorf("workflow validation failed: %v", result.Errors)
	}

	byID := make(map[string]types.Node, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		order = append(order, n.ID)
	}

	activeEdges := make([]types.Edge, 0, len(edges))
	for _, e := range edges {
		if e.IsEnabled() {
			activeEdges = append(activeEdges, e)
		}
	}

	return &Workflow{
		meta:  meta,
		nodes: byID,
		order: order,
		edges: edges,
		graph: graph.New(nodes, activeEdges),
	}, nil
}

// Validate checks §3's structural invariants and, for every node, its
// executor's own Validate. It never panics and always returns a complete
// ValidationResult rather than failing fast, so editors can surface every
// problem at once.
func Validate(meta types.WorkflowMeta, nodes []types.Node, edges []types.Edge) types.ValidationResult {
	var result types.ValidationResult

	if meta.ID == "" {
		result.Errors = append(result.Errors, "workflow.id: required")
	}
	if len(nodes) == 0 {
		result.Errors = append(result.Errors, "workflow.nodes: at least one node is required")
	}

	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			result.Errors = append(result.Errors, "node.id: required")
			continue
		}
		if seen[n.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("node.id %q: duplicate", n.ID))
			continue
		}
		seen[n.ID] = true

		if nodeErrs := executor.DefaultRegistry().Validate(n); !nodeErrs.Valid() {
			for _, e := range nodeErrs.Errors {
				result.Errors = append(result.Errors, fmt.Sprintf("node %q: %s", n.ID, e))
			}
		}
	}

	for _, e := range edges {
		if e.Source == e.Target {
			result.Errors = append(result.Errors, fmt.Sprintf("edge %s->%s: self-loop not allowed", e.Source, e.Target))
		}
		if !seen[e.Source] {
			result.Errors = append(result.Errors, fmt.Sprintf("edge source %q: no such node", e.Source))
		}
		if !seen[e.Target] {
			result.Errors = append(result.Errors, fmt.Sprintf("edge target %q: no such node", e.Target))
		}
	}

	if result.Valid() {
		g := graph.New(nodes, edges)
		if err := g.DetectCycles(); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	return result
}

// Meta returns the workflow's metadata.
func (w *Workflow) Meta() types.WorkflowMeta { return w.meta }

// Node returns the node with the given id, or false if absent.
func (w *Workflow) Node(id string) (types.Node, bool) {
	n, ok := w.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (w *Workflow) Nodes() []types.Node {
	out := make([]types.Node, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.nodes[id])
	}
	return out
}

// Edges returns all edges.
func (w *Workflow) Edges() []types.Edge { return w.edges }

// TopologicalOrder returns node ids in a valid execution order.
func (w *Workflow) TopologicalOrder() ([]string, error) {
	return w.graph.TopologicalSort()
}

// Graph exposes the underlying DAG for schedulers that need predecessor
// lookups (e.g. for the predecessor-failure gate, §4.10).
func (w *Workflow) Graph() *graph.Graph { return w.graph }
