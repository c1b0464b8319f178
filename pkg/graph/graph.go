package graph

import (
	"sort"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// Graph is the node/edge set backing one Workflow's scheduling decisions.
// It is built once by workflow.Build and never mutated afterwards.
type Graph struct {
	nodes []types.Node
	edges []types.Edge
}

// New builds a Graph over nodes and edges. Callers that only want the
// scheduler's happens-before edges (enabled ones) should filter edges
// before calling New; callers validating structure (cycle detection over
// the whole document, including disabled edges) should pass every edge.
func New(nodes []types.Node, edges []types.Edge) *Graph {
	return &Graph{nodes: nodes, edges: edges}
}

// inDegrees returns each node's predecessor count and an adjacency list
// from source to targets, built in one pass over the edge set. Both
// TopologicalSort and Sources derive from this so the two never disagree
// about what counts as a predecessor.
func (g *Graph) inDegrees() (map[string]int, map[string][]string) {
	inDegree := make(map[string]int, len(g.nodes))
	adjacency := make(map[string][]string, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range g.edges {
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}
	return inDegree, adjacency
}

// Sources returns, in deterministic (sorted) order, the node ids with no
// incoming edge — the set a bounded-parallel run's "ready" queue starts
// from (§4.10) and, in sequential mode, simply the head of the topological
// order.
func (g *Graph) Sources() []string {
	inDegree, _ := g.inDegrees()
	sources := make([]string, 0, len(inDegree))
	for id, degree := range inDegree {
		if degree == 0 {
			sources = append(sources, id)
		}
	}
	sort.Strings(sources)
	return sources
}

// InDegree reports how many enabled edges target nodeID. The scheduler
// uses this to seed its own in-degree bookkeeping for the ready/inflight/
// done dispatch loop without recomputing GetNodeInputEdges itself.
func (g *Graph) InDegree(nodeID string) int {
	inDegree, _ := g.inDegrees()
	return inDegree[nodeID]
}

// TopologicalSort orders node ids via Kahn's algorithm: repeatedly take a
// node with no remaining predecessors, then relax its successors. A
// deterministic starting queue (Sources, sorted) keeps the order stable
// across runs of the same workflow, which execution-log diffing and the
// round-trip law (§8) both depend on.
//
// Returns ErrCycleDetected if fewer nodes were emitted than the graph
// holds — workflow.Build rejects cycles before this ever runs against a
// live execution, so in practice this path only fires from Validate's
// pre-flight check.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return []string{}, nil
	}

	inDegree, adjacency := g.inDegrees()

	queue := g.Sources()
	order := make([]string, 0, len(g.nodes))

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, next := range adjacency[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// DetectCycles reports whether the graph is acyclic without returning the
// order itself; workflow.Validate uses this form during its pre-flight
// check (§4.10).
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalSort()
	return err
}

// GetNode retrieves a node by id, or nil if absent.
func (g *Graph) GetNode(nodeID string) *types.Node {
	for i := range g.nodes {
		if g.nodes[i].ID == nodeID {
			return &g.nodes[i]
		}
	}
	return nil
}

// GetNodeInputEdges returns every edge whose target is nodeID — nodeID's
// predecessors, in the predecessor-failure gate's terms (§4.10).
func (g *Graph) GetNodeInputEdges(nodeID string) []types.Edge {
	var edges []types.Edge
	for _, e := range g.edges {
		if e.Target == nodeID {
			edges = append(edges, e)
		}
	}
	return edges
}

// GetNodeOutputEdges returns every edge whose source is nodeID — nodeID's
// successors, used to relax in-degrees as nodes complete in parallel mode.
func (g *Graph) GetNodeOutputEdges(nodeID string) []types.Edge {
	var edges []types.Edge
	for _, e := range g.edges {
		if e.Source == nodeID {
			edges = append(edges, e)
		}
	}
	return edges
}

// GetTerminalNodes returns the ids of nodes with no outgoing edge — the
// sinks of the DAG, whose results make up a workflow's "final" outputs.
func (g *Graph) GetTerminalNodes() []string {
	terminal := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		terminal[n.ID] = true
	}
	for _, e := range g.edges {
		terminal[e.Source] = false
	}

	result := make([]string, 0, len(terminal))
	for id, isTerminal := range terminal {
		if isTerminal {
			result = append(result, id)
		}
	}
	sort.Strings(result)
	return result
}
