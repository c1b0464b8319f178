// Package graph is the DAG representation shared by spec components D
// (Workflow Model) and H (DAG Scheduler): a node/edge set plus the
// topological-order and predecessor/successor lookups the scheduler needs
// to gate a node on its predecessors and to seed bounded-parallel dispatch
// with its initial ready set.
//
// A Graph never interprets node kinds or edge conditions — that's the
// scheduler's job (pkg/scheduler). It only answers structural questions:
// is this graph acyclic, what are a node's predecessors/successors, which
// nodes have no predecessors at all (the sources a parallel run starts
// from, §4.10).
//
//	g := graph.New(nodes, edges)
//	order, err := g.TopologicalSort() // err is ErrCycleDetected on a cycle
//	for _, id := range g.Sources() {
//	    // nodes with no incoming edges: where a run begins
//	}
package graph
