package workflow

import (
	"testing"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

func inputNode(id string) types.Node {
	return types.Node{ID: id, Kind: types.NodeKindInput, Config: map[string]interface{}{"value": 1, "outputKey": id}}
}

func TestBuild_Valid(t *testing.T) {
	meta := types.WorkflowMeta{ID: "wf-1", Name: "test"}
	nodes := []types.Node{inputNode("a"), inputNode("b")}
	edges := []types.Edge{{ID: "e1", Source: "a", Target: "b"}}

	wf, err := Build(meta, nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order, err := wf.TopologicalOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
}

func TestBuild_RejectsEmptyNodes(t *testing.T) {
	meta := types.WorkflowMeta{ID: "wf-1"}
	if _, err := Build(meta, nil, nil); err == nil {
		t.Fatal("expected error for empty node set")
	}
}

func TestBuild_RejectsDuplicateIDs(t *testing.T) {
	meta := types.WorkflowMeta{ID: "wf-1"}
	nodes := []types.Node{inputNode("a"), inputNode("a")}
	if _, err := Build(meta, nodes, nil); err == nil {
		t.Fatal("expected error for duplicate node id")
	}
}

func TestBuild_RejectsSelfLoop(t *testing.T) {
	meta := types.WorkflowMeta{ID: "wf-1"}
	nodes := []types.Node{inputNode("a")}
	edges := []types.Edge{{ID: "e1", Source: "a", Target: "a"}}
	if _, err := Build(meta, nodes, edges); err == nil {
		t.Fatal("expected error for self-loop")
	}
}

func TestBuild_RejectsCycle(t *testing.T) {
	meta := types.WorkflowMeta{ID: "wf-1"}
	nodes := []types.Node{inputNode("a"), inputNode("b"), inputNode("c")}
	edges := []types.Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "b", Target: "c"},
		{ID: "e3", Source: "c", Target: "a"},
	}
	if _, err := Build(meta, nodes, edges); err == nil {
		t.Fatal("expected error for cycle")
	}
}

func TestBuild_RejectsDanglingEdge(t *testing.T) {
	meta := types.WorkflowMeta{ID: "wf-1"}
	nodes := []types.Node{inputNode("a")}
	edges := []types.Edge{{ID: "e1", Source: "a", Target: "missing"}}
	if _, err := Build(meta, nodes, edges); err == nil {
		t.Fatal("expected error for dangling edge target")
	}
}
