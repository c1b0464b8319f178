package docloader

import (
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflow"
)

// ReferencedWorkflowIDs collects every sub-workflow id a Reference node in wf
// may target (workflowId for SYNC/ASYNC/CONDITIONAL/LOOP, workflowIds for
// PARALLEL), for use as workflowregistry.Registry's DependsOn edge list.
func ReferencedWorkflowIDs(wf *workflow.Workflow) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, n := range wf.Nodes() {
		if n.Kind != types.NodeKindReference || n.Config == nil {
			continue
		}
		if id, ok := n.Config["workflowId"].(string); ok {
			add(id)
		}
		if raw, ok := n.Config["workflowIds"].([]interface{}); ok {
			for _, v := range raw {
				if id, ok := v.(string); ok {
					add(id)
				}
			}
		}
	}
	return ids
}
