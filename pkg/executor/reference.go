package executor

import (
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// ReferenceExecutor executes Reference nodes: it delegates sub-workflow
// invocation (§4.6) to the context's reference invoker, which implements the
// SYNC/ASYNC/CONDITIONAL/LOOP/PARALLEL modes.
type ReferenceExecutor struct{}

func (e *ReferenceExecutor) Kind() types.NodeKind { return types.NodeKindReference }

func (e *ReferenceExecutor) Validate(node types.Node) types.ValidationResult {
	var result types.ValidationResult
	mode, _ := node.Config["executionMode"].(string)
	switch mode {
	case "SYNC", "ASYNC", "CONDITIONAL", "LOOP", "PARALLEL":
	default:
		result.Errors = append(result.Errors, "config.executionMode: must be one of SYNC, ASYNC, CONDITIONAL, LOOP, PARALLEL")
	}

	if mode == "PARALLEL" {
		ids, _ := node.Config["workflowIds"].([]interface{})
		if len(ids) == 0 {
			result.Errors = append(result.Errors, "config.workflowIds: required and non-empty for PARALLEL mode")
		}
	} else if mode != "" {
		if _, ok := node.Config["workflowId"].(string); !ok {
			result.Errors = append(result.Errors, "config.workflowId: required")
		}
	}

	return result
}

func (e *ReferenceExecutor) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	invoker := ctx.References()
	if invoker == nil {
		return nil, NewNodeError(CodeInvalidConfig, "no reference invoker configured", nil)
	}
	return invoker.Invoke(ctx, node)
}
