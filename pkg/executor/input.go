package executor

import (
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// InputExecutor executes Input nodes: it writes a literal value (or the
// node's resolved input, when config carries no literal) to outputKey.
type InputExecutor struct{}

func (e *InputExecutor) Kind() types.NodeKind { return types.NodeKindInput }

func (e *InputExecutor) Validate(node types.Node) types.ValidationResult {
	var result types.ValidationResult
	if _, hasValue := node.Config["value"]; !hasValue {
		if _, hasKey := node.Config["outputKey"]; !hasKey {
			result.Warnings = append(result.Warnings, "input node has neither value nor outputKey configured")
		}
	}
	return result
}

func (e *InputExecutor) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	value, hasValue := node.Config["value"]
	if !hasValue {
		value = input
	}

	if outputKey, ok := node.Config["outputKey"].(string); ok && outputKey != "" {
		ctx.Set(outputKey, value)
	}

	return value, nil
}
