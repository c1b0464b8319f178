package executor

import (
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// NotificationExecutor executes Output (notification) nodes: it delegates
// the templated dispatch pipeline of §4.4 to the context's notification
// dispatcher.
type NotificationExecutor struct{}

func (e *NotificationExecutor) Kind() types.NodeKind { return types.NodeKindOutput }

func (e *NotificationExecutor) Validate(node types.Node) types.ValidationResult {
	var result types.ValidationResult
	if _, ok := node.Config["providerType"].(string); !ok {
		result.Errors = append(result.Errors, "config.providerType: required")
	}
	if _, ok := node.Config["contentTemplate"].(string); !ok {
		result.Warnings = append(result.Warnings, "config.contentTemplate: empty notification body")
	}
	return result
}

func (e *NotificationExecutor) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	dispatcher := ctx.Notifications()
	if dispatcher == nil {
		return nil, NewNodeError(CodeInvalidConfig, "no notification dispatcher configured", nil)
	}
	return dispatcher.Dispatch(ctx, node, input)
}
