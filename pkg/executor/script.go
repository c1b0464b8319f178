package executor

import (
	"fmt"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/scripthost"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

var sharedScriptHost = scripthost.New()

// ScriptExecutor executes Script nodes: it runs a user-supplied expression
// against the bindings of §4.2 and writes the result to outputKey.
type ScriptExecutor struct{}

func (e *ScriptExecutor) Kind() types.NodeKind { return types.NodeKindScript }

func (e *ScriptExecutor) Validate(node types.Node) types.ValidationResult {
	var result types.ValidationResult
	expression, _ := node.Config["expression"].(string)
	if expression == "" {
		result.Errors = append(result.Errors, "config.expression: required")
	}
	return result
}

func (e *ScriptExecutor) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	expression, _ := node.Config["expression"].(string)
	if expression == "" {
		return nil, NewNodeError(CodeValidationFailed, "script node missing expression", nil)
	}

	logger := ctx.Logger().WithNodeID(node.ID)
	binding := scripthost.ContextBinding{
		Get: func(key string) interface{} {
			v, _ := ctx.Get(key)
			return v
		},
		Set:            ctx.Set,
		GetWorkflowID:  ctx.WorkflowID,
		GetExecutionID: ctx.ExecutionID,
	}
	loggerBinding := scripthost.LoggerBinding{
		Debug: func(msg string, fields map[string]interface{}) { scopedLogger(logger, fields).Debug(msg) },
		Info:  func(msg string, fields map[string]interface{}) { scopedLogger(logger, fields).Info(msg) },
		Warn:  func(msg string, fields map[string]interface{}) { scopedLogger(logger, fields).Warn(msg) },
		Error: func(msg string, fields map[string]interface{}) { scopedLogger(logger, fields).Error(msg) },
	}

	value, err := sharedScriptHost.Run(expression, input, binding, loggerBinding, scripthost.DefaultUtils())
	if err != nil {
		return nil, NewNodeError(CodeValidationFailed, fmt.Sprintf("script failed: %v", err), err)
	}

	if outputKey, ok := node.Config["outputKey"].(string); ok && outputKey != "" {
		ctx.Set(outputKey, value)
	}

	return value, nil
}

// scopedLogger applies script-supplied fields to the node-scoped logger, if any were given.
func scopedLogger(l *logging.Logger, fields map[string]interface{}) *logging.Logger {
	if len(fields) == 0 {
		return l
	}
	return l.WithFields(fields)
}
