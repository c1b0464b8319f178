package executor

import (
	"fmt"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// PluginExecutor executes Plugin nodes: it follows the five-step protocol of
// §4.5 — resolve, validate, connect, read, close.
type PluginExecutor struct{}

func (e *PluginExecutor) Kind() types.NodeKind { return types.NodeKindPlugin }

func (e *PluginExecutor) Validate(node types.Node) types.ValidationResult {
	var result types.ValidationResult
	if pluginType := pluginID(node); pluginType == "" {
		result.Errors = append(result.Errors, "config.pluginType: required")
	}
	return result
}

func (e *PluginExecutor) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	registry := ctx.Plugins()
	if registry == nil {
		return nil, NewNodeError(CodePluginNotFound, "no plugin registry configured", nil)
	}

	id := pluginID(node)
	if id == "" {
		return nil, NewNodeError(CodeInvalidConfig, "plugin node missing pluginType", nil)
	}

	plugin, err := registry.GetPlugin(id)
	if err != nil {
		return nil, NewNodeError(CodePluginNotFound, fmt.Sprintf("plugin %q not found", id), err)
	}

	validation := plugin.ValidateConfig(node.Config)
	if !validation.Valid() {
		return nil, NewNodeError(CodeInvalidConfig, fmt.Sprintf("plugin config invalid: %v", validation.Errors), nil)
	}

	conn, err := registry.CreateConnection(id, node.Config, ctx.Context())
	if err != nil {
		return nil, NewNodeError(CodeConnectionFailed, "connection failed", err)
	}
	defer conn.Close()

	data, err := conn.ReadData(ctx.Context())
	if err != nil {
		return nil, NewNodeError(CodeReadFailed, "plugin read failed", err)
	}

	if outputKey, ok := node.Config["outputKey"].(string); ok && outputKey != "" {
		ctx.Set(outputKey, data)
	}

	return data, nil
}

// pluginID resolves the plugin identifier, honoring the `sourceType` alias
// named in §4.5 for backward compatibility.
func pluginID(node types.Node) string {
	if id, ok := node.Config["pluginType"].(string); ok && id != "" {
		return id
	}
	if id, ok := node.Config["sourceType"].(string); ok && id != "" {
		return id
	}
	return ""
}
