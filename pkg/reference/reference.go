// Package reference implements the Reference Executor (spec component I):
// sub-workflow invocation in SYNC, ASYNC, CONDITIONAL, LOOP, and PARALLEL
// modes, guarded against circular workflow dependencies by the workflow
// registry's DependsOn graph.
package reference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/executor"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/scheduler"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/scripthost"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflowregistry"
)

// Executor invokes sub-workflows on behalf of Reference nodes. It is
// satisfies executor.ReferenceInvoker and, because it recurses into
// pkg/scheduler itself, is also handed back to the scheduler as the
// References collaborator for every sub-invocation it starts.
type Executor struct {
	Scheduler     *scheduler.Engine
	Workflows     *workflowregistry.Registry
	Plugins       executor.PluginRegistry
	Notifications executor.NotificationDispatcher
	Scripts       *scripthost.Host
	Logger        *logging.Logger
}

// New creates a Reference Executor wired to the given scheduler and
// collaborators.
func New(sched *scheduler.Engine, workflows *workflowregistry.Registry, plugins executor.PluginRegistry, notifications executor.NotificationDispatcher, logger *logging.Logger) *Executor {
	return &Executor{
		Scheduler:     sched,
		Workflows:     workflows,
		Plugins:       plugins,
		Notifications: notifications,
		Scripts:       scripthost.New(),
		Logger:        logger,
	}
}

var _ executor.ReferenceInvoker = (*Executor)(nil)

// Invoke dispatches to the mode named by node.Config["executionMode"].
func (x *Executor) Invoke(ctx executor.ExecutionContext, node types.Node) (interface{}, error) {
	mode := strings.ToUpper(stringConfig(node.Config, "executionMode"))

	if x.Workflows.HasCircularDependency(ctx.WorkflowID()) {
		return nil, executor.NewNodeError(executor.CodeCircularDependency, "invoking this reference would close a circular workflow dependency", executor.ErrCircularWorkflowDependency)
	}

	inputMappings := stringMapConfig(node.Config, "inputMappings")
	outputMappings := stringMapConfig(node.Config, "outputMappings")

	switch mode {
	case "SYNC":
		targetID := stringConfig(node.Config, "workflowId")
		return x.invokeSync(ctx, targetID, inputMappings, outputMappings, nil)

	case "ASYNC":
		targetID := stringConfig(node.Config, "workflowId")
		return x.invokeAsync(ctx, node, targetID, inputMappings, outputMappings)

	case "CONDITIONAL":
		return x.invokeConditional(ctx, node, inputMappings, outputMappings)

	case "LOOP":
		return x.invokeLoop(ctx, node, inputMappings, outputMappings)

	case "PARALLEL":
		return x.invokeParallel(ctx, node)

	default:
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, fmt.Sprintf("unsupported reference executionMode %q", mode), nil)
	}
}

// invokeSync looks up and runs targetID to completion, seeding its context
// from the caller via inputMappings and copying outputMappings back on
// success. loopItem, if non-nil, is additionally bound under "loopItem".
func (x *Executor) invokeSync(ctx executor.ExecutionContext, targetID string, inputMappings, outputMappings map[string]string, loopItem interface{}) (types.WorkflowExecutionResult, error) {
	target, err := x.Workflows.Lookup(targetID)
	if err != nil {
		return types.WorkflowExecutionResult{}, executor.NewNodeError(executor.CodeInvalidConfig, fmt.Sprintf("reference target %q not found or not active", targetID), executor.ErrWorkflowNotFound)
	}

	initialData := x.seedInput(ctx, inputMappings)
	if loopItem != nil {
		initialData["loopItem"] = loopItem
	}

	result, err := x.Scheduler.Run(ctx.Context(), target, initialData, types.GlobalExecutionConfig{}, x.subDeps())
	if err != nil {
		return result, executor.NewNodeError(executor.CodeInvalidConfig, fmt.Sprintf("sub-workflow %q invocation error: %v", targetID, err), err)
	}
	if !result.Success {
		return result, executor.NewNodeError(executor.CodeInvalidConfig, fmt.Sprintf("sub-workflow %q failed: %s", targetID, result.Message), nil)
	}

	x.copyOutput(ctx, result, outputMappings)
	return result, nil
}

func (x *Executor) invokeAsync(ctx executor.ExecutionContext, node types.Node, targetID string, inputMappings, outputMappings map[string]string) (interface{}, error) {
	waitForResult := boolConfig(node.Config, "waitForResult")
	timeoutMs := intConfig(node.Config, "timeoutMs")

	done := make(chan error, 1)
	go func() {
		_, err := x.invokeSync(detachedContext(ctx), targetID, inputMappings, outputMappings, nil)
		done <- err
	}()

	if !waitForResult {
		return map[string]interface{}{"dispatched": true}, nil
	}

	timeout := time.Duration(timeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"dispatched": true, "completed": true}, nil
	case <-time.After(timeout):
		return nil, executor.NewNodeError(executor.CodeTimeout, "reference invocation timed out", executor.ErrReferenceTimeout)
	}
}

func (x *Executor) invokeConditional(ctx executor.ExecutionContext, node types.Node, inputMappings, outputMappings map[string]string) (interface{}, error) {
	condition := stringConfig(node.Config, "condition")
	targetID := stringConfig(node.Config, "workflowId")

	satisfied, err := x.evalCondition(condition, ctx.Snapshot())
	if err != nil {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, fmt.Sprintf("condition evaluation failed: %v", err), err)
	}
	if !satisfied {
		return map[string]interface{}{"skipped": true}, nil
	}

	return x.invokeSync(ctx, targetID, inputMappings, outputMappings, nil)
}

func (x *Executor) invokeLoop(ctx executor.ExecutionContext, node types.Node, inputMappings, outputMappings map[string]string) (interface{}, error) {
	targetID := stringConfig(node.Config, "workflowId")
	loopDataKey := stringConfig(node.Config, "loopDataKey")
	maxIterations := intConfig(node.Config, "maxIterations")

	raw, _ := ctx.Get(loopDataKey)
	items, _ := raw.([]interface{})
	if maxIterations > 0 && len(items) > maxIterations {
		items = items[:maxIterations]
	}

	collected := make(map[string][]interface{}, len(outputMappings))
	for _, callerKey := range outputMappings {
		collected[callerKey] = make([]interface{}, 0, len(items))
	}

	for _, item := range items {
		ctx.IncrementLoopIteration()
		result, err := x.invokeSync(ctx, targetID, inputMappings, nil, item)
		if err != nil {
			return nil, err
		}
		for calleeKey, callerKey := range outputMappings {
			collected[callerKey] = append(collected[callerKey], result.Context[calleeKey])
		}
	}

	for callerKey, values := range collected {
		ctx.Set(callerKey, values)
	}

	return map[string]interface{}{"iterations": len(items)}, nil
}

func (x *Executor) invokeParallel(ctx executor.ExecutionContext, node types.Node) (interface{}, error) {
	rawIDs, _ := node.Config["workflowIds"].([]interface{})
	if len(rawIDs) == 0 {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, "reference PARALLEL mode requires a non-empty workflowIds", nil)
	}
	ids := make([]string, 0, len(rawIDs))
	for _, v := range rawIDs {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}

	inputMappings := stringMapConfig(node.Config, "inputMappings")
	parallelTimeoutMs := intConfig(node.Config, "parallelTimeoutMs")
	timeout := time.Duration(parallelTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	type outcome struct {
		id  string
		err error
	}
	results := make(chan outcome, len(ids))
	for _, id := range ids {
		go func(targetID string) {
			_, err := x.invokeSync(detachedContext(ctx), targetID, inputMappings, nil, nil)
			results <- outcome{id: targetID, err: err}
		}(id)
	}

	deadline := time.After(timeout)
	errs := make([]string, 0)
	for i := 0; i < len(ids); i++ {
		select {
		case o := <-results:
			if o.err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", o.id, o.err))
			}
		case <-deadline:
			return nil, executor.NewNodeError(executor.CodeTimeout, "parallel reference invocation timed out", executor.ErrReferenceTimeout)
		}
	}
	if len(errs) > 0 {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, fmt.Sprintf("parallel reference failures: %s", strings.Join(errs, "; ")), nil)
	}
	return map[string]interface{}{"workflowIds": ids}, nil
}

func (x *Executor) subDeps() scheduler.Deps {
	return scheduler.Deps{Plugins: x.Plugins, Notifications: x.Notifications, References: x}
}

func (x *Executor) seedInput(ctx executor.ExecutionContext, inputMappings map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(inputMappings))
	for callerKey, calleeKey := range inputMappings {
		if v, ok := ctx.Get(callerKey); ok {
			out[calleeKey] = v
		}
	}
	return out
}

func (x *Executor) copyOutput(ctx executor.ExecutionContext, result types.WorkflowExecutionResult, outputMappings map[string]string) {
	for calleeKey, callerKey := range outputMappings {
		if v, ok := result.Context[calleeKey]; ok {
			ctx.Set(callerKey, v)
		}
	}
}

func (x *Executor) evalCondition(expression string, snapshot map[string]interface{}) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, nil
	}
	binding := scripthost.ContextBinding{
		Get:            func(key string) interface{} { return snapshot[key] },
		Set:            func(string, interface{}) {},
		GetWorkflowID:  func() string { return "" },
		GetExecutionID: func() string { return "" },
	}
	noop := scripthost.LoggerBinding{
		Debug: func(string, map[string]interface{}) {},
		Info:  func(string, map[string]interface{}) {},
		Warn:  func(string, map[string]interface{}) {},
		Error: func(string, map[string]interface{}) {},
	}
	out, err := x.Scripts.Run(expression, snapshot, binding, noop, scripthost.DefaultUtils())
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}

// detachedContext wraps ctx with a background Go context so an ASYNC/
// PARALLEL sub-invocation keeps running after the caller's node returns.
type detached struct {
	executor.ExecutionContext
	bg context.Context
}

func (d *detached) Context() context.Context { return d.bg }

func detachedContext(ctx executor.ExecutionContext) executor.ExecutionContext {
	return &detached{ExecutionContext: ctx, bg: context.Background()}
}

func stringConfig(config map[string]interface{}, key string) string {
	s, _ := config[key].(string)
	return s
}

func boolConfig(config map[string]interface{}, key string) bool {
	b, _ := config[key].(bool)
	return b
}

func intConfig(config map[string]interface{}, key string) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringMapConfig(config map[string]interface{}, key string) map[string]string {
	raw, ok := config[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
