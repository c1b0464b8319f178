// Package scheduler is the DAG Scheduler (spec component H): it drives a
// validated workflow through its topological order, sequentially or with
// bounded parallelism, gating each node on its predecessors and converting
// panics and timeouts into node-level failures rather than aborting the
// whole execution. It is the seam that ties pkg/workflow, pkg/executor,
// pkg/execctx, and pkg/multiinput together without any of those packages
// importing each other.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/config"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/execctx"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/executor"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/multiinput"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/observer"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/scripthost"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflow"
)

// Deps bundles the collaborators a running execution needs but that the
// scheduler itself does not own, breaking the import cycle that would
// otherwise exist between the scheduler and the plugin/reference/
// notification packages (which in turn depend on the scheduler to recurse
// into sub-workflows).
type Deps struct {
	Plugins       executor.PluginRegistry
	References    executor.ReferenceInvoker
	Notifications executor.NotificationDispatcher
}

// Engine runs workflows against a fixed node-executor registry and
// configuration. One Engine is typically shared across many concurrent
// executions; all mutable per-run state lives in execctx.Context, not here.
type Engine struct {
	registry *executor.Registry
	cfg      config.Config
	logger   *logging.Logger
	observers *observer.Manager
	scripts  *scripthost.Host

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates an Engine. registry is typically executor.DefaultRegistry().
func New(registry *executor.Registry, cfg config.Config, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &Engine{
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
		observers: observer.NewManager(),
		scripts:   scripthost.New(),
	}
}

// RegisterObserver adds an observer notified of workflow/node lifecycle
// events. Mirrors the teacher engine's builder-style RegisterObserver.
func (e *Engine) RegisterObserver(obs observer.Observer) *Engine {
	e.observers.Register(obs)
	return e
}

// Shutdown refuses new executions and waits up to 60s (§4.10) for in-flight
// runs to finish, then returns regardless of whether they drained.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	drain, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	select {
	case <-done:
		return nil
	case <-drain.Done():
		return fmt.Errorf("scheduler shutdown: in-flight executions did not drain within 60s")
	}
}

// Run executes wf once. initialData seeds the execution context; globalCfg
// carries the document's optional globalConfig block (timeout, log level,
// maxConcurrentNodes); maxConcurrentNodes <= 1 selects sequential execution.
func (e *Engine) Run(parentCtx context.Context, wf *workflow.Workflow, initialData map[string]interface{}, globalCfg types.GlobalExecutionConfig, deps Deps) (types.WorkflowExecutionResult, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return types.WorkflowExecutionResult{}, fmt.Errorf("scheduler is shutting down, refusing new execution")
	}
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	timeout := e.cfg.MaxExecutionTime
	if globalCfg.Timeout > 0 {
		timeout = globalCfg.Timeout
	}
	ctx := parentCtx
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
		defer cancel()
	}

	ectx := execctx.New(wf.Meta().ID, "", initialData)
	logger := e.logger.WithWorkflowID(ectx.WorkflowID()).WithExecutionID(ectx.ExecutionID())

	result := types.WorkflowExecutionResult{
		ExecutionID: ectx.ExecutionID(),
		WorkflowID:  wf.Meta().ID,
		NodeResults: make(map[string]types.NodeExecutionResult),
	}

	order, err := wf.TopologicalOrder()
	if err != nil {
		result.Message = fmt.Sprintf("workflow validation failed: %v", err)
		return result, err
	}

	e.notifyWorkflowStart(ctx, ectx)

	maxConcurrent := globalCfg.MaxConcurrentNodes
	var runErr error
	if maxConcurrent > 1 {
		runErr = e.runParallel(ctx, wf, ectx, order, maxConcurrent, deps, result.NodeResults)
	} else {
		runErr = e.runSequential(ctx, wf, ectx, order, deps, result.NodeResults)
	}

	result.Context = ectx.Snapshot()
	result.Stats = computeStats(result.NodeResults)
	result.Success = runErr == nil && allExecutedSucceeded(result.NodeResults)
	if !result.Success {
		result.Message = firstFailureMessage(order, result.NodeResults)
		if runErr != nil && result.Message == "" {
			result.Message = runErr.Error()
		}
	}

	logger.WithField("success", result.Success).WithField("nodes", len(order)).Info("workflow execution finished")
	e.notifyWorkflowEnd(ctx, ectx, result)

	return result, nil
}

func (e *Engine) runSequential(ctx context.Context, wf *workflow.Workflow, ectx *execctx.Context, order []string, deps Deps, results map[string]types.NodeExecutionResult) error {
	for _, nodeID := range order {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		node, _ := wf.Node(nodeID)
		results[nodeID] = e.executeOne(ctx, wf, ectx, node, deps, results)
	}
	return nil
}

func (e *Engine) runParallel(ctx context.Context, wf *workflow.Workflow, ectx *execctx.Context, order []string, maxConcurrent int, deps Deps, results map[string]types.NodeExecutionResult) error {
	var mu sync.Mutex
	// claimed tracks which node ids have already been pushed onto ready, so
	// a node with in-degree 0 from two different relaxations isn't enqueued
	// twice. It says nothing about whether a node has finished executing —
	// that state lives in resultsCh/results.
	claimed := make(map[string]bool, len(order))
	inDegree := make(map[string]int, len(order))
	for _, id := range order {
		inDegree[id] = wf.Graph().InDegree(id)
	}

	ready := make(chan string, len(order))
	resultsCh := make(chan string, len(order))
	var inflight int
	remaining := len(order)

	sem := make(chan struct{}, maxConcurrent)

	mu.Lock()
	for _, id := range wf.Graph().Sources() {
		claimed[id] = true
		ready <- id
	}
	mu.Unlock()

	var runErr error
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case nodeID := <-ready:
			inflight++
			sem <- struct{}{}
			go func(id string) {
				defer func() { <-sem; resultsCh <- id }()
				node, _ := wf.Node(id)
				mu.Lock()
				snapshot := make(map[string]types.NodeExecutionResult, len(results))
				for k, v := range results {
					snapshot[k] = v
				}
				mu.Unlock()
				res := e.executeOne(ctx, wf, ectx, node, deps, snapshot)
				mu.Lock()
				results[id] = res
				mu.Unlock()
			}(nodeID)
		case id := <-resultsCh:
			inflight--
			remaining--
			mu.Lock()
			for _, edge := range wf.Graph().GetNodeOutputEdges(id) {
				if !edge.IsEnabled() {
					continue
				}
				inDegree[edge.Target]--
				if inDegree[edge.Target] == 0 && !claimed[edge.Target] {
					claimed[edge.Target] = true
					ready <- edge.Target
				}
			}
			mu.Unlock()
		}
		if inflight == 0 && remaining > 0 && len(ready) == 0 {
			// nothing in flight, nothing ready, work remaining: would only
			// happen on a graph bug since Build already rejects cycles.
			select {
			case nodeID := <-ready:
				ready <- nodeID
			default:
				runErr = fmt.Errorf("scheduler deadlock: %d nodes unreachable", remaining)
				return runErr
			}
		}
	}
	return runErr
}

// executeOne runs the predecessor gate, multi-input resolution, and the
// node executor itself, recovering any panic into a NodeExecution failure.
func (e *Engine) executeOne(ctx context.Context, wf *workflow.Workflow, ectx *execctx.Context, node types.Node, deps Deps, priorResults map[string]types.NodeExecutionResult) (result types.NodeExecutionResult) {
	start := time.Now()
	result = types.NodeExecutionResult{NodeID: node.ID, StartTime: start}

	if !node.IsEnabled() {
		result.Success = true
		result.Executed = false
		result.Message = "node disabled"
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	gate := e.evaluateGate(wf, node.ID, priorResults)
	if gate == gatePredecessorFailed {
		result.Success = false
		result.Executed = false
		result.Message = "predecessor failed"
		result.Metadata = map[string]interface{}{"code": string(executor.CodePredecessorFailed)}
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}
	if gate == gateSkippedByCondition {
		result.Success = true
		result.Executed = false
		result.Message = "skipped: incoming edge conditions not satisfied"
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	e.notifyNodeStart(ctx, ectx, node, start)
	ectx.IncrementNodeExecution()

	rc := &runContext{
		Context:       ectx,
		cfg:           e.cfg,
		logger:        e.logger.WithNodeID(node.ID).WithNodeKind(node.Kind),
		plugins:       deps.Plugins,
		references:    deps.References,
		notifications: deps.Notifications,
		ctx:           ctx,
	}

	input, inputErr := e.resolveInput(ectx, node)
	if inputErr != nil {
		result.Success = false
		result.Executed = true
		result.Message = inputErr.Error()
		result.Metadata = map[string]interface{}{"code": string(executor.CodeInputResolutionFailed), "phase": "input-resolution"}
		result.DurationMs = time.Since(start).Milliseconds()
		e.notifyNodeFailure(ctx, ectx, node, start, inputErr)
		return result
	}

	data, execErr := e.invokeSafely(rc, node, input)
	result.Executed = true
	result.DurationMs = time.Since(start).Milliseconds()
	if execErr != nil {
		result.Success = false
		result.Message = execErr.Error()
		if nerr, ok := execErr.(*executor.NodeError); ok {
			result.Metadata = map[string]interface{}{"code": string(nerr.Code)}
		}
		e.notifyNodeFailure(ctx, ectx, node, start, execErr)
		return result
	}

	result.Success = true
	result.Data = data
	e.notifyNodeSuccess(ctx, ectx, node, start, data)
	return result
}

// invokeSafely dispatches to the registry, converting any panic crossing the
// node boundary into a NodeExecution failure per §7.
func (e *Engine) invokeSafely(rc executor.ExecutionContext, node types.Node, input interface{}) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = executor.NewNodeError(executor.CodeValidationFailed, fmt.Sprintf("node panicked: %v", r), nil)
		}
	}()
	return e.registry.Execute(rc, node, input)
}

type gateResult int

const (
	gateExecute gateResult = iota
	gatePredecessorFailed
	gateSkippedByCondition
)

// evaluateGate implements the predecessor-failure rule of §4.10 plus the
// edge-condition refinement. If any enabled incoming edge has a source with
// no result or an unsuccessful result (including a source this gate already
// failed), the node fails as a predecessor failure. Otherwise the node
// executes if at least one edge from an executed source passes its
// condition; when none does (every condition false, or every source skipped
// or disabled), the node is quietly skipped rather than failed.
func (e *Engine) evaluateGate(wf *workflow.Workflow, nodeID string, results map[string]types.NodeExecutionResult) gateResult {
	edges := wf.Graph().GetNodeInputEdges(nodeID)
	if len(edges) == 0 {
		return gateExecute
	}

	anyPassed := false
	for _, edge := range edges {
		if !edge.IsEnabled() {
			continue
		}
		res, ok := results[edge.Source]
		if !ok || !res.Success {
			return gatePredecessorFailed
		}
		if !res.Executed {
			continue
		}
		if edge.Condition != nil && strings.TrimSpace(*edge.Condition) != "" {
			ok, err := e.evalEdgeCondition(*edge.Condition, res.Data)
			if err != nil || !ok {
				continue
			}
		}
		anyPassed = true
	}

	if anyPassed {
		return gateExecute
	}
	return gateSkippedByCondition
}

func (e *Engine) evalEdgeCondition(expression string, sourceResult interface{}) (bool, error) {
	binding := scripthost.ContextBinding{
		Get:            func(string) interface{} { return nil },
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
	out, err := e.scripts.Run(expression, sourceResult, binding, noop, scripthost.DefaultUtils())
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}

// resolveInput runs the Multi-Input Processor (§4.7) over node.Config's
// optional "input" block, falling back to a bare ModeSingle read of
// config.inputKey for nodes that declare only the legacy single key.
func (e *Engine) resolveInput(ectx *execctx.Context, node types.Node) (interface{}, error) {
	spec := multiinput.Spec{Mode: multiinput.ModeSingle}

	if raw, ok := node.Config["input"].(map[string]interface{}); ok {
		if m, ok := raw["mode"].(string); ok && m != "" {
			spec.Mode = multiinput.Mode(m)
		}
		if k, ok := raw["inputKey"].(string); ok {
			spec.InputKey = k
		}
		if mk, ok := raw["mergeKey"].(string); ok {
			spec.MergeKey = mk
		}
		if params, ok := raw["params"].([]interface{}); ok {
			for _, p := range params {
				pm, ok := p.(map[string]interface{})
				if !ok {
					continue
				}
				spec.Params = append(spec.Params, multiinput.Parameter{
					Key:          stringField(pm, "key"),
					Alias:        stringField(pm, "alias"),
					Required:     boolField(pm, "required"),
					DataType:     multiinput.DataType(stringField(pm, "dataType")),
					DefaultValue: pm["defaultValue"],
					Description:  stringField(pm, "description"),
				})
			}
		}
	} else if k, ok := node.Config["inputKey"].(string); ok {
		spec.InputKey = k
	}

	return multiinput.Resolve(ectx, spec)
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func allExecutedSucceeded(results map[string]types.NodeExecutionResult) bool {
	for _, r := range results {
		if r.Executed && !r.Success {
			return false
		}
		if !r.Executed && !r.Success {
			return false
		}
	}
	return true
}

func firstFailureMessage(order []string, results map[string]types.NodeExecutionResult) string {
	for _, id := range order {
		if r, ok := results[id]; ok && !r.Success {
			return fmt.Sprintf("node %q: %s", id, r.Message)
		}
	}
	return ""
}

func computeStats(results map[string]types.NodeExecutionResult) types.ExecutionStats {
	stats := types.ExecutionStats{TotalNodes: len(results)}
	var totalDuration int64
	for _, r := range results {
		if !r.Executed {
			continue
		}
		totalDuration += r.DurationMs
		if r.Success {
			stats.SuccessfulNodes++
		} else {
			stats.FailedNodes++
		}
	}
	executed := stats.SuccessfulNodes + stats.FailedNodes
	if executed > 0 {
		stats.AverageNodeDuration = float64(totalDuration) / float64(executed)
	}
	return stats
}
