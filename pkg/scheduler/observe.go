package scheduler

import (
	"context"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/execctx"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/observer"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

func (e *Engine) notifyWorkflowStart(ctx context.Context, ectx *execctx.Context) {
	if !e.observers.HasObservers() {
		return
	}
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventWorkflowStart,
		Status:      observer.StatusStarted,
		Timestamp:   ectx.StartTime(),
		ExecutionID: ectx.ExecutionID(),
		WorkflowID:  ectx.WorkflowID(),
		StartTime:   ectx.StartTime(),
	})
}

func (e *Engine) notifyWorkflowEnd(ctx context.Context, ectx *execctx.Context, result types.WorkflowExecutionResult) {
	if !e.observers.HasObservers() {
		return
	}
	status := observer.StatusSuccess
	if !result.Success {
		status = observer.StatusFailure
	}
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventWorkflowEnd,
		Status:      status,
		Timestamp:   time.Now(),
		ExecutionID: ectx.ExecutionID(),
		WorkflowID:  ectx.WorkflowID(),
		StartTime:   ectx.StartTime(),
		ElapsedTime: time.Since(ectx.StartTime()),
		Result:      result,
	})
}

func (e *Engine) notifyNodeStart(ctx context.Context, ectx *execctx.Context, node types.Node, start time.Time) {
	if !e.observers.HasObservers() {
		return
	}
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventNodeStart,
		Status:      observer.StatusStarted,
		Timestamp:   start,
		ExecutionID: ectx.ExecutionID(),
		WorkflowID:  ectx.WorkflowID(),
		NodeID:      node.ID,
		NodeKind:    node.Kind,
		StartTime:   start,
	})
}

func (e *Engine) notifyNodeSuccess(ctx context.Context, ectx *execctx.Context, node types.Node, start time.Time, result interface{}) {
	if !e.observers.HasObservers() {
		return
	}
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventNodeSuccess,
		Status:      observer.StatusSuccess,
		Timestamp:   time.Now(),
		ExecutionID: ectx.ExecutionID(),
		WorkflowID:  ectx.WorkflowID(),
		NodeID:      node.ID,
		NodeKind:    node.Kind,
		StartTime:   start,
		ElapsedTime: time.Since(start),
		Result:      result,
	})
}

func (e *Engine) notifyNodeFailure(ctx context.Context, ectx *execctx.Context, node types.Node, start time.Time, err error) {
	if !e.observers.HasObservers() {
		return
	}
	e.observers.Notify(ctx, observer.Event{
		Type:        observer.EventNodeFailure,
		Status:      observer.StatusFailure,
		Timestamp:   time.Now(),
		ExecutionID: ectx.ExecutionID(),
		WorkflowID:  ectx.WorkflowID(),
		NodeID:      node.ID,
		NodeKind:    node.Kind,
		StartTime:   start,
		ElapsedTime: time.Since(start),
		Error:       err,
	})
}
