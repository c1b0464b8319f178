package server

import (
	"context"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/docloader"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflow"
)

// parseDocument parses and validates a raw workflow document (§6) without
// running it, the shared path between /validate and every /execute variant.
func (s *Server) parseDocument(raw []byte) (*workflow.Workflow, types.GlobalExecutionConfig, error) {
	return docloader.Load(raw)
}

// executeDocument parses raw and runs it to completion through the
// scheduler, using the collaborators wired at startup.
func (s *Server) executeDocument(ctx context.Context, raw []byte) (types.WorkflowExecutionResult, time.Duration, error) {
	wf, globalCfg, err := s.parseDocument(raw)
	if err != nil {
		return types.WorkflowExecutionResult{}, 0, err
	}
	return s.executeWorkflow(ctx, wf, globalCfg)
}

func (s *Server) executeWorkflow(ctx context.Context, wf *workflow.Workflow, globalCfg types.GlobalExecutionConfig) (types.WorkflowExecutionResult, time.Duration, error) {
	start := time.Now()
	result, err := s.scheduler.Run(ctx, wf, nil, globalCfg, s.deps)
	duration := time.Since(start)

	nodesExecuted := 0
	if result.NodeResults != nil {
		nodesExecuted = len(result.NodeResults)
	}
	s.telemetryProvider.RecordWorkflowExecution(ctx, wf.Meta().ID, duration, err == nil && result.Success, nodesExecuted)

	return result, duration, err
}
