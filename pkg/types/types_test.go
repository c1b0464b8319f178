package types

import (
	"context"
	"testing"
)

func TestNode_IsEnabled_DefaultsTrue(t *testing.T) {
	n := Node{ID: "a"}
	if !n.IsEnabled() {
		t.Error("node with nil Enabled should default to enabled")
	}
}

func TestNode_IsEnabled_RespectsExplicitFalse(t *testing.T) {
	f := false
	n := Node{ID: "a", Enabled: &f}
	if n.IsEnabled() {
		t.Error("node with Enabled=false should report disabled")
	}
}

func TestEdge_IsEnabled_DefaultsTrue(t *testing.T) {
	e := Edge{Source: "a", Target: "b"}
	if !e.IsEnabled() {
		t.Error("edge with nil Enabled should default to enabled")
	}
}

func TestEdge_IsEnabled_RespectsExplicitFalse(t *testing.T) {
	f := false
	e := Edge{Source: "a", Target: "b", Enabled: &f}
	if e.IsEnabled() {
		t.Error("edge with Enabled=false should report disabled")
	}
}

func TestValidationResult_ValidWhenNoErrors(t *testing.T) {
	v := ValidationResult{Warnings: []string{"be careful"}}
	if !v.Valid() {
		t.Error("ValidationResult with no errors should be valid despite warnings")
	}
}

func TestValidationResult_InvalidWithErrors(t *testing.T) {
	v := ValidationResult{Errors: []string{"bad"}}
	if v.Valid() {
		t.Error("ValidationResult with errors should be invalid")
	}
}

func TestValidationResult_MergeCombinesErrorsAndWarnings(t *testing.T) {
	v := ValidationResult{Errors: []string{"e1"}, Warnings: []string{"w1"}}
	v.Merge(ValidationResult{Errors: []string{"e2"}, Warnings: []string{"w2"}})

	if len(v.Errors) != 2 || len(v.Warnings) != 2 {
		t.Errorf("merged = %+v, want 2 errors and 2 warnings", v)
	}
}

func TestGetExecutionID_MissingReturnsEmpty(t *testing.T) {
	if id := GetExecutionID(context.Background()); id != "" {
		t.Errorf("GetExecutionID = %q, want empty string", id)
	}
}

func TestGetExecutionID_RoundTrip(t *testing.T) {
	ctx := context.WithValue(context.Background(), ContextKeyExecutionID, "exec-1")
	if id := GetExecutionID(ctx); id != "exec-1" {
		t.Errorf("GetExecutionID = %q, want exec-1", id)
	}
}

func TestGetWorkflowID_RoundTrip(t *testing.T) {
	ctx := context.WithValue(context.Background(), ContextKeyWorkflowID, "wf-1")
	if id := GetWorkflowID(ctx); id != "wf-1" {
		t.Errorf("GetWorkflowID = %q, want wf-1", id)
	}
}
