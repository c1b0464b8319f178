// Package scripthost is the embedded expression/script evaluator backing
// Script nodes (spec §4.2). It is external to the node contract proper —
// the spec fixes only the bindings a script host must expose — but a
// concrete implementation is needed to exercise and test the Script node, so
// this package provides one using expr-lang/expr.
package scripthost

import (
	"fmt"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ContextBinding is the `context` object exposed to scripts: get/set against
// the execution context, plus identity accessors.
type ContextBinding struct {
	Get            func(key string) interface{}
	Set            func(key string, value interface{})
	GetWorkflowID  func() string
	GetExecutionID func() string
}

// LoggerBinding is the `logger` object exposed to scripts.
type LoggerBinding struct {
	Debug func(msg string, fields map[string]interface{})
	Info  func(msg string, fields map[string]interface{})
	Warn  func(msg string, fields map[string]interface{})
	Error func(msg string, fields map[string]interface{})
}

// UtilsBinding is the `utils` object exposed to scripts.
type UtilsBinding struct {
	Now func() string
}

// DefaultUtils returns the standard utils binding: now() as an ISO-8601
// timestamp string.
func DefaultUtils() UtilsBinding {
	return UtilsBinding{
		Now: func() string { return time.Now().UTC().Format(time.RFC3339) },
	}
}

// Host evaluates script-node expressions. It is single-threaded per
// execution, per §4.2; concurrent executions each get their own Host unless
// they share the program cache deliberately (the cache is safe for
// concurrent compilation — sync.Map — but a single expression's vm.Program
// must not be run concurrently while a surrounding closure mutates context,
// which is why each node invocation calls Run with its own env).
type Host struct {
	programs sync.Map // expression string -> *vm.Program
}

// New creates a Host with an empty program cache.
func New() *Host {
	return &Host{}
}

// Run compiles (or reuses a cached compilation of) expression and evaluates
// it against the given bindings, returning the script's result value.
func (h *Host) Run(expression string, input interface{}, context ContextBinding, logger LoggerBinding, utils UtilsBinding) (interface{}, error) {
	env := map[string]interface{}{
		"input": input,
		"context": map[string]interface{}{
			"get":            context.Get,
			"set":            context.Set,
			"getWorkflowId":  context.GetWorkflowID,
			"getExecutionId": context.GetExecutionID,
		},
		"logger": map[string]interface{}{
			"debug": logger.Debug,
			"info":  logger.Info,
			"warn":  logger.Warn,
			"error": logger.Error,
		},
		"utils": map[string]interface{}{
			"now": utils.Now,
		},
	}

	program, err := h.compile(expression, env)
	if err != nil {
		return nil, fmt.Errorf("script compilation failed: %w", err)
	}

	output, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}
	return output, nil
}

func (h *Host) compile(expression string, env map[string]interface{}) (*vm.Program, error) {
	if cached, ok := h.programs.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(env))
	if err != nil {
		return nil, err
	}
	h.programs.Store(expression, program)
	return program, nil
}
