// Package execctx implements the per-execution context store: the single
// piece of mutable state shared by every node of one workflow invocation.
package execctx

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Context is the per-execution keyed store plus identity and resource
// counters. Its data map provides atomic get/set/delete and linearizable
// per-key updates; concurrent writes to the same key from sibling nodes are
// last-writer-wins, per the scheduler's ordering guarantees.
type Context struct {
	workflowID  string
	executionID string
	startTime   time.Time

	mu   sync.RWMutex
	data map[string]interface{}

	nodeExecutions int64
	httpCalls      int64
	loopIterations int64
}

// New creates a fresh Context seeded from initialData. initialData may be
// nil. executionID is generated if empty.
func New(workflowID, executionID string, initialData map[string]interface{}) *Context {
	if executionID == "" {
		executionID = uuid.New().String()
	}
	data := make(map[string]interface{}, len(initialData))
	for k, v := range initialData {
		data[k] = v
	}
	return &Context{
		workflowID:  workflowID,
		executionID: executionID,
		startTime:   time.Now(),
		data:        data,
	}
}

// WorkflowID returns the identifier of the workflow this execution belongs to.
func (c *Context) WorkflowID() string { return c.workflowID }

// ExecutionID returns this execution's unique identifier.
func (c *Context) ExecutionID() string { return c.executionID }

// StartTime returns when this execution began.
func (c *Context) StartTime() time.Time { return c.startTime }

// Get reads a value by key.
func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set writes a value by key.
func (c *Context) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Delete removes a key.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Snapshot returns a shallow copy of the full data map, suitable for
// WorkflowExecutionResult.Context.
func (c *Context) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]interface{}, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Seed copies the named keys from src into this context under the given
// mapping (src key -> dst key). Used to build the fresh context a Reference
// node hands to a sub-workflow invocation.
func Seed(dst *Context, src *Context, mappings map[string]string) {
	for fromKey, toKey := range mappings {
		if v, ok := src.Get(fromKey); ok {
			dst.Set(toKey, v)
		}
	}
}

// CopyBack copies the named keys from src into dst under the given mapping
// (src key -> dst key). Used to apply a Reference node's outputMappings.
func CopyBack(dst *Context, src *Context, mappings map[string]string) {
	for fromKey, toKey := range mappings {
		if v, ok := src.Get(fromKey); ok {
			dst.Set(toKey, v)
		}
	}
}

// ResourceGuard exposes the execution-wide counters that protect against
// runaway workflows (unbounded node executions, HTTP calls, loop iterations).
// Node implementations and the scheduler call through this rather than
// touching the counters directly.
type ResourceGuard interface {
	IncrementNodeExecution() int64
	IncrementHTTPCall() int64
	IncrementLoopIteration() int64
}

// IncrementNodeExecution records one more node having executed and returns
// the new total.
func (c *Context) IncrementNodeExecution() int64 {
	return atomic.AddInt64(&c.nodeExecutions, 1)
}

// IncrementHTTPCall records one more outbound HTTP call and returns the new
// total.
func (c *Context) IncrementHTTPCall() int64 {
	return atomic.AddInt64(&c.httpCalls, 1)
}

// IncrementLoopIteration records one more loop iteration (Reference LOOP
// mode) and returns the new total.
func (c *Context) IncrementLoopIteration() int64 {
	return atomic.AddInt64(&c.loopIterations, 1)
}

// NodeExecutions returns the current node-execution count.
func (c *Context) NodeExecutions() int64 { return atomic.LoadInt64(&c.nodeExecutions) }

// HTTPCalls returns the current HTTP-call count.
func (c *Context) HTTPCalls() int64 { return atomic.LoadInt64(&c.httpCalls) }
