// Package executor implements the Node Contract (spec component B) and the
// six built-in node kinds (component C) as a Strategy Pattern registry.
package executor

import (
	"context"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// ExecutionContext provides a node with everything it needs to run without
// the node importing the scheduler, the plugin registry, or the workflow
// registry directly. This interface is what breaks those circular
// dependencies: leaf executors depend only on pkg/executor and pkg/types.
type ExecutionContext interface {
	// Identity
	WorkflowID() string
	ExecutionID() string
	StartTime() time.Time

	// Context Store (component A)
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Delete(key string)
	Snapshot() map[string]interface{}

	// Resource guard
	IncrementNodeExecution() int64
	IncrementHTTPCall() int64
	IncrementLoopIteration() int64

	// Configuration
	Config() types.Config

	// Logger returns the logger scoped to this execution.
	Logger() *logging.Logger

	// Collaborators, resolved lazily so leaf packages never import the
	// concrete plugin/reference/notification/workflow-registry packages.
	Plugins() PluginRegistry
	References() ReferenceInvoker
	Notifications() NotificationDispatcher

	// Context goes along for cancellation of blocking operations
	// (plugin reads, notification sends, reference waits).
	Context() context.Context
}

// PluginRegistry is the subset of pkg/plugin.Registry the Plugin node needs.
type PluginRegistry interface {
	GetPlugin(pluginID string) (types.Plugin, error)
	CreateConnection(pluginID string, config map[string]interface{}, ctx context.Context) (types.Connection, error)
}

// ReferenceInvoker is the subset of pkg/reference.Executor the Reference node
// needs.
type ReferenceInvoker interface {
	Invoke(ctx ExecutionContext, node types.Node) (interface{}, error)
}

// NotificationDispatcher is the subset of pkg/notification.Dispatcher the
// Notification (output) node needs.
type NotificationDispatcher interface {
	Dispatch(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error)
}

// NodeExecutor defines the operation surface of §4.1: validate, execute,
// optional teardown.
type NodeExecutor interface {
	// Kind returns the node kind this executor handles.
	Kind() types.NodeKind

	// Validate is pure: it may inspect config but not context. It returns
	// field-path-qualified errors and warnings.
	Validate(node types.Node) types.ValidationResult

	// Execute is side-effecting: it may read/write the context. It must
	// never panic across the boundary; the scheduler recovers panics and
	// converts them to a NodeExecution failure regardless, but executors
	// should return errors normally.
	Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error)
}

// Destroyer is an optional NodeExecutor capability for node kinds holding
// long-lived handles (plugin nodes with cached connections).
type Destroyer interface {
	Destroy(node types.Node) error
}

// NodeError carries a stable error code (§7) alongside a human message.
type NodeError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *NodeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *NodeError) Unwrap() error { return e.Cause }

// NewNodeError builds a NodeError.
func NewNodeError(code ErrorCode, message string, cause error) *NodeError {
	return &NodeError{Code: code, Message: message, Cause: cause}
}
