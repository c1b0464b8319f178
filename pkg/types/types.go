// Package types provides shared type definitions for the dataflow engine.
// All core data structures used across packages are defined here to avoid circular dependencies.
package types

import (
	"context"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/config"
)

// ============================================================================
// Context Keys
// ============================================================================

// contextKey is used for context keys to avoid collisions
type contextKey string

const (
	// ContextKeyExecutionID is the context key for the unique execution ID
	ContextKeyExecutionID contextKey = "execution_id"

	// ContextKeyWorkflowID is the context key for the workflow ID
	ContextKeyWorkflowID contextKey = "workflow_id"
)

// GetExecutionID extracts the execution ID from context.
// Returns empty string if not found in context.
func GetExecutionID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyExecutionID).(string); ok {
		return id
	}
	return ""
}

// GetWorkflowID extracts the workflow ID from context.
// Returns empty string if not found in context.
func GetWorkflowID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyWorkflowID).(string); ok {
		return id
	}
	return ""
}

// ============================================================================
// Node Kinds
// ============================================================================

// NodeKind represents the kind of work a node performs. A workflow document
// names one of these per node; the scheduler dispatches on it.
type NodeKind string

const (
	NodeKindInput        NodeKind = "input"
	NodeKindOutput       NodeKind = "output" // notification / output node
	NodeKindScript       NodeKind = "script"
	NodeKindDiagnosis    NodeKind = "diagnosis"
	NodeKindPlugin       NodeKind = "plugin"
	NodeKindReference    NodeKind = "reference"
)

// ============================================================================
// Workflow Document
// ============================================================================

// Node represents a single unit of work in a workflow's DAG. It is constructed
// from the declarative document and validated once at workflow build time;
// it does not mutate after that.
type Node struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	Kind     NodeKind       `json:"type"`
	Enabled  *bool          `json:"enabled,omitempty"` // nil == true (default enabled)
	Position *NodePosition  `json:"position,omitempty"`
	Config   map[string]any `json:"config"`
}

// IsEnabled reports whether the node should execute. Nodes default to enabled.
func (n Node) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// NodePosition is carried for visualization only; it has no execution semantics.
type NodePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge represents a directed dependency between two nodes. It constrains
// ordering and gates execution on the source node's success.
type Edge struct {
	ID        string  `json:"id,omitempty"`
	Source    string  `json:"from"`
	Target    string  `json:"to"`
	Enabled   *bool   `json:"enabled,omitempty"`
	Condition *string `json:"condition,omitempty"`
}

// IsEnabled reports whether the edge participates in scheduling. Edges default
// to enabled.
func (e Edge) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// WorkflowMeta is the descriptive header of a workflow document.
type WorkflowMeta struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version,omitempty"`
	Author      string         `json:"author,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Workflow groups a workflow's metadata, nodes and edges as plain data.
// pkg/workflow.Build does not return this type: it validates the same parts
// and returns its own immutable *workflow.Workflow, the unit of execution.
type Workflow struct {
	Meta  WorkflowMeta
	Nodes []Node
	Edges []Edge
}

// GlobalExecutionConfig mirrors the document's optional globalConfig block.
type GlobalExecutionConfig struct {
	Timeout            time.Duration `json:"timeout,omitempty"`
	LogLevel           string        `json:"logLevel,omitempty"`
	MaxConcurrentNodes int           `json:"maxConcurrentNodes,omitempty"`
}

// ============================================================================
// Execution Results
// ============================================================================

// NodeExecutionResult is the outcome of executing (or skipping) a single node.
type NodeExecutionResult struct {
	NodeID     string         `json:"nodeId"`
	Success    bool           `json:"success"`
	Executed   bool           `json:"executed"`
	Message    string         `json:"message,omitempty"`
	Data       any            `json:"data,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	StartTime  time.Time      `json:"startTime"`
	DurationMs int64          `json:"durationMs"`
}

// WorkflowExecutionResult is the outcome of a single top-level or sub-workflow
// invocation.
type WorkflowExecutionResult struct {
	ExecutionID string                         `json:"executionId"`
	WorkflowID  string                         `json:"workflowId,omitempty"`
	Success     bool                           `json:"success"`
	Message     string                         `json:"message,omitempty"`
	NodeResults map[string]NodeExecutionResult `json:"nodeResults"`
	Context     map[string]any                 `json:"context,omitempty"`
	Stats       ExecutionStats                 `json:"stats"`
}

// ExecutionStats summarizes a workflow execution.
type ExecutionStats struct {
	TotalNodes          int     `json:"totalNodes"`
	SuccessfulNodes      int     `json:"successfulNodes"`
	FailedNodes          int     `json:"failedNodes"`
	AverageNodeDuration  float64 `json:"averageNodeDurationMs"`
}

// ValidationResult is the verdict of a pure validation pass: node config,
// or a whole workflow.
type ValidationResult struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether the validation produced no errors.
func (v ValidationResult) Valid() bool {
	return len(v.Errors) == 0
}

// Merge combines another ValidationResult into this one.
func (v *ValidationResult) Merge(other ValidationResult) {
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

// ============================================================================
// Plugin Contract
// ============================================================================

// ParameterType is the closed set of types a plugin parameter may declare.
type ParameterType string

const (
	ParameterTypeString   ParameterType = "string"
	ParameterTypeInt      ParameterType = "int"
	ParameterTypeLong     ParameterType = "long"
	ParameterTypeDouble   ParameterType = "double"
	ParameterTypeBool     ParameterType = "bool"
	ParameterTypePassword ParameterType = "password"
	ParameterTypeFilePath ParameterType = "file-path"
	ParameterTypeURL      ParameterType = "url"
	ParameterTypeJSON     ParameterType = "json"
	ParameterTypeEnum     ParameterType = "enum"
	ParameterTypeList     ParameterType = "list"
)

// ParameterSpec describes one configuration parameter a plugin accepts.
type ParameterSpec struct {
	Name             string        `json:"name"`
	DisplayName      string        `json:"displayName,omitempty"`
	Description      string        `json:"description,omitempty"`
	Type             ParameterType `json:"type"`
	Required         bool          `json:"required"`
	DefaultValue     any           `json:"defaultValue,omitempty"`
	Options          []string      `json:"options,omitempty"` // for enum
	Category         string        `json:"category,omitempty"`
	Sensitive        bool          `json:"sensitive,omitempty"`
	ValidationRegexp string        `json:"validationRegexp,omitempty"`
}

// PluginUsageInfo is bookkeeping the resource manager keeps per loaded plugin.
type PluginUsageInfo struct {
	CreateTime     time.Time
	LastAccessTime time.Time
	AccessCount    int64
}

// TestResult is the outcome of a plugin's out-of-band connection probe.
type TestResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Plugin is the contract every data-source plugin implements. The plugin
// registry (pkg/plugin) owns discovery and lifecycle; node implementations
// only ever see this interface.
type Plugin interface {
	ID() string
	Name() string
	Version() string
	Author() string
	Description() string
	SupportedParameters() []ParameterSpec
	Initialize(globalConfig map[string]any) error
	ValidateConfig(config map[string]any) ValidationResult
	CreateConnection(config map[string]any, ctx context.Context) (Connection, error)
	TestConnection(config map[string]any) (TestResult, error)
	Destroy() error
}

// SchemaProvider is an optional Plugin capability: a plugin may describe its
// config shape as a JSON-Schema document for editor tooling.
type SchemaProvider interface {
	Schema(config map[string]any) (map[string]any, error)
}

// DependencyLister is an optional Plugin capability that lists a plugin's
// declared third-party dependencies. The security scan (§4.8.1) does not call
// it; it reads plugin.Manifest.Dependencies.
type DependencyLister interface {
	Dependencies() []string
}

// Connection is a scoped resource produced by a plugin for a single read
// operation. It is exclusively owned by the node that created it and must be
// closed on every exit path, success or failure.
type Connection interface {
	ReadData(ctx context.Context) (any, error)
	IsConnected() bool
	ConnectionInfo() map[string]any
	Close() error
}

// PagedConnection is an optional Connection capability for plugins that
// support paginated reads.
type PagedConnection interface {
	ReadPaged(pageSize, pageNumber int) (Page, error)
}

// Page is one page of a paginated plugin read.
type Page struct {
	Items      []any `json:"items"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	HasMore    bool  `json:"hasMore"`
}

// StreamingConnection is an optional Connection capability for plugins that
// support streamed reads via callback.
type StreamingConnection interface {
	ReadStream(callback func(item any) error) error
}

// FindingLevel is the severity of a single security-scan result. The scan in
// pkg/plugin/security.go uses its own plugin.Severity with the same values.
type FindingLevel string

const (
	FindingCritical FindingLevel = "CRITICAL"
	FindingWarning  FindingLevel = "WARNING"
	FindingMinor    FindingLevel = "MINOR"
	FindingInfo     FindingLevel = "INFO"
)

// Config is a type alias for backward compatibility.
// The actual configuration is now in the config package.
// Deprecated: Use github.com/yesoreyeram/thaiyyal/backend/pkg/config.Config instead.
type Config = config.Config
