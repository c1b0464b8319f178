package executor

import "errors"

// ErrorCode is a stable identifier attached to node-level failures so callers
// can branch on failure kind without string-matching messages.
type ErrorCode string

const (
	CodePluginNotFound       ErrorCode = "PLUGIN_NOT_FOUND"
	CodeConnectionFailed     ErrorCode = "CONNECTION_FAILED"
	CodeInvalidConfig        ErrorCode = "INVALID_CONFIG"
	CodeReadFailed           ErrorCode = "READ_FAILED"
	CodeCircularDependency   ErrorCode = "CIRCULAR_DEPENDENCY"
	CodeTimeout              ErrorCode = "TIMEOUT"
	CodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	CodePredecessorFailed    ErrorCode = "PREDECESSOR_FAILED"
	CodeInputResolutionFailed ErrorCode = "INPUT_RESOLUTION_FAILED"
)

// Sentinel errors for node execution, grouped by the taxonomy of §7:
// InputResolution, NodeExecution, and the synthetic PredecessorFailure.
var (
	// Input resolution errors (Multi-Input Processor, §4.7)
	ErrInputResolutionFailed = errors.New("input resolution failed")
	ErrRequiredInputMissing  = errors.New("required input slot missing")
	ErrInputTypeMismatch     = errors.New("input type mismatch")

	// Script node errors (§4.2)
	ErrScriptEvaluation = errors.New("script evaluation failed")

	// Diagnosis node errors (§4.3)
	ErrNoInput         = errors.New("no input")
	ErrNotACollection  = errors.New("input is not a collection")
	ErrUnknownDiagnosis = errors.New("unknown diagnosis type")

	// Notification node errors (§4.4)
	ErrProviderNotRegistered  = errors.New("notification provider not registered")
	ErrUnsupportedMessageType = errors.New("message type not supported by provider")
	ErrSendFailed             = errors.New("notification send failed")

	// Plugin node errors (§4.5)
	ErrPluginNotFound   = errors.New("plugin not found")
	ErrConnectionFailed = errors.New("connection failed")

	// Reference node errors (§4.6)
	ErrWorkflowNotFound        = errors.New("target workflow not found or not active")
	ErrCircularWorkflowDependency = errors.New("circular workflow dependency")
	ErrReferenceTimeout        = errors.New("reference invocation timed out")

	// Predecessor-failure gate (§4.10, §7)
	ErrPredecessorFailed = errors.New("predecessor failed")
)
