// Package logging provides structured logging capabilities for the workflow engine.
//
// # Overview
//
// Logger wraps log/slog. It writes one JSON object per entry by default, or
// slog's key=value text format when Config.Pretty is set, and offers helpers
// that attach workflow, execution and node identifiers to every entry.
//
// # Features
//
//   - Structured logging: JSON (default) and text (Config.Pretty) formats
//   - Log levels: debug, info, warn (or "warning"), error; an empty or
//     unknown Config.Level means info
//   - Context fields: WithWorkflowID, WithExecutionID, WithNodeID and
//     WithNodeKind add workflow_id, execution_id, node_id and node_type
//   - Custom fields: WithField, WithFields and WithError (key "error")
//   - Context propagation: WithContext stores the logger in a
//     context.Context and FromContext retrieves it
//   - Thread-safe: Safe for concurrent use
//   - Flexible output: Write to any io.Writer (default os.Stdout)
//
// Each With* call returns a new Logger and leaves the receiver unchanged.
//
// # Log Levels
//
// The package supports standard log levels:
//
//   - DEBUG: Detailed diagnostic information
//   - INFO: General informational messages
//   - WARN: Warning messages for potential issues
//   - ERROR: Error messages for failures
//
// # Basic Usage
//
//	import "github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
//
//	// Create logger
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Output: os.Stdout,
//	})
//
//	// Log messages; fields are attached with the With* helpers
//	logger.
//	    WithWorkflowID("wf-123").
//	    WithField("node_count", 42).
//	    Info("Workflow started")
//
//	logger.WithNodeID("node-5").WithError(err).Error("Execution failed")
//
// Debug, Info, Warn and Error take a message only; Debugf, Infof, Warnf and
// Errorf take a format string and arguments. Fatal and Fatalf log at error
// level and then call os.Exit(1).
//
// # Context Integration
//
// A logger can be carried in a Go context:
//
//	ctx = logger.WithExecutionID("exec-456").WithContext(ctx)
//
//	// later, possibly in another package
//	logging.FromContext(ctx).Info("Node executing")
//
// FromContext returns a new logger built from DefaultConfig when the context
// holds none.
//
// # Structured Fields
//
//	logger.WithFields(map[string]interface{}{
//	    "method":      "GET",
//	    "status":      200,
//	    "duration_ms": 145,
//	}).Info("Request completed")
//
// # Output Formats
//
// JSON format (default), as written by slog's JSON handler:
//
//	{"time":"2024-01-15T10:30:00Z","level":"INFO","msg":"Workflow started","workflow_id":"wf-123","execution_id":"exec-456"}
//
// Text format (Config.Pretty = true):
//
//	time=2024-01-15T10:30:00.000Z level=INFO msg="Workflow started" workflow_id=wf-123 execution_id=exec-456
//
// # Configuration
//
// Logger configuration options:
//
//	config := logging.Config{
//	    Level:         "debug",   // Minimum level to log
//	    Output:        os.Stdout, // Where to write logs
//	    Pretty:        false,     // true selects the text format
//	    IncludeCaller: true,      // Adds slog's "source" attribute
//	}
//
// DefaultConfig returns level info, output os.Stdout, JSON format and no
// caller information.
//
// # Best Practices
//
//   - Use structured fields instead of string formatting
//   - Include execution context (workflow_id, node_id, etc.)
//   - Log at appropriate levels (avoid debug in production)
//   - Add timing information for performance analysis
//   - Include error context (not just error message)
//   - Use consistent field names across the codebase
//
// # Thread Safety
//
// All logger operations are thread-safe and can be used concurrently
// from multiple goroutines without additional synchronization.
//
// # Testing
//
// For testing, use a logger with a buffer:
//
//	buf := &bytes.Buffer{}
//	logger := logging.New(logging.Config{
//	    Output: buf,
//	})
//
//	// Execute code
//	// Verify log output
//	if !strings.Contains(buf.String(), "expected message") {
//	    t.Errorf("missing log entry: %s", buf.String())
//	}
package logging
