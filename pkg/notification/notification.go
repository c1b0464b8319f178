// Package notification implements the Notification Dispatcher (spec component
// J): a provider registry plus the templated dispatch pipeline of §4.4.
package notification

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/executor"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// MessageType is the closed set of content encodings a notification may carry.
type MessageType string

const (
	MessageTypeText     MessageType = "TEXT"
	MessageTypeHTML     MessageType = "HTML"
	MessageTypeMarkdown MessageType = "MARKDOWN"
	MessageTypeJSON     MessageType = "JSON"
	MessageTypeTemplate MessageType = "TEMPLATE"
)

// Priority orders delivery urgency; providers may use it for throttling or
// escalation but the dispatcher itself treats it as opaque metadata.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Message is the interpolated, validated payload handed to a Provider.
type Message struct {
	Title        string
	Content      string
	Type         MessageType
	Priority     Priority
	Recipients   []string
	CCRecipients []string
	Attachments  map[string]interface{}
	ScheduleTime *time.Time
}

// Result reports the outcome of a successful Provider.Send.
type Result struct {
	ProviderID string
	Latency    time.Duration
	Details    map[string]interface{}
}

// Provider is the contract every notification transport implements, per
// §4.4: initialize/validate/send/testConnection/destroy plus the declared
// set of message types it can render.
type Provider interface {
	ID() string
	Initialize(config map[string]interface{}) error
	ValidateConfiguration(config map[string]interface{}) error
	Send(ctx context.Context, msg Message) (*Result, error)
	TestConnection(ctx context.Context) (types.TestResult, error)
	Destroy() error
	SupportedMessageTypes() []MessageType
}

// Registry is a named-instance registry of Providers, process-wide and
// shared by all notification nodes, mirroring the teacher's HTTP client
// registry pattern.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its own ID.
func (r *Registry) Register(p Provider) error {
	if p.ID() == "" {
		return fmt.Errorf("provider id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.ID()]; exists {
		return fmt.Errorf("provider %q already registered", p.ID())
	}
	r.providers[p.ID()] = p
	return nil
}

// Get retrieves a provider by ID.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.providers[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", executor.ErrProviderNotRegistered, id)
	}
	return p, nil
}

// List returns all registered provider IDs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}

// stats tracks per-provider dispatch bookkeeping: attempts, successes,
// failures, average latency (spec §4.4).
type stats struct {
	attempts     int64
	successes    int64
	failures     int64
	totalLatency time.Duration
}

// Stats is a point-in-time snapshot of a provider's dispatch metrics.
type Stats struct {
	Attempts       int64
	Successes      int64
	Failures       int64
	AverageLatency time.Duration
}

// Dispatcher runs the §4.4 pipeline: validate, interpolate, check supported
// message type, send, record metrics.
type Dispatcher struct {
	registry *Registry

	mu    sync.Mutex
	stats map[string]*stats
}

// NewDispatcher builds a Dispatcher over the given provider registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry, stats: make(map[string]*stats)}
}

// Dispatch satisfies executor.NotificationDispatcher: it renders the node's
// templated message and delivers it through the configured provider.
func (d *Dispatcher) Dispatch(ctx executor.ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	providerType, _ := node.Config["providerType"].(string)
	if providerType == "" {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, "notification node missing providerType", nil)
	}

	provider, err := d.registry.Get(providerType)
	if err != nil {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, "provider not registered", err)
	}

	providerConfig, _ := node.Config["providerConfig"].(map[string]interface{})
	if err := provider.ValidateConfiguration(providerConfig); err != nil {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig, "provider configuration invalid", err)
	}

	payload := input
	inputKey, _ := node.Config["inputKey"].(string)
	if inputKey != "" {
		if v, found := ctx.Get(inputKey); found {
			payload = v
		}
	}

	title := interpolate(stringConfig(node.Config, "title"), ctx, payload, inputKey)
	content := interpolate(stringConfig(node.Config, "contentTemplate"), ctx, payload, inputKey)

	msgType := MessageType(stringConfig(node.Config, "messageType"))
	if msgType == "" {
		msgType = MessageTypeText
	}
	if !supports(provider, msgType) {
		return nil, executor.NewNodeError(executor.CodeInvalidConfig,
			fmt.Sprintf("provider %q does not support message type %q", provider.ID(), msgType),
			executor.ErrUnsupportedMessageType)
	}

	msg := Message{
		Title:        title,
		Content:      content,
		Type:         msgType,
		Priority:     Priority(stringConfig(node.Config, "priority")),
		Recipients:   stringSliceConfig(node.Config, "recipients"),
		CCRecipients: stringSliceConfig(node.Config, "ccRecipients"),
	}
	if attachments, ok := node.Config["attachments"].(map[string]interface{}); ok {
		msg.Attachments = attachments
	}

	start := time.Now()
	result, err := provider.Send(ctx.Context(), msg)
	latency := time.Since(start)

	d.record(provider.ID(), latency, err == nil)

	if err != nil {
		return nil, executor.NewNodeError(executor.CodeReadFailed, "notification send failed", err)
	}

	if outputKey, ok := node.Config["outputKey"].(string); ok && outputKey != "" {
		ctx.Set(outputKey, result)
	}

	return result, nil
}

func (d *Dispatcher) record(providerID string, latency time.Duration, success bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.stats[providerID]
	if !ok {
		s = &stats{}
		d.stats[providerID] = s
	}
	s.attempts++
	s.totalLatency += latency
	if success {
		s.successes++
	} else {
		s.failures++
	}
}

// Stats returns a snapshot of dispatch metrics for the given provider.
func (d *Dispatcher) Stats(providerID string) Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.stats[providerID]
	if !ok || s.attempts == 0 {
		return Stats{}
	}
	return Stats{
		Attempts:       s.attempts,
		Successes:      s.successes,
		Failures:       s.failures,
		AverageLatency: s.totalLatency / time.Duration(s.attempts),
	}
}

func supports(p Provider, mt MessageType) bool {
	for _, supported := range p.SupportedMessageTypes() {
		if supported == mt {
			return true
		}
	}
	return false
}

func stringConfig(config map[string]interface{}, key string) string {
	v, _ := config[key].(string)
	return v
}

func stringSliceConfig(config map[string]interface{}, key string) []string {
	raw, ok := config[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// interpolationPattern matches both `${ctx.key}` and `${key}` placeholders.
var interpolationPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolate resolves `${ctx.key}` against the execution context and
// `${key}` against the node's input payload. When the payload is itself a
// record, `${key}` picks one of its fields; when the payload is a scalar
// resolved from a single inputKey (the legacy single-input mode of §4.7),
// `${key}` matches only when key equals that inputKey, binding the whole
// scalar.
func interpolate(template string, ctx executor.ExecutionContext, payload interface{}, inputKey string) string {
	if template == "" {
		return ""
	}

	payloadMap, _ := payload.(map[string]interface{})

	return interpolationPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := interpolationPattern.FindStringSubmatch(match)[1]

		const ctxPrefix = "ctx."
		if len(key) > len(ctxPrefix) && key[:len(ctxPrefix)] == ctxPrefix {
			v, ok := ctx.Get(key[len(ctxPrefix):])
			if !ok {
				return match
			}
			return fmt.Sprintf("%v", v)
		}

		if payloadMap != nil {
			if v, ok := payloadMap[key]; ok {
				return fmt.Sprintf("%v", v)
			}
			return match
		}

		if inputKey != "" && key == inputKey && payload != nil {
			return fmt.Sprintf("%v", payload)
		}
		return match
	})
}
