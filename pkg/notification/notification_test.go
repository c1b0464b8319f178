package notification

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/executor"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/logging"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// fakeContext is a minimal executor.ExecutionContext for exercising the
// dispatcher without the scheduler.
type fakeContext struct {
	data   map[string]interface{}
	logger *logging.Logger
}

func newFakeContext() *fakeContext {
	return &fakeContext{data: make(map[string]interface{}), logger: logging.New(logging.DefaultConfig())}
}

func (f *fakeContext) WorkflowID() string                  { return "wf-1" }
func (f *fakeContext) ExecutionID() string                 { return "exec-1" }
func (f *fakeContext) StartTime() time.Time                { return time.Unix(0, 0) }
func (f *fakeContext) Get(key string) (interface{}, bool)  { v, ok := f.data[key]; return v, ok }
func (f *fakeContext) Set(key string, value interface{})   { f.data[key] = value }
func (f *fakeContext) Delete(key string)                   { delete(f.data, key) }
func (f *fakeContext) Snapshot() map[string]interface{}    { return f.data }
func (f *fakeContext) IncrementNodeExecution() int64       { return 1 }
func (f *fakeContext) IncrementHTTPCall() int64            { return 1 }
func (f *fakeContext) IncrementLoopIteration() int64       { return 1 }
func (f *fakeContext) Config() types.Config                { return types.Config{} }
func (f *fakeContext) Logger() *logging.Logger              { return f.logger }
func (f *fakeContext) Plugins() executor.PluginRegistry      { return nil }
func (f *fakeContext) References() executor.ReferenceInvoker { return nil }
func (f *fakeContext) Notifications() executor.NotificationDispatcher { return nil }
func (f *fakeContext) Context() context.Context             { return context.Background() }

func TestDispatch_ConsoleProvider_LiteralScalarPayload(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleProvider()
	console.out = &buf

	registry := NewRegistry()
	if err := registry.Register(console); err != nil {
		t.Fatalf("register: %v", err)
	}
	dispatcher := NewDispatcher(registry)

	ctx := newFakeContext()
	ctx.Set("y", 20)

	node := types.Node{ID: "c", Kind: types.NodeKindOutput, Config: map[string]interface{}{
		"providerType":    "console",
		"providerConfig":  map[string]interface{}{},
		"inputKey":        "y",
		"contentTemplate": "y=${y}",
		"messageType":     "TEXT",
	}}

	if _, err := dispatcher.Dispatch(ctx, node, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "y=20") {
		t.Errorf("console output = %q, want it to contain %q", buf.String(), "y=20")
	}
}

func TestDispatch_ContextPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleProvider()
	console.out = &buf

	registry := NewRegistry()
	registry.Register(console)
	dispatcher := NewDispatcher(registry)

	ctx := newFakeContext()
	ctx.Set("env", "prod")

	node := types.Node{ID: "c", Kind: types.NodeKindOutput, Config: map[string]interface{}{
		"providerType":    "console",
		"providerConfig":  map[string]interface{}{},
		"contentTemplate": "env=${ctx.env}",
	}}

	if _, err := dispatcher.Dispatch(ctx, node, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "env=prod") {
		t.Errorf("console output = %q, want it to contain env=prod", buf.String())
	}
}

func TestDispatch_MapPayloadFieldInterpolation(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleProvider()
	console.out = &buf
	registry := NewRegistry()
	registry.Register(console)
	dispatcher := NewDispatcher(registry)

	ctx := newFakeContext()
	node := types.Node{ID: "c", Kind: types.NodeKindOutput, Config: map[string]interface{}{
		"providerType":    "console",
		"providerConfig":  map[string]interface{}{},
		"contentTemplate": "hello ${name}",
	}}
	input := map[string]interface{}{"name": "world"}

	if _, err := dispatcher.Dispatch(ctx, node, input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "hello world") {
		t.Errorf("console output = %q, want it to contain 'hello world'", buf.String())
	}
}

func TestDispatch_ProviderNotRegistered(t *testing.T) {
	dispatcher := NewDispatcher(NewRegistry())
	ctx := newFakeContext()
	node := types.Node{Kind: types.NodeKindOutput, Config: map[string]interface{}{"providerType": "missing"}}

	if _, err := dispatcher.Dispatch(ctx, node, nil); err == nil {
		t.Fatal("expected error for unregistered provider")
	}
}

func TestDispatch_MissingProviderType(t *testing.T) {
	dispatcher := NewDispatcher(NewRegistry())
	ctx := newFakeContext()
	node := types.Node{Kind: types.NodeKindOutput, Config: map[string]interface{}{}}

	if _, err := dispatcher.Dispatch(ctx, node, nil); err == nil {
		t.Fatal("expected error for missing providerType")
	}
}

func TestDispatch_UnsupportedMessageType(t *testing.T) {
	console := NewConsoleProvider()
	registry := NewRegistry()
	registry.Register(console)
	dispatcher := NewDispatcher(registry)

	ctx := newFakeContext()
	node := types.Node{Kind: types.NodeKindOutput, Config: map[string]interface{}{
		"providerType": "console",
		"messageType":  "HTML",
	}}

	if _, err := dispatcher.Dispatch(ctx, node, nil); err == nil {
		t.Fatal("expected error for unsupported message type")
	}
}

func TestDispatch_RecordsStats(t *testing.T) {
	console := NewConsoleProvider()
	console.out = &bytes.Buffer{}
	registry := NewRegistry()
	registry.Register(console)
	dispatcher := NewDispatcher(registry)

	ctx := newFakeContext()
	node := types.Node{Kind: types.NodeKindOutput, Config: map[string]interface{}{
		"providerType":    "console",
		"contentTemplate": "hi",
	}}

	if _, err := dispatcher.Dispatch(ctx, node, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := dispatcher.Stats("console")
	if stats.Attempts != 1 || stats.Successes != 1 {
		t.Errorf("stats = %+v, want 1 attempt 1 success", stats)
	}
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewConsoleProvider())
	if err := registry.Register(NewConsoleProvider()); err == nil {
		t.Fatal("expected error registering duplicate provider id")
	}
}

func TestFileProvider_RequiresPath(t *testing.T) {
	p := NewFileProvider()
	if err := p.Initialize(map[string]interface{}{}); err == nil {
		t.Fatal("expected error when path missing")
	}
}
