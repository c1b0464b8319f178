package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/httpclient"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

var titleCaser = cases.Title(language.English)

// ConsoleProvider writes notifications to an io.Writer (stdout by default).
// It is the reference provider used in tests and local development.
type ConsoleProvider struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
}

// NewConsoleProvider creates a console provider writing to os.Stdout.
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{out: os.Stdout}
}

func (p *ConsoleProvider) ID() string { return "console" }

func (p *ConsoleProvider) Initialize(config map[string]interface{}) error {
	if prefix, ok := config["prefix"].(string); ok {
		p.prefix = prefix
	}
	return nil
}

func (p *ConsoleProvider) ValidateConfiguration(config map[string]interface{}) error {
	return nil
}

func (p *ConsoleProvider) Send(ctx context.Context, msg Message) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := titleCaser.String(msg.Title)
	_, err := fmt.Fprintf(p.out, "%s[%s] %s: %s\n", p.prefix, msg.Priority, title, msg.Content)
	if err != nil {
		return nil, fmt.Errorf("console write failed: %w", err)
	}

	return &Result{
		ProviderID: p.ID(),
		Details:    map[string]interface{}{"messageId": uuid.NewString()},
	}, nil
}

func (p *ConsoleProvider) TestConnection(ctx context.Context) (types.TestResult, error) {
	return types.TestResult{Success: true, Message: "console provider always reachable"}, nil
}

func (p *ConsoleProvider) Destroy() error { return nil }

func (p *ConsoleProvider) SupportedMessageTypes() []MessageType {
	return []MessageType{MessageTypeText, MessageTypeMarkdown, MessageTypeJSON}
}

// FileProvider appends notifications as newline-delimited JSON to a file.
type FileProvider struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewFileProvider creates a file provider; Initialize opens the target path.
func NewFileProvider() *FileProvider {
	return &FileProvider{}
}

func (p *FileProvider) ID() string { return "file" }

func (p *FileProvider) Initialize(config map[string]interface{}) error {
	path, _ := config["path"].(string)
	if path == "" {
		return fmt.Errorf("file provider requires config.path")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening notification file: %w", err)
	}

	p.mu.Lock()
	p.path = path
	p.file = f
	p.mu.Unlock()
	return nil
}

func (p *FileProvider) ValidateConfiguration(config map[string]interface{}) error {
	if path, _ := config["path"].(string); path == "" {
		return fmt.Errorf("config.path is required")
	}
	return nil
}

func (p *FileProvider) Send(ctx context.Context, msg Message) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return nil, fmt.Errorf("file provider not initialized")
	}

	record := map[string]interface{}{
		"messageId": uuid.NewString(),
		"title":     msg.Title,
		"content":   msg.Content,
		"type":      msg.Type,
		"priority":  msg.Priority,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	line, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding notification record: %w", err)
	}
	if _, err := p.file.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("writing notification record: %w", err)
	}

	return &Result{
		ProviderID: p.ID(),
		Details:    map[string]interface{}{"path": p.path, "messageId": record["messageId"]},
	}, nil
}

func (p *FileProvider) TestConnection(ctx context.Context) (types.TestResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return types.TestResult{Success: false, Message: "not initialized"}, nil
	}
	return types.TestResult{Success: true, Message: fmt.Sprintf("writable: %s", p.path)}, nil
}

func (p *FileProvider) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

func (p *FileProvider) SupportedMessageTypes() []MessageType {
	return []MessageType{MessageTypeText, MessageTypeJSON, MessageTypeMarkdown}
}

// WebhookProvider posts notifications to a chat-webhook-style HTTP endpoint,
// using pkg/httpclient's zero-trust builder for SSRF protection.
type WebhookProvider struct {
	builder *httpclient.Builder

	mu         sync.Mutex
	url        string
	httpClient *httpclient.Client
}

// NewWebhookProvider creates a webhook provider bound to engineConfig's
// network access-control settings.
func NewWebhookProvider(engineConfig types.Config) *WebhookProvider {
	return &WebhookProvider{builder: httpclient.NewBuilder(engineConfig)}
}

func (p *WebhookProvider) ID() string { return "chat-webhook" }

func (p *WebhookProvider) Initialize(config map[string]interface{}) error {
	url, _ := config["url"].(string)
	if url == "" {
		return fmt.Errorf("webhook provider requires config.url")
	}

	client, err := p.builder.Build(&httpclient.ClientConfig{
		Name:    "notification-webhook",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("building webhook http client: %w", err)
	}

	p.mu.Lock()
	p.url = url
	p.httpClient = client
	p.mu.Unlock()
	return nil
}

func (p *WebhookProvider) ValidateConfiguration(config map[string]interface{}) error {
	if url, _ := config["url"].(string); url == "" {
		return fmt.Errorf("config.url is required")
	}
	return nil
}

func (p *WebhookProvider) Send(ctx context.Context, msg Message) (*Result, error) {
	p.mu.Lock()
	url, client := p.url, p.httpClient
	p.mu.Unlock()

	if client == nil {
		return nil, fmt.Errorf("webhook provider not initialized")
	}

	body, err := json.Marshal(map[string]interface{}{
		"title":    msg.Title,
		"text":     msg.Content,
		"priority": msg.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return &Result{
		ProviderID: p.ID(),
		Latency:    latency,
		Details:    map[string]interface{}{"statusCode": resp.StatusCode, "messageId": uuid.NewString()},
	}, nil
}

func (p *WebhookProvider) TestConnection(ctx context.Context) (types.TestResult, error) {
	p.mu.Lock()
	url := p.url
	p.mu.Unlock()
	if url == "" {
		return types.TestResult{Success: false, Message: "not initialized"}, nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return types.TestResult{Success: false, Message: "webhook url must be http(s)"}, nil
	}
	return types.TestResult{Success: true, Message: "webhook url well-formed"}, nil
}

func (p *WebhookProvider) Destroy() error { return nil }

func (p *WebhookProvider) SupportedMessageTypes() []MessageType {
	return []MessageType{MessageTypeText, MessageTypeJSON, MessageTypeTemplate}
}
