// Package docloader parses the declarative workflow document (spec §6) into
// a validated *workflow.Workflow plus its optional globalConfig block. JSON
// documents are accepted as a syntactic subset of YAML, so both request
// bodies share this one unmarshal path.
package docloader

import (
	"fmt"
	"time"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
	"github.com/yesoreyeram/thaiyyal/backend/pkg/workflow"
	"gopkg.in/yaml.v3"
)

// document mirrors §6's top-level document shape with yaml tags; it is an
// intermediate DTO, never exposed outside this package.
type document struct {
	Workflow     workflowMeta   `yaml:"workflow"`
	GlobalConfig *globalConfig  `yaml:"globalConfig"`
	Nodes        []node         `yaml:"nodes"`
	Connections  []connection   `yaml:"connections"`
}

type workflowMeta struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Version     string         `yaml:"version"`
	Author      string         `yaml:"author"`
	Metadata    map[string]any `yaml:"metadata"`
}

type globalConfig struct {
	Timeout            any    `yaml:"timeout"`
	LogLevel           string `yaml:"logLevel"`
	MaxConcurrentNodes int    `yaml:"maxConcurrentNodes"`
}

type nodePosition struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type node struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Enabled  *bool          `yaml:"enabled"`
	Position *nodePosition  `yaml:"position"`
	Config   map[string]any `yaml:"config"`
}

type connection struct {
	ID        string  `yaml:"id"`
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Enabled   *bool   `yaml:"enabled"`
	Condition *string `yaml:"condition"`
}

// closedNodeKinds is §6's "type drawn from the closed set" validation rule.
var closedNodeKinds = map[string]types.NodeKind{
	"input":     types.NodeKindInput,
	"output":    types.NodeKindOutput,
	"script":    types.NodeKindScript,
	"diagnosis": types.NodeKindDiagnosis,
	"plugin":    types.NodeKindPlugin,
	"reference": types.NodeKindReference,
}

// Load parses raw (YAML, or JSON since it's a YAML subset) into a validated
// Workflow and its optional globalConfig. All of §6's load-time validation
// rules (unique node ids, dangling edges, cycles, unknown kinds, missing
// kind-specific config) surface as a single error via workflow.Build, which
// itself delegates per-node config checks to the node registry.
func Load(raw []byte) (*workflow.Workflow, types.GlobalExecutionConfig, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, types.GlobalExecutionConfig{}, fmt.Errorf("document parse failed: %w", err)
	}

	if doc.Workflow.ID == "" {
		return nil, types.GlobalExecutionConfig{}, fmt.Errorf("document parse failed: workflow.id is required")
	}

	nodes := make([]types.Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		kind, ok := closedNodeKinds[n.Type]
		if !ok {
			return nil, types.GlobalExecutionConfig{}, fmt.Errorf("node %q: unknown type %q", n.ID, n.Type)
		}
		var pos *types.NodePosition
		if n.Position != nil {
			pos = &types.NodePosition{X: n.Position.X, Y: n.Position.Y}
		}
		nodes = append(nodes, types.Node{
			ID:       n.ID,
			Name:     n.Name,
			Kind:     kind,
			Enabled:  n.Enabled,
			Position: pos,
			Config:   n.Config,
		})
	}

	edges := make([]types.Edge, 0, len(doc.Connections))
	for _, c := range doc.Connections {
		edges = append(edges, types.Edge{
			ID:        c.ID,
			Source:    c.From,
			Target:    c.To,
			Enabled:   c.Enabled,
			Condition: c.Condition,
		})
	}

	meta := types.WorkflowMeta{
		ID:          doc.Workflow.ID,
		Name:        doc.Workflow.Name,
		Description: doc.Workflow.Description,
		Version:     doc.Workflow.Version,
		Author:      doc.Workflow.Author,
		Metadata:    doc.Workflow.Metadata,
	}

	wf, err := workflow.Build(meta, nodes, edges)
	if err != nil {
		return nil, types.GlobalExecutionConfig{}, err
	}

	return wf, parseGlobalConfig(doc.GlobalConfig), nil
}

func parseGlobalConfig(gc *globalConfig) types.GlobalExecutionConfig {
	if gc == nil {
		return types.GlobalExecutionConfig{}
	}
	return types.GlobalExecutionConfig{
		Timeout:            parseTimeout(gc.Timeout),
		LogLevel:           gc.LogLevel,
		MaxConcurrentNodes: gc.MaxConcurrentNodes,
	}
}

// parseTimeout accepts either a Go duration string ("30s") or a bare number,
// which is interpreted as milliseconds.
func parseTimeout(raw any) time.Duration {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0
		}
		return d
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v) * time.Millisecond
	default:
		return 0
	}
}
