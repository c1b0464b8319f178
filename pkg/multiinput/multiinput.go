// Package multiinput implements the Multi-Input Processor (spec component G):
// it resolves a node's declared input slots into the single payload the node
// executor receives as `input`.
package multiinput

import (
	"fmt"
	"strconv"
)

// Mode selects how a node's input is resolved.
type Mode string

const (
	// ModeSingle reads ctx.data[inputKey] directly. This is the legacy
	// default when a node declares only `inputKey`.
	ModeSingle Mode = "single"

	// ModeMultiple resolves each declared Parameter from the context and
	// exposes an object keyed by each parameter's Alias.
	ModeMultiple Mode = "multiple"

	// ModeMerged resolves like ModeMultiple, then collapses the per-alias
	// object down to a single value under MergeKey.
	ModeMerged Mode = "merged"
)

// DataType is the closed set of types a Parameter may declare.
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeInt    DataType = "int"
	DataTypeLong   DataType = "long"
	DataTypeDouble DataType = "double"
	DataTypeBool   DataType = "bool"
	DataTypeArray  DataType = "array"
	DataTypeObject DataType = "object"
)

// Parameter describes one input slot in MULTIPLE/MERGED mode.
type Parameter struct {
	Key          string
	Alias        string
	Required     bool
	DataType     DataType
	DefaultValue interface{}
	Description  string
}

// Spec is a node's declared input-resolution configuration.
type Spec struct {
	Mode      Mode
	InputKey  string // ModeSingle
	Params    []Parameter
	MergeKey  string // ModeMerged
}

// ContextReader is the minimal read access the processor needs; satisfied by
// execctx.Context and by ExecutionContext.
type ContextReader interface {
	Get(key string) (interface{}, bool)
}

// ResolutionError reports a pre-execution input-resolution failure
// (spec §4.7: "phase=input-resolution").
type ResolutionError struct {
	Parameter string
	Reason    string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("input resolution failed for %q: %s", e.Parameter, e.Reason)
}

// Resolve computes the single `input` payload a node executor receives.
func Resolve(ctx ContextReader, spec Spec) (interface{}, error) {
	switch spec.Mode {
	case "", ModeSingle:
		if spec.InputKey == "" {
			return nil, nil
		}
		v, _ := ctx.Get(spec.InputKey)
		return v, nil

	case ModeMultiple:
		return resolveMultiple(ctx, spec.Params)

	case ModeMerged:
		resolved, err := resolveMultiple(ctx, spec.Params)
		if err != nil {
			return nil, err
		}
		if spec.MergeKey == "" {
			return resolved, nil
		}
		merged, ok := resolved.(map[string]interface{})[spec.MergeKey]
		if !ok {
			return nil, &ResolutionError{Parameter: spec.MergeKey, Reason: "mergeKey not present among resolved aliases"}
		}
		return merged, nil

	default:
		return nil, &ResolutionError{Parameter: "", Reason: fmt.Sprintf("unknown input mode: %s", spec.Mode)}
	}
}

func resolveMultiple(ctx ContextReader, params []Parameter) (interface{}, error) {
	out := make(map[string]interface{}, len(params))
	for _, p := range params {
		alias := p.Alias
		if alias == "" {
			alias = p.Key
		}

		v, ok := ctx.Get(p.Key)
		if !ok {
			if p.Required {
				return nil, &ResolutionError{Parameter: p.Key, Reason: "required input missing"}
			}
			v = p.DefaultValue
		}

		if v != nil && p.DataType != "" {
			coerced, err := coerce(v, p.DataType)
			if err != nil {
				return nil, &ResolutionError{Parameter: p.Key, Reason: err.Error()}
			}
			v = coerced
		}

		out[alias] = v
	}
	return out, nil
}

// coerce converts v toward the requested DataType, covering the
// (source-shape x type) matrix named in spec §4.7/§9. A source shape the
// target type does not accept, or a string that does not parse, is an error.
// A float64 coerced to int/long is truncated toward zero (3.7 becomes 3).
func coerce(v interface{}, dt DataType) (interface{}, error) {
	switch dt {
	case DataTypeString:
		switch t := v.(type) {
		case string:
			return t, nil
		default:
			return fmt.Sprintf("%v", t), nil
		}
	case DataTypeInt, DataTypeLong:
		switch t := v.(type) {
		case int:
			return t, nil
		case int64:
			return t, nil
		case float64:
			return int64(t), nil
		case string:
			n, err := strconv.ParseInt(t, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("not an integer: %q", t)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to %s", v, dt)
		}
	case DataTypeDouble:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case string:
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("not a double: %q", t)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to double", v)
		}
	case DataTypeBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(t)
			if err != nil {
				return nil, fmt.Errorf("not a bool: %q", t)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to bool", v)
		}
	case DataTypeArray:
		if arr, ok := v.([]interface{}); ok {
			return arr, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to array", v)
	case DataTypeObject:
		if obj, ok := v.(map[string]interface{}); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to object", v)
	default:
		return v, nil
	}
}
