package executor

import (
	"fmt"
	"math"

	"github.com/yesoreyeram/thaiyyal/backend/pkg/types"
)

// DiagnosisExecutor executes Diagnosis nodes: each diagnosisType is a fixed,
// documented algorithm over a collection, per §4.3.
type DiagnosisExecutor struct{}

func (e *DiagnosisExecutor) Kind() types.NodeKind { return types.NodeKindDiagnosis }

func (e *DiagnosisExecutor) Validate(node types.Node) types.ValidationResult {
	var result types.ValidationResult
	diagnosisType, _ := node.Config["diagnosisType"].(string)
	switch diagnosisType {
	case "error_detection", "pattern_analysis", "anomaly_detection", "performance_analysis":
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("config.diagnosisType: unsupported value %q", diagnosisType))
	}
	return result
}

func (e *DiagnosisExecutor) Execute(ctx ExecutionContext, node types.Node, input interface{}) (interface{}, error) {
	diagnosisType, _ := node.Config["diagnosisType"].(string)

	raw := input
	if inputKey, ok := node.Config["inputKey"].(string); ok && inputKey != "" {
		if v, found := ctx.Get(inputKey); found {
			raw = v
		}
	}
	if raw == nil {
		return nil, NewNodeError(CodeValidationFailed, "no input", ErrNoInput)
	}

	records, ok := asRecords(raw)
	if !ok {
		return nil, NewNodeError(CodeValidationFailed, fmt.Sprintf("input is not a collection (got %T)", raw), ErrNotACollection)
	}

	var result map[string]interface{}
	switch diagnosisType {
	case "error_detection":
		result = diagnoseErrors(records)
	case "pattern_analysis":
		result = diagnosePatterns(records, node.Config)
	case "anomaly_detection":
		result = diagnoseAnomalies(records, node.Config)
	case "performance_analysis":
		result = diagnosePerformance(records, node.Config)
	default:
		return nil, NewNodeError(CodeValidationFailed, fmt.Sprintf("unknown diagnosis type %q", diagnosisType), ErrUnknownDiagnosis)
	}

	if outputKey, ok := node.Config["outputKey"].(string); ok && outputKey != "" {
		ctx.Set(outputKey, result)
	}

	return result, nil
}

// asRecords normalizes an input collection to a slice of maps. A bare slice
// of non-map values is wrapped as {"value": v} so record-shaped diagnoses
// still apply uniformly.
func asRecords(raw interface{}) ([]map[string]interface{}, bool) {
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]map[string]interface{}, 0, len(arr))
	for _, item := range arr {
		if rec, ok := item.(map[string]interface{}); ok {
			out = append(out, rec)
			continue
		}
		out = append(out, map[string]interface{}{"value": item})
	}
	return out, true
}

func stringField(rec map[string]interface{}, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func numberField(rec map[string]interface{}, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// diagnoseErrors counts records with level in {ERROR, FATAL} and groups them
// by module.
func diagnoseErrors(records []map[string]interface{}) map[string]interface{} {
	byModule := map[string]int{}
	var items []map[string]interface{}
	for _, rec := range records {
		level := stringField(rec, "level")
		if level != "ERROR" && level != "FATAL" {
			continue
		}
		module := stringField(rec, "module")
		byModule[module]++
		items = append(items, rec)
	}
	return map[string]interface{}{
		"issueCount": len(items),
		"items":      items,
		"byModule":   byModule,
		"summary":    fmt.Sprintf("%d error-level records across %d modules", len(items), len(byModule)),
	}
}

// diagnosePatterns groups records by a configurable `groupBy` field (default
// "module") and reports the frequency of each group.
func diagnosePatterns(records []map[string]interface{}, config map[string]interface{}) map[string]interface{} {
	groupBy, _ := config["groupBy"].(string)
	if groupBy == "" {
		groupBy = "module"
	}
	counts := map[string]int{}
	for _, rec := range records {
		counts[stringField(rec, groupBy)]++
	}
	return map[string]interface{}{
		"issueCount": len(records),
		"groupBy":    groupBy,
		"groups":     counts,
		"summary":    fmt.Sprintf("%d records across %d distinct %s values", len(records), len(counts), groupBy),
	}
}

// diagnoseAnomalies flags records whose numeric `value` field deviates from
// the mean by more than `deviationFactor` (default 2) standard deviations.
func diagnoseAnomalies(records []map[string]interface{}, config map[string]interface{}) map[string]interface{} {
	factor := 2.0
	if f, ok := numberField(config, "deviationFactor"); ok {
		factor = f
	}

	values := make([]float64, 0, len(records))
	for _, rec := range records {
		if v, ok := numberField(rec, "value"); ok {
			values = append(values, v)
		}
	}

	mean, stddev := meanAndStddev(values)

	var anomalies []map[string]interface{}
	for _, rec := range records {
		v, ok := numberField(rec, "value")
		if !ok {
			continue
		}
		if stddev > 0 && math.Abs(v-mean) > factor*stddev {
			anomalies = append(anomalies, rec)
		}
	}

	return map[string]interface{}{
		"issueCount": len(anomalies),
		"items":      anomalies,
		"mean":       mean,
		"stddev":     stddev,
		"summary":    fmt.Sprintf("%d anomalies out of %d records (mean=%.2f, stddev=%.2f)", len(anomalies), len(records), mean, stddev),
	}
}

// diagnosePerformance partitions records by value > slowThreshold.
func diagnosePerformance(records []map[string]interface{}, config map[string]interface{}) map[string]interface{} {
	threshold := 1000.0
	if t, ok := numberField(config, "slowThreshold"); ok {
		threshold = t
	}

	var slow, fast []map[string]interface{}
	for _, rec := range records {
		v, ok := numberField(rec, "value")
		if !ok {
			fast = append(fast, rec)
			continue
		}
		if v > threshold {
			slow = append(slow, rec)
		} else {
			fast = append(fast, rec)
		}
	}

	return map[string]interface{}{
		"issueCount":    len(slow),
		"items":         slow,
		"slowThreshold": threshold,
		"summary":       fmt.Sprintf("%d of %d records exceeded %.0fms", len(slow), len(records), threshold),
	}
}

func meanAndStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return mean, math.Sqrt(variance)
}
