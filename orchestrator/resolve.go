package orchestrator

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/agenthive/hive/core"
)

// resolveInputs substitutes dependency references in a subtask's input map
// with values taken from completed subtask results. It accepts both the
// typed DependencyRef form and the "{{id.result.path}}" string token form,
// and descends into nested maps and slices. References that cannot be
// resolved, because the subtask is unknown, failed, or the field path does
// not exist in its payload, are left as their literal token.
func resolveInputs(input map[string]any, completed map[string]core.ExecutionResult) map[string]any {
	if len(input) == 0 {
		return input
	}
	resolved := make(map[string]any, len(input))
	for k, v := range input {
		resolved[k] = resolveValue(v, completed)
	}
	return resolved
}

func resolveValue(v any, completed map[string]core.ExecutionResult) any {
	switch val := v.(type) {
	case core.DependencyRef:
		if resolved, ok := lookupRef(val, completed); ok {
			return resolved
		}
		return val.Token()
	case string:
		ref, ok := core.ParseRefToken(val)
		if !ok {
			return val
		}
		if resolved, ok := lookupRef(ref, completed); ok {
			return resolved
		}
		return val
	case map[string]any:
		return resolveInputs(val, completed)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = resolveValue(elem, completed)
		}
		return out
	default:
		return v
	}
}

// lookupRef fetches the referenced value from a successful prior result.
// Field paths use gjson syntax over the JSON form of the payload, so
// nested access like "stats.rows" and array indexing work uniformly.
func lookupRef(ref core.DependencyRef, completed map[string]core.ExecutionResult) (any, bool) {
	res, ok := completed[ref.SubtaskID]
	if !ok || !res.Success {
		return nil, false
	}

	if ref.FieldPath == "" {
		return res.Result, true
	}

	data, err := json.Marshal(res.Result)
	if err != nil {
		return nil, false
	}
	field := gjson.GetBytes(data, ref.FieldPath)
	if !field.Exists() {
		return nil, false
	}
	return field.Value(), true
}
