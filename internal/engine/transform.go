package engine

import (
	"github.com/taskflowhq/taskflow/pkg/api"
)

// applyTransforms runs ordered map/filter/aggregate steps over a resolved
// value. Steps compose strictly left to right; each consumes the previous
// step's output.
func applyTransforms(input any, steps []any) (any, error) {
	data := input

	for _, raw := range steps {
		step, ok := raw.(map[string]any)
		if !ok {
			return nil, api.NewConfigError("transform step must be a mapping, got %T", raw)
		}

		stepType, _ := step["type"].(string)
		switch stepType {
		case "map":
			data = applyMap(data, stringify(step["field"]))
		case "filter":
			data = applyFilter(data, stringify(step["field"]), step["value"])
		case "aggregate":
			out, err := applyAggregate(data, stringify(step["operation"]))
			if err != nil {
				return nil, err
			}
			data = out
		default:
			return nil, api.NewConfigError("unknown transform step: %s", stepType)
		}
	}

	return data, nil
}

// applyMap replaces each mapping-typed element of a sequence with its
// field value; non-mapping elements and non-sequence input pass through
// unchanged.
func applyMap(data any, field string) any {
	seq, ok := data.([]any)
	if !ok {
		return data
	}
	out := make([]any, len(seq))
	for i, item := range seq {
		if m, ok := item.(map[string]any); ok {
			out[i] = m[field]
		} else {
			out[i] = item
		}
	}
	return out
}

// applyFilter retains only mapping-typed elements whose field equals the
// configured value; non-sequence input passes through unchanged.
func applyFilter(data any, field string, value any) any {
	seq, ok := data.([]any)
	if !ok {
		return data
	}
	out := make([]any, 0, len(seq))
	for _, item := range seq {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if valueEqual(m[field], value) {
			out = append(out, item)
		}
	}
	return out
}

func applyAggregate(data any, operation string) (any, error) {
	switch operation {
	case "count":
		if seq, ok := data.([]any); ok {
			return len(seq), nil
		}
		return 1, nil
	case "sum":
		if seq, ok := data.([]any); ok {
			var total float64
			for _, item := range seq {
				f, ok := numericValue(item)
				if !ok {
					return nil, api.NewConfigError("sum requires numeric elements, got %T", item)
				}
				total += f
			}
			return total, nil
		}
		if f, ok := numericValue(data); ok {
			return f, nil
		}
		return nil, api.NewConfigError("sum requires a numeric value or sequence, got %T", data)
	default:
		return nil, api.NewConfigError("unknown aggregate operation: %s", operation)
	}
}
