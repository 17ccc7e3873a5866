package engine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// Canonical operator names. The original service accepted both symbol and
// word spellings depending on the node schema version, so both map here.
var operatorAliases = map[string]string{
	"equals":           "equals",
	"==":               "equals",
	"not_equals":       "not_equals",
	"!=":               "not_equals",
	"greater_than":     "greater_than",
	">":                "greater_than",
	"greater_or_equal": "greater_or_equal",
	">=":               "greater_or_equal",
	"less_than":        "less_than",
	"<":                "less_than",
	"less_or_equal":    "less_or_equal",
	"<=":               "less_or_equal",
	"contains":         "contains",
	"not_contains":     "not_contains",
	"starts_with":      "starts_with",
	"ends_with":        "ends_with",
}

// evaluateCondition resolves both operands and applies the configured
// operator. The boolean result feeds branch selection as well as the
// condition node's own output.
func evaluateCondition(cfg map[string]any, r *resolver) (result bool, left, right any, err error) {
	left = r.ResolveValue(cfg["left"])
	right = r.ResolveValue(cfg["right"])

	opRaw, _ := cfg["operator"].(string)
	op, ok := operatorAliases[opRaw]
	if !ok {
		return false, left, right, api.NewConfigError("unknown operator: %s", opRaw)
	}

	switch op {
	case "equals":
		return valueEqual(left, right), left, right, nil
	case "not_equals":
		return !valueEqual(left, right), left, right, nil
	case "greater_than", "greater_or_equal", "less_than", "less_or_equal":
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return false, left, right, api.NewConfigError(
				"operator %s requires numeric operands, got %T and %T", opRaw, left, right)
		}
		switch op {
		case "greater_than":
			result = lf > rf
		case "greater_or_equal":
			result = lf >= rf
		case "less_than":
			result = lf < rf
		case "less_or_equal":
			result = lf <= rf
		}
		return result, left, right, nil
	case "contains":
		return strings.Contains(stringify(left), stringify(right)), left, right, nil
	case "not_contains":
		return !strings.Contains(stringify(left), stringify(right)), left, right, nil
	case "starts_with":
		return strings.HasPrefix(stringify(left), stringify(right)), left, right, nil
	case "ends_with":
		return strings.HasSuffix(stringify(left), stringify(right)), left, right, nil
	}

	return false, left, right, api.NewConfigError("unknown operator: %s", opRaw)
}

// valueEqual is structural, type-aware equality: 1 != "1". Mixed numeric
// kinds compare by value because JSON decoding yields float64 while Go
// callers hand in ints.
func valueEqual(a, b any) bool {
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		return af == bf
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// numericValue converts Go numeric kinds (and json.Number) to float64.
// Strings are deliberately excluded: equality never coerces them.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toFloat is the coercion used by ordering operators: numeric kinds plus
// strings that parse as numbers.
func toFloat(v any) (float64, bool) {
	if f, ok := numericValue(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
