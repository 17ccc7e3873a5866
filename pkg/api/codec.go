package api

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ParseGraphJSON decodes a WorkflowGraph from its JSON definition, the wire
// shape the hosting service stores workflows in.
func ParseGraphJSON(data []byte) (WorkflowGraph, error) {
	var g WorkflowGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return WorkflowGraph{}, fmt.Errorf("decode workflow graph: %w", err)
	}
	return g, nil
}

// ParseGraphYAML decodes a WorkflowGraph from a YAML definition.
//
// YAML mappings decode to map[string]any through an intermediate JSON pass
// so node configs have the same dynamic shape regardless of source format.
func ParseGraphYAML(data []byte) (WorkflowGraph, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return WorkflowGraph{}, fmt.Errorf("decode workflow graph: %w", err)
	}
	jsonBytes, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return WorkflowGraph{}, fmt.Errorf("decode workflow graph: %w", err)
	}
	return ParseGraphJSON(jsonBytes)
}

// MarshalReport encodes an ExecutionReport as JSON.
func MarshalReport(rep *ExecutionReport) ([]byte, error) {
	return json.Marshal(rep)
}

// normalizeYAML converts map[any]any trees (yaml.v3 produces them for
// non-string keys) into map[string]any so the JSON round trip succeeds.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
