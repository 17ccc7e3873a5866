package api

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

const graphJSON = `{
  "name": "lead-scoring",
  "nodes": [
    {"id": "start", "type": "trigger", "config": {}},
    {"id": "check", "type": "condition", "config": {
      "left": "{{input.score}}", "operator": ">", "right": 50
    }}
  ],
  "edges": [
    {"source": "start", "target": "check"}
  ],
  "default_input": {"score": 10}
}`

const graphYAML = `
name: lead-scoring
nodes:
  - id: start
    type: trigger
    config: {}
  - id: check
    type: condition
    config:
      left: "{{input.score}}"
      operator: ">"
      right: 50
edges:
  - source: start
    target: check
default_input:
  score: 10
`

func TestParseGraphJSON(t *testing.T) {
	g, err := ParseGraphJSON([]byte(graphJSON))
	if err != nil {
		t.Fatalf("ParseGraphJSON failed: %v", err)
	}

	if g.Name != "lead-scoring" || len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("unexpected graph %+v", g)
	}
	if g.Nodes[1].Type != NodeCondition {
		t.Fatalf("unexpected node type %q", g.Nodes[1].Type)
	}
	if g.DefaultInput["score"] != float64(10) {
		t.Fatalf("unexpected default input %v", g.DefaultInput)
	}
}

func TestParseGraphJSONRejectsMalformedInput(t *testing.T) {
	if _, err := ParseGraphJSON([]byte(`{"name": `)); err == nil {
		t.Fatalf("expected error for truncated JSON")
	}
}

func TestParseGraphYAMLMatchesJSON(t *testing.T) {
	fromJSON, err := ParseGraphJSON([]byte(graphJSON))
	if err != nil {
		t.Fatalf("ParseGraphJSON failed: %v", err)
	}
	fromYAML, err := ParseGraphYAML([]byte(graphYAML))
	if err != nil {
		t.Fatalf("ParseGraphYAML failed: %v", err)
	}

	if !reflect.DeepEqual(fromJSON, fromYAML) {
		t.Fatalf("YAML and JSON decode diverge:\n%+v\n%+v", fromJSON, fromYAML)
	}
}

func TestParseGraphYAMLRejectsMalformedInput(t *testing.T) {
	if _, err := ParseGraphYAML([]byte("nodes: [\n")); err == nil {
		t.Fatalf("expected error for truncated YAML")
	}
}

func TestNormalizeYAMLConvertsNonStringKeys(t *testing.T) {
	in := map[any]any{
		1: []any{map[any]any{"nested": true}},
	}
	out, ok := normalizeYAML(in).(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any, got %T", normalizeYAML(in))
	}
	list, ok := out["1"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("unexpected normalized value %v", out)
	}
	if _, ok := list[0].(map[string]any); !ok {
		t.Fatalf("nested map not normalized: %T", list[0])
	}
}

func TestMarshalReport(t *testing.T) {
	done := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rep := &ExecutionReport{
		ID:        "ex-1",
		GraphName: "lead-scoring",
		Status:    StatusCompleted,
		Results: []NodeResult{
			{NodeID: "start", NodeType: NodeTrigger, Status: NodeStatusSuccess},
		},
		FinalState:  map[string]map[string]any{"start": {}},
		StartedAt:   done.Add(-time.Second),
		CompletedAt: &done,
	}

	data, err := MarshalReport(rep)
	if err != nil {
		t.Fatalf("MarshalReport failed: %v", err)
	}

	s := string(data)
	for _, want := range []string{`"id":"ex-1"`, `"status":"completed"`, `"node_id":"start"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("marshaled report missing %s:\n%s", want, s)
		}
	}
	// Empty optional sections stay out of the wire shape.
	if strings.Contains(s, `"errors"`) || strings.Contains(s, `"skipped"`) {
		t.Fatalf("unexpected empty optional fields in %s", s)
	}
}
