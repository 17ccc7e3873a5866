package taskflow

import (
	"fmt"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// GraphBuilder provides a fluent API for defining workflow graphs:
//
//	g := taskflow.New("lead-scoring").
//	    Node("start", taskflow.NodeTrigger, nil).
//	    Node("fetch", taskflow.NodeHTTPRequest, map[string]any{
//	        "url": "https://example.com/leads/{{start.lead_id}}",
//	    }).
//	    Node("check", taskflow.NodeCondition, map[string]any{
//	        "left": "{{fetch.status_code}}", "operator": "equals", "right": 200,
//	    }).
//	    Edge("start", "fetch").
//	    Edge("fetch", "check").
//	    Build()
//
//	if err := engine.RegisterGraph(g); err != nil {
//	    log.Fatal(err)
//	}
type GraphBuilder struct {
	graph api.WorkflowGraph
}

// New creates a new graph builder with the given name.
func New(name string) *GraphBuilder {
	return &GraphBuilder{
		graph: api.WorkflowGraph{Name: name},
	}
}

// Name returns the graph name.
func (b *GraphBuilder) Name() string {
	return b.graph.Name
}

// Node appends a node to the graph. A nil config becomes an empty map so
// the node passes validation.
func (b *GraphBuilder) Node(id string, typ NodeType, config map[string]any) *GraphBuilder {
	if id == "" {
		panic("taskflow: node id must not be empty")
	}
	if config == nil {
		config = map[string]any{}
	}
	b.graph.Nodes = append(b.graph.Nodes, api.Node{
		ID:     id,
		Type:   typ,
		Config: config,
	})
	return b
}

// Edge connects two nodes unconditionally.
func (b *GraphBuilder) Edge(source, target string) *GraphBuilder {
	b.graph.Edges = append(b.graph.Edges, api.Edge{Source: source, Target: target})
	return b
}

// BranchEdge connects a condition node to a target taken only when the
// condition evaluated to the given branch ("true" or "false").
func (b *GraphBuilder) BranchEdge(source, target string, branch Branch) *GraphBuilder {
	b.graph.Edges = append(b.graph.Edges, api.Edge{
		Source: source,
		Target: target,
		Branch: branch,
	})
	return b
}

// DefaultInput sets graph-level default input, folded under per-run input
// at execution time.
func (b *GraphBuilder) DefaultInput(input map[string]any) *GraphBuilder {
	b.graph.DefaultInput = input
	return b
}

// Build returns the assembled graph. The builder stays usable; further
// calls keep extending the same graph.
func (b *GraphBuilder) Build() WorkflowGraph {
	return b.graph
}

// Register registers the built graph with the given engine.
func (b *GraphBuilder) Register(eng Engine) error {
	return eng.RegisterGraph(b.graph)
}

// MustRegister is like Register but panics on error.
// Useful for initialization in main().
func (b *GraphBuilder) MustRegister(eng Engine) {
	if err := b.Register(eng); err != nil {
		panic(fmt.Sprintf("taskflow: register graph %q: %v", b.graph.Name, err))
	}
}
