package api

// NodeType identifies the kind of work a node performs. The engine ships
// executors for all built-in types; hosts can register additional types on
// the Registry.
type NodeType string

const (
	NodeTrigger     NodeType = "trigger"
	NodeAIAgent     NodeType = "ai_agent"
	NodeHTTPRequest NodeType = "http_request"
	NodeCondition   NodeType = "condition"
	NodeTransform   NodeType = "transform"
	NodeEmail       NodeType = "email"
	NodeDatabase    NodeType = "database"
	NodeDelay       NodeType = "delay"
)

// BuiltinNodeTypes lists the node types the engine validates and executes
// out of the box, in a stable order.
func BuiltinNodeTypes() []NodeType {
	return []NodeType{
		NodeTrigger,
		NodeAIAgent,
		NodeHTTPRequest,
		NodeCondition,
		NodeTransform,
		NodeEmail,
		NodeDatabase,
		NodeDelay,
	}
}

// Branch labels an edge leaving a condition node. An unlabeled edge is
// unconditional.
type Branch string

const (
	BranchNone  Branch = ""
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// Node is a typed unit of work in a workflow. Nodes are immutable during a
// run.
type Node struct {
	ID     string         `json:"id" yaml:"id"`
	Type   NodeType       `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

// Edge is a directed dependency between two nodes. Branch is set only on
// edges leaving a condition node and selects which outcome activates the
// edge.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Branch Branch `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// WorkflowGraph is a declarative node/edge graph. Node order is meaningful:
// it breaks ties when several nodes become ready at the same time, so
// execution order is reproducible.
type WorkflowGraph struct {
	Name  string `json:"name" yaml:"name"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`

	// DefaultInput is folded under the per-run input; keys supplied to Run
	// win over defaults.
	DefaultInput map[string]any `json:"default_input,omitempty" yaml:"default_input,omitempty"`
}

// NodeByID returns the node with the given id, or false if absent.
func (g WorkflowGraph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Incoming returns the edges terminating at the given node id, in
// declaration order.
func (g WorkflowGraph) Incoming(id string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			edges = append(edges, e)
		}
	}
	return edges
}

// Outgoing returns the edges leaving the given node id, in declaration
// order.
func (g WorkflowGraph) Outgoing(id string) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			edges = append(edges, e)
		}
	}
	return edges
}
