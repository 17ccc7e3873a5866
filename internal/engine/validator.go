package engine

import (
	"fmt"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// ValidateGraph performs structural and semantic validation of a workflow
// graph. All checks are collected rather than short-circuited, except the
// empty-graph case; a graph that fails validation must never be scheduled.
func ValidateGraph(g api.WorkflowGraph) []string {
	var errs []string

	if len(g.Nodes) == 0 {
		return []string{"workflow must contain at least one node"}
	}

	validTypes := make(map[api.NodeType]struct{})
	for _, t := range api.BuiltinNodeTypes() {
		validTypes[t] = struct{}{}
	}

	nodeIDs := make(map[string]struct{}, len(g.Nodes))
	nodeTypes := make(map[string]api.NodeType, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			errs = append(errs, "all nodes must have an id")
			continue
		}
		if _, dup := nodeIDs[n.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate node id: %s", n.ID))
			continue
		}
		nodeIDs[n.ID] = struct{}{}
		nodeTypes[n.ID] = n.Type

		if _, ok := validTypes[n.Type]; !ok {
			errs = append(errs, fmt.Sprintf("invalid node type: %s", n.Type))
		}
		if n.Config == nil {
			errs = append(errs, fmt.Sprintf("node %s is missing configuration", n.ID))
		}
	}

	for _, e := range g.Edges {
		if e.Source == "" || e.Target == "" {
			errs = append(errs, "all edges must have source and target")
			continue
		}
		if _, ok := nodeIDs[e.Source]; !ok {
			errs = append(errs, fmt.Sprintf("edge references non-existent node: %s", e.Source))
		}
		if _, ok := nodeIDs[e.Target]; !ok {
			errs = append(errs, fmt.Sprintf("edge references non-existent node: %s", e.Target))
		}
		switch e.Branch {
		case api.BranchNone:
		case api.BranchTrue, api.BranchFalse:
			if t, ok := nodeTypes[e.Source]; ok && t != api.NodeCondition {
				errs = append(errs, fmt.Sprintf("branch edge from non-condition node: %s", e.Source))
			}
		default:
			errs = append(errs, fmt.Sprintf("invalid branch label: %s", e.Branch))
		}
	}

	// Both branch and unconditional edges count for cycle purposes.
	if hasCycle(g) {
		errs = append(errs, "workflow contains a cycle")
	}

	return errs
}

type dfsColor uint8

const (
	colorWhite dfsColor = iota
	colorGray
	colorBlack
)

// hasCycle runs an iterative three-color depth-first search. An explicit
// stack avoids recursion-depth limits on large graphs.
func hasCycle(g api.WorkflowGraph) bool {
	adjacency := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		adjacency[n.ID] = nil
	}
	for _, e := range g.Edges {
		if _, ok := adjacency[e.Source]; ok {
			adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		}
	}

	colors := make(map[string]dfsColor, len(g.Nodes))

	type frame struct {
		id   string
		next int
	}

	for _, n := range g.Nodes {
		if colors[n.ID] != colorWhite {
			continue
		}

		stack := []frame{{id: n.ID}}
		colors[n.ID] = colorGray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adjacency[top.id]

			if top.next < len(neighbors) {
				next := neighbors[top.next]
				top.next++

				switch colors[next] {
				case colorGray:
					// Back-edge: cycle found.
					return true
				case colorWhite:
					colors[next] = colorGray
					stack = append(stack, frame{id: next})
				}
				continue
			}

			colors[top.id] = colorBlack
			stack = stack[:len(stack)-1]
		}
	}

	return false
}
