package api

import (
	"fmt"
	"time"
)

// Status represents the terminal outcome of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// NodeStatus is the outcome of a single node.
type NodeStatus string

const (
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
	NodeStatusSkipped NodeStatus = "skipped"
)

// NodeResult is the immutable outcome of one node's execution. It is
// created exactly once per reachable node and never mutated afterward.
type NodeResult struct {
	NodeID   string         `json:"node_id"`
	NodeType NodeType       `json:"node_type"`
	Status   NodeStatus     `json:"status"`
	Output   map[string]any `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NodeError records a node-level failure.
type NodeError struct {
	NodeID  string `json:"node_id"`
	Message string `json:"message"`
}

// RunErrorNodeID is the NodeID recorded on errors that belong to the run as
// a whole rather than to any single node, such as cancellation observed
// between node dispatches.
const RunErrorNodeID = "_run"

// Warning records a non-fatal variable-resolution failure. Unresolved paths
// deliberately bind to nil (optional fields rely on it); the warning keeps
// the miss visible for debugging.
type Warning struct {
	NodeID string `json:"node_id"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ExecutionState is the single-owner mutable record of one run. It is
// written only by the scheduler goroutine that owns the run; resolvers and
// evaluators read it synchronously on the same goroutine, so it carries no
// internal locking.
type ExecutionState struct {
	Input    map[string]any
	Errors   []NodeError
	Warnings []Warning

	results map[string]*NodeResult
	order   []string
	skipped map[string]struct{}
}

// NewExecutionState creates the state for one run seeded with the initial
// input.
func NewExecutionState(input map[string]any) *ExecutionState {
	if input == nil {
		input = map[string]any{}
	}
	return &ExecutionState{
		Input:   input,
		results: make(map[string]*NodeResult),
		skipped: make(map[string]struct{}),
	}
}

// SetResult records a node's result. Results are write-once per node id;
// a second write for the same id is a programming error.
func (s *ExecutionState) SetResult(res NodeResult) error {
	if _, ok := s.results[res.NodeID]; ok {
		return fmt.Errorf("result already recorded for node %q", res.NodeID)
	}
	r := res
	s.results[res.NodeID] = &r
	s.order = append(s.order, res.NodeID)
	if res.Status == NodeStatusSkipped {
		s.skipped[res.NodeID] = struct{}{}
	}
	if res.Status == NodeStatusError {
		s.Errors = append(s.Errors, NodeError{NodeID: res.NodeID, Message: res.Error})
	}
	return nil
}

// Result returns the recorded result for a node id, if any.
func (s *ExecutionState) Result(nodeID string) (*NodeResult, bool) {
	r, ok := s.results[nodeID]
	return r, ok
}

// Results returns all recorded results in completion order.
func (s *ExecutionState) Results() []NodeResult {
	out := make([]NodeResult, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.results[id])
	}
	return out
}

// Skipped reports whether a node was eliminated by branch selection.
func (s *ExecutionState) Skipped(nodeID string) bool {
	_, ok := s.skipped[nodeID]
	return ok
}

// SkippedNodes returns the ids of all branch-eliminated nodes in the order
// they were skipped.
func (s *ExecutionState) SkippedNodes() []string {
	var ids []string
	for _, id := range s.order {
		if _, ok := s.skipped[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// AddWarning records a resolution warning.
func (s *ExecutionState) AddWarning(w Warning) {
	s.Warnings = append(s.Warnings, w)
}

// FinalState returns node id -> output for every successful node, used as
// the report's final_state.
func (s *ExecutionState) FinalState() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for id, r := range s.results {
		if r.Status == NodeStatusSuccess {
			out[id] = r.Output
		}
	}
	return out
}

// ExecutionReport is the terminal artifact of one run.
//
// Results holds one entry per dispatched or branch-skipped node in
// completion order. Nodes that were still pending when a fail-fast halt
// occurred are absent from Results; Skipped lists only branch-eliminated
// nodes, never halt victims.
type ExecutionReport struct {
	ID         string                    `json:"id"`
	GraphName  string                    `json:"graph_name"`
	Status     Status                    `json:"status"`
	Input      map[string]any            `json:"input,omitempty"`
	Results    []NodeResult              `json:"results"`
	Errors     []NodeError               `json:"errors,omitempty"`
	Warnings   []Warning                 `json:"warnings,omitempty"`
	Skipped    []string                  `json:"skipped,omitempty"`
	FinalState map[string]map[string]any `json:"final_state"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ExecutionListOptions controls how executions are listed. Zero values mean
// "no filter" for that field.
type ExecutionListOptions struct {
	GraphName string
	Status    Status
}
