package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// nodeState tracks one node through the run.
type nodeState uint8

const (
	statePending nodeState = iota
	stateSuccess
	stateFailed
	stateSkipped
)

// edgeStatus classifies an incoming edge against the current node states.
type edgeStatus uint8

const (
	// edgeUndetermined: the source has not finished, so the edge cannot be
	// classified yet.
	edgeUndetermined edgeStatus = iota
	// edgeSatisfied: the edge is activated and its source succeeded.
	edgeSatisfied
	// edgeDead: the edge can never activate (branch mismatch or skipped
	// source).
	edgeDead
)

// scheduler orchestrates one run: it computes traversal order honoring
// branch semantics, dispatches nodes to executors, updates the execution
// state, and decides when to halt.
//
// Nodes execute strictly sequentially; independent branches are not
// parallelized. Ties between simultaneously ready nodes break by node
// declaration order, never by map iteration, so runs are reproducible.
type scheduler struct {
	graph       api.WorkflowGraph
	state       *api.ExecutionState
	registry    *api.Registry
	observer    api.Observer
	executionID string

	nodeStates map[string]nodeState
	warnMark   int
}

func newScheduler(g api.WorkflowGraph, st *api.ExecutionState, reg *api.Registry, obs api.Observer, executionID string) *scheduler {
	states := make(map[string]nodeState, len(g.Nodes))
	for _, n := range g.Nodes {
		states[n.ID] = statePending
	}
	return &scheduler{
		graph:       g,
		state:       st,
		registry:    reg,
		observer:    obs,
		executionID: executionID,
		nodeStates:  states,
	}
}

// run executes the graph until no node is ready or a fatal error halts it.
// It returns the terminal status. Cancellation is observed between node
// dispatches; results recorded before the halt stay intact.
func (s *scheduler) run(ctx context.Context) api.Status {
	for {
		select {
		case <-ctx.Done():
			s.state.Errors = append(s.state.Errors, api.NodeError{
				NodeID:  api.RunErrorNodeID,
				Message: ctx.Err().Error(),
			})
			return api.StatusFailed
		default:
		}

		s.propagateSkips(ctx)

		node, ok := s.nextReady()
		if !ok {
			return api.StatusCompleted
		}

		if failed := s.execute(ctx, node); failed {
			return api.StatusFailed
		}
	}
}

// nextReady returns the first ready node in declaration order. A node is
// ready when every incoming edge is classified and at least one is
// satisfied, or when it has no incoming edges at all.
func (s *scheduler) nextReady() (api.Node, bool) {
	for _, n := range s.graph.Nodes {
		if s.nodeStates[n.ID] != statePending {
			continue
		}

		incoming := s.graph.Incoming(n.ID)
		if len(incoming) == 0 {
			return n, true
		}

		satisfied := 0
		blocked := false
		for _, e := range incoming {
			switch s.classify(e) {
			case edgeSatisfied:
				satisfied++
			case edgeUndetermined:
				blocked = true
			}
		}
		if !blocked && satisfied > 0 {
			return n, true
		}
	}
	return api.Node{}, false
}

// propagateSkips marks every pending node whose incoming edges are all dead
// as skipped, repeating until a fixpoint so skips cascade through entire
// eliminated branches.
func (s *scheduler) propagateSkips(ctx context.Context) {
	for {
		changed := false
		for _, n := range s.graph.Nodes {
			if s.nodeStates[n.ID] != statePending {
				continue
			}
			incoming := s.graph.Incoming(n.ID)
			if len(incoming) == 0 {
				continue
			}

			allDead := true
			for _, e := range incoming {
				if s.classify(e) != edgeDead {
					allDead = false
					break
				}
			}
			if !allDead {
				continue
			}

			s.nodeStates[n.ID] = stateSkipped
			s.record(ctx, api.NodeResult{
				NodeID:   n.ID,
				NodeType: n.Type,
				Status:   api.NodeStatusSkipped,
			}, 0)
			changed = true
		}
		if !changed {
			return
		}
	}
}

// classify determines whether an edge is satisfied, dead, or still
// undetermined. A branch edge is activated only when its label matches the
// boolean its condition source recorded.
func (s *scheduler) classify(e api.Edge) edgeStatus {
	switch s.nodeStates[e.Source] {
	case stateSkipped:
		return edgeDead
	case statePending, stateFailed:
		return edgeUndetermined
	}

	// Source succeeded.
	if e.Branch == api.BranchNone {
		return edgeSatisfied
	}

	res, ok := s.state.Result(e.Source)
	if !ok {
		return edgeUndetermined
	}
	cond, ok := res.Output["condition"].(bool)
	if !ok {
		return edgeDead
	}
	if (cond && e.Branch == api.BranchTrue) || (!cond && e.Branch == api.BranchFalse) {
		return edgeSatisfied
	}
	return edgeDead
}

// execute dispatches one node and records its result. Returns true when
// the node failed, which halts the run.
func (s *scheduler) execute(ctx context.Context, node api.Node) bool {
	s.observer.OnNodeStart(ctx, s.executionID, node)

	start := time.Now()
	output, err := s.registry.Dispatch(ctx, node, s.state)
	elapsed := time.Since(start)

	res := api.NodeResult{
		NodeID:   node.ID,
		NodeType: node.Type,
		Status:   api.NodeStatusSuccess,
		Output:   output,
	}
	if err != nil {
		res.Status = api.NodeStatusError
		res.Output = nil
		res.Error = err.Error()
		s.nodeStates[node.ID] = stateFailed
	} else {
		s.nodeStates[node.ID] = stateSuccess
	}

	s.record(ctx, res, elapsed)
	return err != nil
}

// record stores a NodeResult and emits the matching log event plus any
// warnings accumulated during the dispatch.
func (s *scheduler) record(ctx context.Context, res api.NodeResult, elapsed time.Duration) {
	if err := s.state.SetResult(res); err != nil {
		// Write-once violation: a scheduler bug, not a user error.
		panic(err)
	}

	for _, w := range s.state.Warnings[s.warnMark:] {
		s.observer.OnWarning(ctx, api.LogEvent{
			ExecutionID: s.executionID,
			NodeID:      w.NodeID,
			NodeType:    res.NodeType,
			Level:       "warning",
			Message:     "unresolved variable path: " + w.Path,
			Data:        map[string]any{"path": w.Path, "reason": w.Reason},
			At:          time.Now(),
		})
	}
	s.warnMark = len(s.state.Warnings)

	level := "info"
	if res.Status == api.NodeStatusError {
		level = "error"
	}
	ev := api.LogEvent{
		ExecutionID: s.executionID,
		NodeID:      res.NodeID,
		NodeType:    res.NodeType,
		Level:       level,
		Message:     fmt.Sprintf("node %s %s", res.NodeID, res.Status),
		Data:        res.Output,
		At:          time.Now(),
	}
	s.observer.OnNodeCompleted(ctx, ev, res, elapsed)
}
