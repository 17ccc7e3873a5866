package api

import (
	"context"
	"fmt"
	"sort"
)

// NodeExecutor executes one node type. Config is the node's raw config;
// executors resolve variable references themselves (through the resolver
// bound at construction) so that binding stays uniform across types.
//
// Implementations return (output, nil) on success or (nil, err) on failure;
// the registry guarantees no error or panic crosses the dispatch boundary.
type NodeExecutor interface {
	Execute(ctx context.Context, config map[string]any, state *ExecutionState) (map[string]any, error)
}

// ExecutorFunc adapts a function to the NodeExecutor interface.
type ExecutorFunc func(ctx context.Context, config map[string]any, state *ExecutionState) (map[string]any, error)

func (f ExecutorFunc) Execute(ctx context.Context, config map[string]any, state *ExecutionState) (map[string]any, error) {
	return f(ctx, config, state)
}

// Registry maps node types to executors. New node types register here
// without touching the scheduler. The registry is populated before a run
// starts and read-only afterward, so it needs no locking.
type Registry struct {
	executors map[NodeType]NodeExecutor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[NodeType]NodeExecutor)}
}

// Register binds an executor to a node type, replacing any previous
// binding.
func (r *Registry) Register(t NodeType, ex NodeExecutor) {
	r.executors[t] = ex
}

// Types returns the registered node types in sorted order.
func (r *Registry) Types() []NodeType {
	types := make([]NodeType, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Supports reports whether a node type has a registered executor.
func (r *Registry) Supports(t NodeType) bool {
	_, ok := r.executors[t]
	return ok
}

// Dispatch runs the executor for the node's type. It never lets an error or
// panic escape: both are converted into the returned error, which the
// scheduler records as a NodeResult with status error.
func (r *Registry) Dispatch(ctx context.Context, node Node, state *ExecutionState) (output map[string]any, err error) {
	ex, ok := r.executors[node.Type]
	if !ok {
		return nil, NewConfigError("unknown node type: %s", node.Type)
	}

	defer func() {
		if rec := recover(); rec != nil {
			output = nil
			err = fmt.Errorf("executor panic in node %s: %v", node.ID, rec)
		}
	}()

	return ex.Execute(withCurrentNode(ctx, node), node.Config, state)
}
