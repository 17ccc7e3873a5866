package api

import "context"

// Engine is the high-level execution API. One Engine serves many concurrent
// runs; each run owns its own ExecutionState and shares nothing with other
// runs.
type Engine interface {
	// RegisterGraph validates a graph and stores it by name. An invalid
	// graph is rejected with a ValidationError and never stored.
	RegisterGraph(g WorkflowGraph) error

	// Run executes a registered graph to completion (synchronously) and
	// returns its report. The report is returned even when the run fails;
	// the error is non-nil only for engine-level problems (unknown graph,
	// store failure), never for node failures.
	Run(ctx context.Context, name string, input map[string]any) (*ExecutionReport, error)

	// RunGraph validates and executes an ad-hoc graph without registering
	// it.
	RunGraph(ctx context.Context, g WorkflowGraph, input map[string]any) (*ExecutionReport, error)

	// GetExecution looks up a finished or in-flight execution by id.
	GetExecution(ctx context.Context, id string) (*ExecutionReport, error)

	// ListExecutions returns executions matching the given options.
	ListExecutions(ctx context.Context, opts ExecutionListOptions) ([]*ExecutionReport, error)

	// ListLogs returns the structured log events recorded for an execution
	// in chronological order.
	ListLogs(ctx context.Context, executionID string) ([]LogEvent, error)
}

// AsyncStarter is implemented by engines that support queue-first
// asynchronous starts, mirroring how the hosting service runs workflows as
// background tasks.
type AsyncStarter interface {
	Engine

	// Start creates a pending execution and schedules it for a worker.
	// The returned report carries the execution id and StatusPending.
	Start(ctx context.Context, name string, input map[string]any) (*ExecutionReport, error)
}

// RunnerDirect is implemented by engines to let workers execute a
// previously created pending execution without re-enqueueing it.
type RunnerDirect interface {
	// RunExecution runs an execution that was created earlier by Start.
	RunExecution(ctx context.Context, executionID string) (*ExecutionReport, error)
}

// AsyncEngine is the full surface of engines that support background
// execution: queue-first starts plus direct runs for workers.
type AsyncEngine interface {
	AsyncStarter
	RunnerDirect
}
