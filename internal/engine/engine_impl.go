package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow/internal/persistence"
	"github.com/taskflowhq/taskflow/internal/taskqueue"
	"github.com/taskflowhq/taskflow/pkg/api"
)

// engineImpl is a synchronous, in-process engine implementation. One engine
// serves many concurrent runs; each run owns its ExecutionState and shares
// nothing with other runs, so no cross-run locking exists.
type engineImpl struct {
	mu     sync.RWMutex // guards graphs
	graphs map[string]api.WorkflowGraph

	executions persistence.ExecutionStore
	logs       persistence.LogStore
	queue      taskqueue.Queue

	registry *api.Registry
	observer api.Observer
}

// Config describes how to construct an engine. Zero-value fields fall back
// to sensible defaults: in-memory stores, a noop observer, and a registry
// built from the collaborators.
type Config struct {
	Collaborators api.Collaborators
	Observer      api.Observer
	Executions    persistence.ExecutionStore
	Logs          persistence.LogStore
	Queue         taskqueue.Queue

	// Registry overrides the default executor registry. Most hosts leave
	// this nil and register extra node types on the default instead.
	Registry *api.Registry
}

// NewEngineWithConfig creates a new Engine using the given configuration.
func NewEngineWithConfig(cfg Config) api.AsyncEngine {
	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver{}
	}

	executions := cfg.Executions
	logs := cfg.Logs
	if executions == nil || logs == nil {
		mem := persistence.NewInMemoryStore()
		if executions == nil {
			executions = mem
		}
		if logs == nil {
			logs = mem
		}
	}

	// Node events always reach the log store, alongside whatever observer
	// the host configured.
	obs = api.NewCompositeObserver(persistence.NewLogRecorder(logs), obs)

	registry := cfg.Registry
	if registry == nil {
		registry = NewDefaultRegistry(cfg.Collaborators)
	}

	return &engineImpl{
		graphs:     make(map[string]api.WorkflowGraph),
		executions: executions,
		logs:       logs,
		queue:      cfg.Queue,
		registry:   registry,
		observer:   obs,
	}
}

// NewInMemoryEngine returns an Engine backed entirely by in-memory stores.
func NewInMemoryEngine(collab api.Collaborators) api.AsyncEngine {
	return NewEngineWithConfig(Config{Collaborators: collab})
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given
// Observer.
func NewInMemoryEngineWithObserver(collab api.Collaborators, obs api.Observer) api.AsyncEngine {
	return NewEngineWithConfig(Config{Collaborators: collab, Observer: obs})
}

func (e *engineImpl) RegisterGraph(g api.WorkflowGraph) error {
	if g.Name == "" {
		return fmt.Errorf("graph name is required")
	}
	if errs := ValidateGraph(g); len(errs) > 0 {
		return api.NewValidationError(errs)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.graphs[g.Name]; ok {
		return fmt.Errorf("graph already registered: %s", g.Name)
	}
	e.graphs[g.Name] = g
	return nil
}

func (e *engineImpl) graphByName(name string) (api.WorkflowGraph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	g, ok := e.graphs[name]
	if !ok {
		return api.WorkflowGraph{}, fmt.Errorf("%w: %s", api.ErrGraphNotFound, name)
	}
	return g, nil
}

func (e *engineImpl) Run(ctx context.Context, name string, input map[string]any) (*api.ExecutionReport, error) {
	g, err := e.graphByName(name)
	if err != nil {
		return nil, err
	}
	// Registered graphs were validated at registration time.
	return e.runValidated(ctx, g, input)
}

func (e *engineImpl) RunGraph(ctx context.Context, g api.WorkflowGraph, input map[string]any) (*api.ExecutionReport, error) {
	if errs := ValidateGraph(g); len(errs) > 0 {
		return nil, api.NewValidationError(errs)
	}
	return e.runValidated(ctx, g, input)
}

func (e *engineImpl) runValidated(ctx context.Context, g api.WorkflowGraph, input map[string]any) (*api.ExecutionReport, error) {
	rep := e.newReport(g, input)

	e.observer.OnRunStart(ctx, rep)

	// Persist the execution as soon as it starts.
	if err := e.executions.SaveExecution(rep); err != nil {
		rep.Status = api.StatusFailed
		e.observer.OnRunFailed(ctx, rep)
		return rep, err
	}

	e.execute(ctx, g, rep)

	if err := e.executions.UpdateExecution(rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// newReport creates the running execution record, folding graph-level
// default input under the per-run input (per-run keys win).
func (e *engineImpl) newReport(g api.WorkflowGraph, input map[string]any) *api.ExecutionReport {
	if input == nil {
		input = map[string]any{}
	}
	if len(g.DefaultInput) > 0 {
		// mergo fills only the keys the run did not supply.
		_ = mergo.Merge(&input, g.DefaultInput)
	}

	return &api.ExecutionReport{
		ID:        uuid.NewString(),
		GraphName: g.Name,
		Status:    api.StatusRunning,
		Input:     input,
		StartedAt: time.Now().UTC(),
	}
}

// execute runs the scheduler and fills the report's terminal fields.
func (e *engineImpl) execute(ctx context.Context, g api.WorkflowGraph, rep *api.ExecutionReport) {
	state := api.NewExecutionState(rep.Input)
	sched := newScheduler(g, state, e.registry, e.observer, rep.ID)

	status := sched.run(ctx)

	now := time.Now().UTC()
	rep.Status = status
	rep.Results = state.Results()
	rep.Errors = state.Errors
	rep.Warnings = state.Warnings
	rep.Skipped = state.SkippedNodes()
	rep.FinalState = state.FinalState()
	rep.CompletedAt = &now

	if status == api.StatusFailed {
		e.observer.OnRunFailed(ctx, rep)
	} else {
		e.observer.OnRunCompleted(ctx, rep)
	}
}

func (e *engineImpl) GetExecution(ctx context.Context, id string) (*api.ExecutionReport, error) {
	return e.executions.GetExecution(id)
}

func (e *engineImpl) ListExecutions(ctx context.Context, opts api.ExecutionListOptions) ([]*api.ExecutionReport, error) {
	return e.executions.ListExecutions(persistence.ExecutionFilter{
		GraphName: opts.GraphName,
		Status:    opts.Status,
	})
}

func (e *engineImpl) ListLogs(ctx context.Context, executionID string) ([]api.LogEvent, error) {
	return e.logs.ListLogs(ctx, executionID)
}

// Start creates a pending execution and enqueues it for a worker. Engines
// without a configured queue execute synchronously as a fallback.
func (e *engineImpl) Start(ctx context.Context, name string, input map[string]any) (*api.ExecutionReport, error) {
	g, err := e.graphByName(name)
	if err != nil {
		return nil, err
	}

	if e.queue == nil {
		return e.runValidated(ctx, g, input)
	}

	rep := e.newReport(g, input)
	rep.Status = api.StatusPending

	if err := e.executions.SaveExecution(rep); err != nil {
		return nil, err
	}

	task := taskqueue.Task{
		ExecutionID: rep.ID,
		GraphName:   g.Name,
		EnqueuedAt:  time.Now(),
	}
	if err := e.queue.Enqueue(ctx, task); err != nil {
		return nil, err
	}

	return rep, nil
}

// RunExecution runs an execution previously created by Start. Used by
// workers so tasks are not re-enqueued.
func (e *engineImpl) RunExecution(ctx context.Context, executionID string) (*api.ExecutionReport, error) {
	rep, err := e.executions.GetExecution(executionID)
	if err != nil {
		return nil, err
	}
	if rep.Status != api.StatusPending {
		return nil, fmt.Errorf("cannot run execution %s in status %s", executionID, rep.Status)
	}

	g, err := e.graphByName(rep.GraphName)
	if err != nil {
		return nil, err
	}

	rep.Status = api.StatusRunning
	e.observer.OnRunStart(ctx, rep)
	if err := e.executions.UpdateExecution(rep); err != nil {
		return rep, err
	}

	e.execute(ctx, g, rep)

	if err := e.executions.UpdateExecution(rep); err != nil {
		return rep, err
	}
	return rep, nil
}
