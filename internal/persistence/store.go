package persistence

import (
	"context"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// ExecutionFilter selects executions from the store. Empty string / zero
// status mean "no filter" for that field.
type ExecutionFilter struct {
	GraphName string
	Status    api.Status
}

// ExecutionStore handles storage of execution reports. The engine persists
// a report when a run starts and updates it when the run ends; everything
// in between lives only in the run's ExecutionState.
type ExecutionStore interface {
	SaveExecution(rep *api.ExecutionReport) error
	UpdateExecution(rep *api.ExecutionReport) error
	GetExecution(id string) (*api.ExecutionReport, error)
	ListExecutions(filter ExecutionFilter) ([]*api.ExecutionReport, error)
}

// LogStore is an append-only store for per-node log events.
type LogStore interface {
	AppendLog(ctx context.Context, ev api.LogEvent) error
	ListLogs(ctx context.Context, executionID string) ([]api.LogEvent, error)
}

// NoopLogStore discards all events.
type NoopLogStore struct{}

func (NoopLogStore) AppendLog(ctx context.Context, ev api.LogEvent) error { return nil }
func (NoopLogStore) ListLogs(ctx context.Context, executionID string) ([]api.LogEvent, error) {
	return nil, nil
}

// Stores bundles the persistence backends an engine uses.
type Stores struct {
	Executions ExecutionStore
	Logs       LogStore
}
