package taskflow

import (
	"database/sql"

	"github.com/taskflowhq/taskflow/internal/engine"
	"github.com/taskflowhq/taskflow/internal/persistence"
	"github.com/taskflowhq/taskflow/internal/taskqueue"
	workerpkg "github.com/taskflowhq/taskflow/pkg/worker"
)

// WorkerBundle wires together an Engine, a durable task queue, and a Worker
// that consumes executions from that queue.
type WorkerBundle struct {
	Engine AsyncEngine
	Worker *workerpkg.Worker
}

// NewSQLiteBundle constructs a durable Engine + Queue + Worker combo sharing
// the same SQLite database. Executions, logs, and queued tasks are persisted
// in the provided *sql.DB, so pending executions survive restarts.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:taskflow.db?_journal=WAL")
//	bundle, err := taskflow.NewSQLiteBundle(db, collab)
//	// register graphs on bundle.Engine
//	// start runs via bundle.Engine.Start, drive them via bundle.Worker
func NewSQLiteBundle(db *sql.DB, collab Collaborators) (*WorkerBundle, error) {
	return NewSQLiteBundleWithObserver(db, collab, nil)
}

// NewSQLiteBundleWithObserver is NewSQLiteBundle with an Observer attached
// to the engine.
func NewSQLiteBundleWithObserver(db *sql.DB, collab Collaborators, obs Observer) (*WorkerBundle, error) {
	executions, err := persistence.NewSQLiteExecutionStore(db)
	if err != nil {
		return nil, err
	}
	logs, err := persistence.NewSQLiteLogStore(db)
	if err != nil {
		return nil, err
	}
	q, err := taskqueue.NewSQLiteQueue(db)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngineWithConfig(engine.Config{
		Collaborators: collab,
		Observer:      obs,
		Executions:    executions,
		Logs:          logs,
		Queue:         q,
	})

	return &WorkerBundle{
		Engine: eng,
		Worker: workerpkg.New(eng, q),
	}, nil
}
