package engine

import (
	"database/sql"

	"github.com/taskflowhq/taskflow/internal/persistence"
	"github.com/taskflowhq/taskflow/pkg/api"
)

// NewSQLiteEngine returns an Engine persisting executions and logs in a
// SQLite database. Graphs are kept in memory; the database records runs.
func NewSQLiteEngine(db *sql.DB, collab api.Collaborators) (api.AsyncEngine, error) {
	return NewSQLiteEngineWithObserver(db, collab, nil)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the given
// Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, collab api.Collaborators, obs api.Observer) (api.AsyncEngine, error) {
	executions, err := persistence.NewSQLiteExecutionStore(db)
	if err != nil {
		return nil, err
	}
	logs, err := persistence.NewSQLiteLogStore(db)
	if err != nil {
		return nil, err
	}

	return NewEngineWithConfig(Config{
		Collaborators: collab,
		Observer:      obs,
		Executions:    executions,
		Logs:          logs,
	}), nil
}
