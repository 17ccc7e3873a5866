package taskqueue

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteQueue is a persistent task queue backed by SQLite with simple FIFO
// semantics based on an auto-incrementing id. Tasks survive process
// restarts, so pending executions enqueued before a crash are still run.
type SQLiteQueue struct {
	db           *sql.DB
	pollInterval time.Duration
}

// NewSQLiteQueue initializes the tasks table in the given DB and returns a
// new queue.
func NewSQLiteQueue(db *sql.DB) (*SQLiteQueue, error) {
	q := &SQLiteQueue{
		db:           db,
		pollInterval: 20 * time.Millisecond,
	}
	if err := q.initSchema(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *SQLiteQueue) initSchema() error {
	_, err := q.db.Exec(`
		CREATE TABLE IF NOT EXISTS execution_tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL,
			graph_name TEXT NOT NULL,
			enqueued_at INTEGER NOT NULL
		);
	`)
	return err
}

var _ Queue = (*SQLiteQueue)(nil)

func (q *SQLiteQueue) Enqueue(ctx context.Context, t Task) error {
	enqueuedAt := t.EnqueuedAt
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now()
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO execution_tasks (execution_id, graph_name, enqueued_at)
		VALUES (?, ?, ?)`,
		t.ExecutionID,
		t.GraphName,
		enqueuedAt.UnixNano(),
	)
	return err
}

func (q *SQLiteQueue) Dequeue(ctx context.Context) (*Task, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tx, err := q.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}

		var (
			id          int64
			executionID string
			graphName   string
			enqueuedInt int64
		)

		row := tx.QueryRowContext(ctx, `
			SELECT id, execution_id, graph_name, enqueued_at
			FROM execution_tasks
			ORDER BY id
			LIMIT 1`)
		err = row.Scan(&id, &executionID, &graphName, &enqueuedInt)
		if err != nil {
			_ = tx.Rollback()
			if errors.Is(err, sql.ErrNoRows) {
				// Nothing available: sleep a bit and retry.
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(q.pollInterval):
					continue
				}
			}
			return nil, err
		}

		// Delete the row we just claimed.
		if _, err := tx.ExecContext(ctx, `DELETE FROM execution_tasks WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}

		return &Task{
			ExecutionID: executionID,
			GraphName:   graphName,
			EnqueuedAt:  time.Unix(0, enqueuedInt),
		}, nil
	}
}

func (q *SQLiteQueue) Len() int {
	var n int
	if err := q.db.QueryRow(`SELECT COUNT(*) FROM execution_tasks`).Scan(&n); err != nil {
		return 0
	}
	return n
}
