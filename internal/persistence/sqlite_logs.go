package persistence

import (
	"context"
	"database/sql"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// SQLiteLogStore is a LogStore backed by SQLite. One row per log event,
// ordered by insertion.
type SQLiteLogStore struct {
	db *sql.DB
}

var _ LogStore = (*SQLiteLogStore)(nil)

// NewSQLiteLogStore initializes the log schema and returns the store.
func NewSQLiteLogStore(db *sql.DB) (*SQLiteLogStore, error) {
	s := &SQLiteLogStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteLogStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS execution_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL,
			node_id TEXT NOT NULL,
			node_type TEXT NOT NULL,
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			data BLOB,
			at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_execution_logs_execution
			ON execution_logs (execution_id, id);`,
	)
	return err
}

func (s *SQLiteLogStore) AppendLog(ctx context.Context, ev api.LogEvent) error {
	data, err := EncodeJSON(ev.Data)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO execution_logs (execution_id, node_id, node_type, level, message, data, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ExecutionID,
		ev.NodeID,
		string(ev.NodeType),
		ev.Level,
		ev.Message,
		data,
		ev.At.UTC(),
	)
	return err
}

func (s *SQLiteLogStore) ListLogs(ctx context.Context, executionID string) ([]api.LogEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT execution_id, node_id, node_type, level, message, data, at
		FROM execution_logs
		WHERE execution_id = ?
		ORDER BY id`,
		executionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []api.LogEvent

	for rows.Next() {
		var ev api.LogEvent
		var nodeType string
		var data []byte

		if err := rows.Scan(&ev.ExecutionID, &ev.NodeID, &nodeType, &ev.Level, &ev.Message, &data, &ev.At); err != nil {
			return nil, err
		}
		ev.NodeType = api.NodeType(nodeType)

		if err := DecodeJSON(data, &ev.Data); err != nil {
			return nil, err
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
