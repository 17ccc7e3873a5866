package persistence

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// SQLiteExecutionStore is an ExecutionStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteExecutionStore struct {
	db *sql.DB
}

// Ensure SQLiteExecutionStore implements ExecutionStore.
var _ ExecutionStore = (*SQLiteExecutionStore)(nil)

// NewSQLiteExecutionStore initializes the required schema in the given
// database and returns a new SQLiteExecutionStore.
func NewSQLiteExecutionStore(db *sql.DB) (*SQLiteExecutionStore, error) {
	s := &SQLiteExecutionStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteExecutionStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			graph_name TEXT NOT NULL,
			status TEXT NOT NULL,
			report BLOB NOT NULL,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		);`,
	)
	return err
}

func (s *SQLiteExecutionStore) SaveExecution(rep *api.ExecutionReport) error {
	report, err := EncodeJSON(rep)
	if err != nil {
		return err
	}

	var completed any
	if rep.CompletedAt != nil {
		completed = rep.CompletedAt.UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO executions (id, graph_name, status, report, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID,
		rep.GraphName,
		string(rep.Status),
		report,
		rep.StartedAt.UTC(),
		completed,
	)
	return err
}

func (s *SQLiteExecutionStore) UpdateExecution(rep *api.ExecutionReport) error {
	report, err := EncodeJSON(rep)
	if err != nil {
		return err
	}

	var completed any
	if rep.CompletedAt != nil {
		completed = rep.CompletedAt.UTC()
	}

	res, err := s.db.Exec(`
		UPDATE executions
		SET graph_name = ?, status = ?, report = ?, started_at = ?, completed_at = ?
		WHERE id = ?`,
		rep.GraphName,
		string(rep.Status),
		report,
		rep.StartedAt.UTC(),
		completed,
		rep.ID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return api.ErrExecutionNotFound
	}

	return nil
}

func (s *SQLiteExecutionStore) GetExecution(id string) (*api.ExecutionReport, error) {
	row := s.db.QueryRow(`SELECT report FROM executions WHERE id = ?`, id)

	var report []byte
	if err := row.Scan(&report); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrExecutionNotFound
		}
		return nil, err
	}

	var rep api.ExecutionReport
	if err := DecodeJSON(report, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (s *SQLiteExecutionStore) ListExecutions(filter ExecutionFilter) ([]*api.ExecutionReport, error) {
	query := `SELECT report FROM executions`
	var args []any
	var clauses []string

	if filter.GraphName != "" {
		clauses = append(clauses, "graph_name = ?")
		args = append(args, filter.GraphName)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}

	if len(clauses) > 0 {
		query = query + " WHERE " + strings.Join(clauses, " AND ")
	}
	query = query + " ORDER BY started_at"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*api.ExecutionReport

	for rows.Next() {
		var report []byte
		if err := rows.Scan(&report); err != nil {
			return nil, err
		}
		var rep api.ExecutionReport
		if err := DecodeJSON(report, &rep); err != nil {
			return nil, err
		}
		reports = append(reports, &rep)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}
