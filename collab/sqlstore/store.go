// Package sqlstore provides a DataStore over database/sql, so database nodes
// can run against any SQL backend with a registered driver.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// Store implements api.DataStore on an *sql.DB. Two operations are
// supported:
//
//	"query" - params: {"sql": string, "args": []any}; returns {"rows": []map, "count": int}
//	"exec"  - params: {"sql": string, "args": []any}; returns {"rows_affected": int64}
type Store struct {
	db *sql.DB
}

var _ api.DataStore = (*Store)(nil)

// New wraps an open database handle. The caller owns the handle's lifetime.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Execute(ctx context.Context, operation string, params map[string]any) (map[string]any, error) {
	stmt, _ := params["sql"].(string)
	if stmt == "" {
		return nil, fmt.Errorf("%s operation requires a sql statement", operation)
	}
	args := positionalArgs(params["args"])

	switch operation {
	case "query":
		return s.query(ctx, stmt, args)
	case "exec":
		return s.exec(ctx, stmt, args)
	default:
		return nil, fmt.Errorf("unsupported datastore operation: %s", operation)
	}
}

func (s *Store) query(ctx context.Context, stmt string, args []any) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			// Drivers hand back []byte for text columns; strings travel
			// better through variable resolution.
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{"rows": out, "count": len(out)}, nil
}

func (s *Store) exec(ctx context.Context, stmt string, args []any) (map[string]any, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return map[string]any{"rows_affected": affected}, nil
}

func positionalArgs(v any) []any {
	args, _ := v.([]any)
	return args
}
