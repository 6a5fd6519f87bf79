package driver

import (
	"context"
	"database/sql/driver"
)

// Stmt implements driver.Stmt. The SQL text is held verbatim and sent to
// the engine on each execution.
type Stmt struct {
	conn  *Conn
	query string
}

// Close releases the statement. Nothing is held beyond the query text.
func (s *Stmt) Close() error { return nil }

// NumInput reports an unknown placeholder count; the engine resolves $n
// positions at evaluation time.
func (s *Stmt) NumInput() int { return -1 }

// Exec runs the statement without returning rows.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	res, err := s.conn.session.Query(context.Background(), s.query, fromValues(args))
	if err != nil {
		return nil, err
	}
	return Result{rowsAffected: int64(res.RowCount)}, nil
}

// Query runs the statement and returns its rows.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	res, err := s.conn.session.Query(context.Background(), s.query, fromValues(args))
	if err != nil {
		return nil, err
	}
	return newRows(res), nil
}

func fromValues(args []driver.Value) []any {
	if len(args) == 0 {
		return nil
	}
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}
	return params
}

// Ensure Stmt implements driver.Stmt.
var _ driver.Stmt = &Stmt{}
