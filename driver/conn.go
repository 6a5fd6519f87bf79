package driver

import (
	"context"
	"database/sql/driver"

	"github.com/mimicsql/mimicsql"
)

// Conn implements driver.Conn, driver.ConnBeginTx, driver.ExecerContext,
// and driver.QueryerContext over one engine session.
type Conn struct {
	session *mimicsql.Connection
}

// Prepare returns a prepared statement. Statements are parsed lazily at
// execution time, matching how the engine records history.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{conn: c, query: query}, nil
}

// Close disconnects the session. An active transaction is discarded.
func (c *Conn) Close() error {
	return c.session.Disconnect()
}

// Begin starts a transaction using the engine's reserved "begin" statement.
func (c *Conn) Begin() (driver.Tx, error) {
	if _, err := c.session.Query(context.Background(), "begin", nil); err != nil {
		return nil, err
	}
	return &Tx{session: c.session}, nil
}

// BeginTx starts a transaction with context support. Isolation options are
// ignored; the engine has exactly one transaction model.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if _, err := c.session.Query(ctx, "begin", nil); err != nil {
		return nil, err
	}
	return &Tx{session: c.session}, nil
}

// ExecContext executes a non-query statement.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	res, err := c.session.Query(ctx, query, fromNamedValues(args))
	if err != nil {
		return nil, err
	}
	return Result{rowsAffected: int64(res.RowCount)}, nil
}

// QueryContext executes a query statement.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	res, err := c.session.Query(ctx, query, fromNamedValues(args))
	if err != nil {
		return nil, err
	}
	return newRows(res), nil
}

// fromNamedValues flattens driver arguments into the positional parameter
// list the engine binds $n placeholders against.
func fromNamedValues(args []driver.NamedValue) []any {
	if len(args) == 0 {
		return nil
	}
	max := 0
	for _, a := range args {
		if a.Ordinal > max {
			max = a.Ordinal
		}
	}
	params := make([]any, max)
	for _, a := range args {
		if a.Ordinal >= 1 {
			params[a.Ordinal-1] = a.Value
		}
	}
	return params
}

// Ensure Conn implements the required interfaces.
var _ driver.Conn = &Conn{}
var _ driver.ConnBeginTx = &Conn{}
var _ driver.ExecerContext = &Conn{}
var _ driver.QueryerContext = &Conn{}
