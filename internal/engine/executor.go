// Package engine evaluates parsed SQL statements against an in-memory table
// store and enforces the session and transaction contract of a SQL client.
//
// What: A statement executor (SELECT with joins, ordering, and pagination,
// INSERT with RETURNING, DELETE, DROP TABLE), a recursive expression
// evaluator with positional $n parameters, a first-match join resolver, a
// column projector, and a connection controller whose transactions are
// staged executors replayed into the main one on commit.
// How: Rows are maps from field name to scalar value; FROM resolution tags
// them by source table into composite rows, which are projected into the
// requested shape before WHERE, ORDER BY, and LIMIT/OFFSET run. Every
// statement an executor sees is recorded in its history first, success or
// not, so replay reproduces causes rather than copying effects.
// Why: As a test double the engine's value is predictable, inspectable
// behavior, so evaluation stays data-structure driven with no planner and
// every unhandled construct fails loudly.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mimicsql/mimicsql/internal/parser"
	"github.com/mimicsql/mimicsql/internal/storage"
)

// HistoryEntry records one statement issued to an executor, in issue order.
type HistoryEntry struct {
	SQL    string
	Params []any
}

// Result is the outcome of one statement. Rows is set for SELECT and for
// INSERT ... RETURNING; RowCount is the number of returned, inserted, or
// deleted rows.
type Result struct {
	Rows     []storage.Row
	RowCount int
}

// Executor runs statements against one table store and keeps the statement
// history that transaction replay is built on.
type Executor struct {
	store   *storage.Store
	history []HistoryEntry
}

// NewExecutor creates an executor over the given store, or over a fresh
// private store when nil is passed.
func NewExecutor(store *storage.Store) *Executor {
	if store == nil {
		store = storage.NewStore()
	}
	return &Executor{store: store}
}

// Store returns the executor's table store.
func (e *Executor) Store() *storage.Store { return e.store }

// History returns the recorded statements in issue order.
func (e *Executor) History() []HistoryEntry { return e.history }

// Query executes one SQL statement. The history entry is appended before
// parsing and dispatch so that replay sees failing statements too.
func (e *Executor) Query(ctx context.Context, sql string, params []any) (*Result, error) {
	e.history = append(e.history, HistoryEntry{SQL: sql, Params: params})
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	switch s := stmt.(type) {
	case *parser.Select:
		return e.execSelect(ctx, s, params)
	case *parser.Insert:
		return e.execInsert(ctx, s, params)
	case *parser.Delete:
		return e.execDelete(ctx, s, params)
	case *parser.Drop:
		return e.execDrop(s)
	default:
		return nil, unsupportedf("statement kind %q", kindName(stmt))
	}
}

// -------------------- Statement handlers --------------------

func (e *Executor) execSelect(ctx context.Context, s *parser.Select, params []any) (*Result, error) {
	composite, defaultTable, err := e.resolveFrom(s.From, params)
	if err != nil {
		return nil, err
	}
	// Projection happens right after FROM resolution, before WHERE and
	// ORDER BY; filters and sort keys therefore see the output shape.
	rows, err := projectRows(composite, s.Columns, defaultTable)
	if err != nil {
		return nil, err
	}
	if s.Where != nil {
		filtered := make([]storage.Row, 0, len(rows))
		for _, r := range rows {
			if err := checkCtx(ctx); err != nil {
				return nil, err
			}
			v, err := evalExpr(r, s.Where, params)
			if err != nil {
				return nil, err
			}
			if truthy(v) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	if len(s.OrderBy) > 0 {
		if err := sortRows(rows, s.OrderBy, params); err != nil {
			return nil, err
		}
	}
	rows, err = paginate(rows, s.Limit, params)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: rows, RowCount: len(rows)}, nil
}

// resolveFrom turns the FROM chain into composite rows tagged by source
// table (or alias) and returns the default table for unqualified columns.
func (e *Executor) resolveFrom(from []parser.FromItem, params []any) ([]storage.Row, string, error) {
	if len(from) == 0 {
		return nil, "", nil
	}
	if err := validateFrom(from); err != nil {
		return nil, "", err
	}
	defaultTable := effectiveName(from[0])
	if len(from) == 1 {
		base := e.store.Ensure(from[0].Table)
		composite := make([]storage.Row, len(base))
		for i, r := range base {
			composite[i] = storage.Row{defaultTable: r}
		}
		return composite, defaultTable, nil
	}
	rows, err := resolveJoin(e.store, from, params)
	return rows, defaultTable, err
}

func (e *Executor) execInsert(ctx context.Context, s *parser.Insert, params []any) (*Result, error) {
	e.store.Ensure(s.Table)
	scratch := storage.Row{}
	var inserted []storage.Row
	for _, tuple := range s.Rows {
		if err := checkCtx(ctx); err != nil {
			return nil, err
		}
		row := storage.Row{}
		for i, col := range s.Columns {
			if i >= len(tuple) {
				break
			}
			v, err := evalExpr(scratch, tuple[i], params)
			if err != nil {
				return nil, err
			}
			row[col] = v
		}
		// Tuples that construct no fields at all are dropped.
		if len(row) == 0 {
			continue
		}
		inserted = append(inserted, row)
	}
	e.store.Append(s.Table, inserted...)
	res := &Result{RowCount: len(inserted)}
	if s.Returning != nil {
		switch {
		case s.Returning.Star:
			res.Rows = inserted
		case len(s.Returning.Items) > 0:
			wrapped := make([]storage.Row, len(inserted))
			for i, r := range inserted {
				wrapped[i] = storage.Row{s.Table: r}
			}
			rows, err := projectRows(wrapped, s.Returning.Items, s.Table)
			if err != nil {
				return nil, err
			}
			res.Rows = rows
		default:
			return nil, unsupportedf("returning shape")
		}
	}
	return res, nil
}

func (e *Executor) execDelete(ctx context.Context, s *parser.Delete, params []any) (*Result, error) {
	rows, ok := e.store.Rows(s.Table)
	if !ok {
		return &Result{}, nil
	}
	// Without a WHERE clause nothing is deleted; truncation must be asked
	// for explicitly via DROP TABLE.
	if s.Where == nil {
		return &Result{}, nil
	}
	kept := make([]storage.Row, 0, len(rows))
	removed := 0
	for _, r := range rows {
		if err := checkCtx(ctx); err != nil {
			return nil, err
		}
		v, err := evalExpr(r, s.Where, params)
		if err != nil {
			return nil, err
		}
		if truthy(v) {
			removed++
		} else {
			kept = append(kept, r)
		}
	}
	e.store.SetRows(s.Table, kept)
	return &Result{RowCount: removed}, nil
}

func (e *Executor) execDrop(s *parser.Drop) (*Result, error) {
	if s.Keyword != "table" {
		return nil, unsupportedf("DROP %s", strings.ToUpper(s.Keyword))
	}
	for _, name := range s.Names {
		e.store.Drop(name)
	}
	return &Result{}, nil
}

// -------------------- Ordering and pagination --------------------

// sortRows stable-sorts in place over the ORDER BY keys.
func sortRows(rows []storage.Row, keys []parser.OrderItem, params []any) error {
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := rows[i], rows[j]
		for _, k := range keys {
			va, err := evalExpr(a, k.Expr, params)
			if err != nil {
				sortErr = err
				return false
			}
			vb, err := evalExpr(b, k.Expr, params)
			if err != nil {
				sortErr = err
				return false
			}
			c, ok := orderScalars(va, vb)
			if !ok || c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return sortErr
}

// paginate applies the combined limit/offset clause: the first value is the
// row limit (default: all remaining), the second the offset (default: 0).
func paginate(rows []storage.Row, lim *parser.Limit, params []any) ([]storage.Row, error) {
	if lim == nil || len(lim.Vals) == 0 {
		return rows, nil
	}
	limit := len(rows)
	offset := 0
	v, err := evalExpr(storage.Row{}, lim.Vals[0], params)
	if err != nil {
		return nil, err
	}
	if n, ok := toInt(v); ok {
		limit = n
	}
	if len(lim.Vals) > 1 {
		v, err := evalExpr(storage.Row{}, lim.Vals[1], params)
		if err != nil {
			return nil, err
		}
		if n, ok := toInt(v); ok {
			offset = n
		}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit < 0 {
		limit = 0
	}
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func kindName(stmt parser.Statement) string {
	switch stmt.(type) {
	case *parser.Update:
		return "update"
	case *parser.CreateTable:
		return "create table"
	default:
		return fmt.Sprintf("%T", stmt)
	}
}

// checkCtx returns the context error, if any, at a safe point.
func checkCtx(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
