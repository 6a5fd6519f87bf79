// Package mimicsql provides an in-memory SQL engine that stands in for a
// real relational database in tests.
//
// A Connection speaks a small SQL dialect (SELECT with joins, ordering,
// and pagination, INSERT with RETURNING, DELETE, DROP TABLE) with
// positional $1..$n parameters, and enforces the connect/disconnect and
// begin/commit/rollback lifecycle of a real client. Transactions are
// staged on a private executor and replayed into the main one on commit.
//
// # Basic Usage
//
//	conn := mimicsql.New()
//	if err := conn.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Disconnect()
//
//	ctx := context.Background()
//	conn.Query(ctx, "insert into users(id, name) values (1, 'John')", nil)
//	res, _ := conn.Query(ctx, "select * from users where id = $1", []any{1})
//	for _, row := range res.Rows {
//	    fmt.Println(row["name"])
//	}
//
// # Seeding fixtures
//
// The live table mapping is exposed on purpose so test harnesses can
// pre-populate state and assert on it without going through SQL:
//
//	conn.Store().Tables()["users"] = []mimicsql.Row{
//	    {"id": 1, "name": "John", "money": 0},
//	    {"id": 2, "name": "Richy", "money": 1123567},
//	}
//
// or from a YAML fixture:
//
//	f, _ := os.Open("testdata/users.yaml")
//	conn.Store().LoadYAML(f)
//
// # database/sql
//
// The driver subpackage registers the engine as driver "mimicsql", so code
// under test that talks to *sql.DB needs no changes at all.
package mimicsql

import (
	"github.com/mimicsql/mimicsql/internal/engine"
	"github.com/mimicsql/mimicsql/internal/storage"
)

// Row is a single record mapped by field name.
type Row = storage.Row

// Store maps table names to ordered row sequences; it is the engine's
// entire mutable state.
type Store = storage.Store

// Connection owns the session lifecycle and transaction staging.
type Connection = engine.Connection

// Result is the outcome of one statement: returned rows (for SELECT and
// INSERT ... RETURNING) and the affected row count.
type Result = engine.Result

// HistoryEntry is one recorded statement with its parameters.
type HistoryEntry = engine.HistoryEntry

// Executor runs statements against one table store. Most callers want
// Connection instead; the executor is exposed for harnesses that need to
// bypass the session lifecycle.
type Executor = engine.Executor

// Error taxonomy. All engine failures surface as one of these, with a
// descriptive message and no retries.
type (
	ConnectionError           = engine.ConnectionError
	TransactionError          = engine.TransactionError
	UnsupportedOperationError = engine.UnsupportedOperationError
	MalformedQueryError       = engine.MalformedQueryError
)

// New creates a disconnected Connection with a private store.
func New() *Connection {
	return engine.NewConnection()
}

// NewWithStore creates a disconnected Connection over a shared store.
// Distinct connections are fully independent unless wired to one store
// this way.
func NewWithStore(store *Store) *Connection {
	return engine.NewConnectionWithStore(store)
}

// NewStore creates an empty table store for sharing between connections.
func NewStore() *Store {
	return storage.NewStore()
}

// NewExecutor creates a standalone executor over the given store (a fresh
// private store when nil).
func NewExecutor(store *Store) *Executor {
	return engine.NewExecutor(store)
}
