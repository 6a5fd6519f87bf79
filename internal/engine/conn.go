package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/mimicsql/mimicsql/internal/storage"
)

// Connection owns the session lifecycle and routes statements either to the
// main executor or to an active transaction executor. At most one main
// executor and one transaction exist at a time.
//
// Transactions are staged, not snapshotted: "begin" creates a private
// executor with its own empty store, and "commit" replays that executor's
// statement history, in order, against the main executor. A failure
// mid-replay propagates immediately; statements already replayed stay
// applied to the main store and the transaction remains active. This
// partial-effect behavior is part of the contract, not an accident.
type Connection struct {
	id    string
	store *storage.Store
	main  *Executor
	tx    *Executor
}

// NewConnection creates a disconnected session with a private store.
func NewConnection() *Connection {
	return &Connection{id: uuid.NewString()}
}

// NewConnectionWithStore creates a disconnected session whose main executor
// will operate on the given store. Sharing one store between connections is
// how embedders wire several sessions to the same fixture data.
func NewConnectionWithStore(store *storage.Store) *Connection {
	return &Connection{id: uuid.NewString(), store: store}
}

// ID returns the session's unique identifier.
func (c *Connection) ID() string { return c.id }

// Store returns the table store the main executor operates on, creating it
// if the session never connected. Embedders use it to seed fixtures and to
// assert on state.
func (c *Connection) Store() *storage.Store {
	if c.store == nil {
		c.store = storage.NewStore()
	}
	return c.store
}

// Connected reports whether a main executor exists.
func (c *Connection) Connected() bool { return c.main != nil }

// InTransaction reports whether a transaction executor is active.
func (c *Connection) InTransaction() bool { return c.tx != nil }

// Connect establishes the session and creates the main executor.
func (c *Connection) Connect() error {
	if c.main != nil {
		return &ConnectionError{Msg: "already connected (session " + c.id + ")"}
	}
	c.main = NewExecutor(c.Store())
	return nil
}

// Disconnect tears the session down. An active transaction is discarded
// silently, equivalent to a rollback; its staged statements never reach the
// main store.
func (c *Connection) Disconnect() error {
	if c.main == nil {
		return &ConnectionError{Msg: "not connected (session " + c.id + ")"}
	}
	c.tx = nil
	c.main = nil
	return nil
}

// Query executes one statement. The reserved keywords "begin", "commit",
// and "rollback" are recognized only when they are the entire, untrimmed
// statement text; anything else runs on the transaction executor while a
// transaction is active and on the main executor otherwise.
func (c *Connection) Query(ctx context.Context, sql string, params []any) (*Result, error) {
	if c.tx != nil || sql == "begin" || sql == "commit" || sql == "rollback" {
		return c.transact(ctx, sql, params)
	}
	if c.main == nil {
		return nil, &ConnectionError{Msg: "not connected"}
	}
	return c.main.Query(ctx, sql, params)
}

func (c *Connection) transact(ctx context.Context, sql string, params []any) (*Result, error) {
	switch sql {
	case "begin":
		if c.tx != nil {
			return nil, &TransactionError{Msg: "transaction already in progress"}
		}
		c.tx = NewExecutor(nil)
		return &Result{}, nil
	case "commit":
		if c.tx == nil {
			return nil, &TransactionError{Msg: "no transaction in progress"}
		}
		for _, entry := range c.tx.History() {
			if c.main == nil {
				return nil, &ConnectionError{Msg: "not connected"}
			}
			if _, err := c.main.Query(ctx, entry.SQL, entry.Params); err != nil {
				return nil, err
			}
		}
		c.tx = nil
		return &Result{}, nil
	case "rollback":
		if c.tx == nil {
			return nil, &TransactionError{Msg: "no transaction in progress"}
		}
		c.tx = nil
		return &Result{}, nil
	default:
		return c.tx.Query(ctx, sql, params)
	}
}
