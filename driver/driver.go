// Package driver implements a database/sql driver backed by mimicsql.
//
// What: A minimal driver registered as "mimicsql" so code under test keeps
// its *sql.DB plumbing unchanged while running against the in-memory
// engine. DSN "mem://" opens a session over a fresh private store;
// "mem://<handle>" attaches to a store previously published with
// RegisterStore, which is how several connections share fixture data.
// How: Each driver connection wraps one engine session; begin, commit, and
// rollback travel as plain statements so the engine's replay-based
// transaction model is engaged exactly as it would be over SQL. Result
// columns are the sorted union of row field names, since rows are maps.
// Why: database/sql is the client-connection contract Go code programs
// against; mimicking it end to end is what makes the engine a drop-in.
package driver

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"github.com/mimicsql/mimicsql"
)

// Driver implements driver.Driver.
type Driver struct{}

func init() {
	sql.Register("mimicsql", &Driver{})
}

var (
	storesMu sync.Mutex
	stores   = map[string]*mimicsql.Store{}
)

// RegisterStore publishes a store under a handle so that connections opened
// with "mem://<handle>" share it.
func RegisterStore(handle string, store *mimicsql.Store) {
	storesMu.Lock()
	defer storesMu.Unlock()
	stores[handle] = store
}

// Open opens a new session for the given DSN.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	store, err := storeForDSN(dsn)
	if err != nil {
		return nil, err
	}
	var session *mimicsql.Connection
	if store != nil {
		session = mimicsql.NewWithStore(store)
	} else {
		session = mimicsql.New()
	}
	if err := session.Connect(); err != nil {
		return nil, err
	}
	return &Conn{session: session}, nil
}

func storeForDSN(dsn string) (*mimicsql.Store, error) {
	switch {
	case dsn == "" || dsn == "mem://":
		return nil, nil
	case strings.HasPrefix(dsn, "mem://"):
		handle := strings.TrimPrefix(dsn, "mem://")
		storesMu.Lock()
		defer storesMu.Unlock()
		store, ok := stores[handle]
		if !ok {
			return nil, fmt.Errorf("no store registered under %q", handle)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported DSN %q", dsn)
	}
}

// OpenInMemory returns a *sql.DB over a fresh private store.
func OpenInMemory() (*sql.DB, error) {
	return sql.Open("mimicsql", "mem://")
}

// Ensure Driver implements the interface.
var _ driver.Driver = &Driver{}
