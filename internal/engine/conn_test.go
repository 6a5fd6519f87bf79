package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mimicsql/mimicsql/internal/storage"
)

func connect(t *testing.T) *Connection {
	t.Helper()
	c := NewConnection()
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return c
}

func TestConnectionLifecycle(t *testing.T) {
	c := NewConnection()
	if c.Connected() {
		t.Fatalf("new connection must start disconnected")
	}
	if c.ID() == "" {
		t.Fatalf("connection needs an id")
	}
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	var ce *ConnectionError
	if err := c.Connect(); !errors.As(err, &ce) {
		t.Fatalf("double connect: expected ConnectionError, got %v", err)
	}
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := c.Disconnect(); !errors.As(err, &ce) {
		t.Fatalf("double disconnect: expected ConnectionError, got %v", err)
	}
}

func TestQueryWithoutConnection(t *testing.T) {
	c := NewConnection()
	var ce *ConnectionError
	if _, err := c.Query(context.Background(), "select * from users", nil); !errors.As(err, &ce) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestDistinctConnectionsAreIsolated(t *testing.T) {
	a := connect(t)
	b := connect(t)
	if a.ID() == b.ID() {
		t.Fatalf("ids must differ")
	}
	mustConnQuery(t, a, "insert into t(id) values (1)", nil)
	res := mustConnQuery(t, b, "select * from t", nil)
	if res.RowCount != 0 {
		t.Fatalf("connections must not share state: %v", res.Rows)
	}
}

func TestSharedStoreConnections(t *testing.T) {
	store := storage.NewStore()
	a := NewConnectionWithStore(store)
	b := NewConnectionWithStore(store)
	if err := a.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	mustConnQuery(t, a, "insert into t(id) values (1)", nil)
	res := mustConnQuery(t, b, "select * from t", nil)
	if res.RowCount != 1 {
		t.Fatalf("shared store must be visible: %v", res.Rows)
	}
}

func mustConnQuery(t *testing.T, c *Connection, sql string, params []any) *Result {
	t.Helper()
	res, err := c.Query(context.Background(), sql, params)
	if err != nil {
		t.Fatalf("Query(%q): %v", sql, err)
	}
	return res
}

func TestRollbackRestoresState(t *testing.T) {
	c := connect(t)
	mustConnQuery(t, c, "insert into users(id, name) values (1, 'John')", nil)
	before, _ := c.Store().Rows("users")

	mustConnQuery(t, c, "begin", nil)
	if !c.InTransaction() {
		t.Fatalf("expected active transaction")
	}
	mustConnQuery(t, c, "insert into users(id, name) values (2, 'Richy')", nil)
	mustConnQuery(t, c, "delete from users where id = 1", nil)
	mustConnQuery(t, c, "rollback", nil)
	if c.InTransaction() {
		t.Fatalf("rollback must end the transaction")
	}
	after, _ := c.Store().Rows("users")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback must leave main untouched: %v vs %v", before, after)
	}
}

func TestCommitEqualsDirectExecution(t *testing.T) {
	ops := []string{
		"insert into users(id, name) values (1, 'John')",
		"insert into users(id, name) values (2, 'Richy')",
		"delete from users where id = 1",
	}
	direct := connect(t)
	for _, op := range ops {
		mustConnQuery(t, direct, op, nil)
	}

	staged := connect(t)
	mustConnQuery(t, staged, "begin", nil)
	for _, op := range ops {
		mustConnQuery(t, staged, op, nil)
	}
	mustConnQuery(t, staged, "commit", nil)
	if staged.InTransaction() {
		t.Fatalf("commit must end the transaction")
	}

	want, _ := direct.Store().Rows("users")
	got, _ := staged.Store().Rows("users")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("committed state %v, want %v", got, want)
	}
}

func TestTransactionIsInvisibleUntilCommit(t *testing.T) {
	c := connect(t)
	mustConnQuery(t, c, "begin", nil)
	mustConnQuery(t, c, "insert into t(id) values (1)", nil)
	// the staged insert lives on the private store, not main
	if rows, ok := c.Store().Rows("t"); ok && len(rows) > 0 {
		t.Fatalf("main store must not see staged rows: %v", rows)
	}
	// but queries inside the transaction see it
	res := mustConnQuery(t, c, "select * from t", nil)
	if res.RowCount != 1 {
		t.Fatalf("transaction must see its own writes: %v", res.Rows)
	}
}

func TestCommitReplayFailureKeepsPartialEffects(t *testing.T) {
	c := connect(t)
	mustConnQuery(t, c, "begin", nil)
	mustConnQuery(t, c, "insert into t(id) values (1)", nil)
	// an unsupported statement fails in the transaction too, but is still
	// recorded and will fail again on replay
	if _, err := c.Query(context.Background(), "update t set id = 2", nil); err == nil {
		t.Fatalf("expected staging error")
	}

	_, err := c.Query(context.Background(), "commit", nil)
	var ue *UnsupportedOperationError
	if !errors.As(err, &ue) {
		t.Fatalf("commit should surface the replay error, got %v", err)
	}
	if !c.InTransaction() {
		t.Fatalf("failed commit must leave the transaction active")
	}
	rows, _ := c.Store().Rows("t")
	if len(rows) != 1 {
		t.Fatalf("statements replayed before the failure stay applied: %v", rows)
	}
}

func TestTransactionErrors(t *testing.T) {
	c := connect(t)
	var te *TransactionError
	if _, err := c.Query(context.Background(), "commit", nil); !errors.As(err, &te) {
		t.Fatalf("commit without begin: %v", err)
	}
	if _, err := c.Query(context.Background(), "rollback", nil); !errors.As(err, &te) {
		t.Fatalf("rollback without begin: %v", err)
	}
	mustConnQuery(t, c, "begin", nil)
	if _, err := c.Query(context.Background(), "begin", nil); !errors.As(err, &te) {
		t.Fatalf("nested begin: %v", err)
	}
}

func TestTransactionKeywordsAreExact(t *testing.T) {
	c := connect(t)
	// leading whitespace means the text is not the reserved keyword and is
	// parsed as SQL instead
	if _, err := c.Query(context.Background(), " begin", nil); err == nil {
		t.Fatalf("padded begin should fail to parse")
	}
	if c.InTransaction() {
		t.Fatalf("no transaction should have started")
	}
	if _, err := c.Query(context.Background(), "BEGIN", nil); err == nil {
		t.Fatalf("uppercase BEGIN is not the reserved statement")
	}
}

func TestCommitWithoutMainConnection(t *testing.T) {
	c := NewConnection()
	// begin is recognized even without a session; commit then fails when the
	// first staged statement has no main executor to replay into
	mustConnQuery(t, c, "begin", nil)
	mustConnQuery(t, c, "insert into t(id) values (1)", nil)
	_, err := c.Query(context.Background(), "commit", nil)
	var ce *ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestDisconnectDiscardsTransaction(t *testing.T) {
	c := connect(t)
	mustConnQuery(t, c, "begin", nil)
	mustConnQuery(t, c, "insert into t(id) values (1)", nil)
	if err := c.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if c.InTransaction() {
		t.Fatalf("disconnect must discard the transaction")
	}
	if rows, ok := c.Store().Rows("t"); ok && len(rows) > 0 {
		t.Fatalf("staged rows must never reach main: %v", rows)
	}
}
