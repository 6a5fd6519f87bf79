package mimicsql

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestEndToEnd(t *testing.T) {
	conn := New()
	if err := conn.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer conn.Disconnect()
	ctx := context.Background()

	if _, err := conn.Query(ctx, "insert into users(id, name, money) values (1, 'John', 0), (2, 'Richy', 1123567)", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	res, err := conn.Query(ctx, "select * from users where money > $1", []any{0})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := []Row{{"id": 2, "name": "Richy", "money": 1123567}}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Fatalf("rows = %v, want %v", res.Rows, want)
	}
}

func TestSeedingThroughStore(t *testing.T) {
	conn := New()
	conn.Store().Tables()["users"] = []Row{
		{"id": 1, "name": "John"},
		{"id": 2, "name": "Richy"},
	}
	if err := conn.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	res, err := conn.Query(context.Background(), "select * from users", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.RowCount != 2 {
		t.Fatalf("rows = %v", res.Rows)
	}
}

func TestSeedingFromYAML(t *testing.T) {
	doc := `
users:
  - id: 1
    name: John
`
	conn := New()
	if err := conn.Store().LoadYAML(strings.NewReader(doc)); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if err := conn.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	res, err := conn.Query(context.Background(), "select * from users", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.RowCount != 1 || res.Rows[0]["name"] != "John" {
		t.Fatalf("rows = %v", res.Rows)
	}
}

func TestSharedStore(t *testing.T) {
	store := NewStore()
	a := NewWithStore(store)
	b := NewWithStore(store)
	if err := a.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	ctx := context.Background()
	if _, err := a.Query(ctx, "insert into t(id) values (1)", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	res, err := b.Query(ctx, "select * from t", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if res.RowCount != 1 {
		t.Fatalf("rows = %v", res.Rows)
	}
}

func TestStandaloneExecutor(t *testing.T) {
	e := NewExecutor(nil)
	if _, err := e.Query(context.Background(), "insert into t(id) values (1)", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if len(e.History()) != 1 {
		t.Fatalf("history = %v", e.History())
	}
}

func TestErrorTaxonomySurfaces(t *testing.T) {
	conn := New()
	var ce *ConnectionError
	if _, err := conn.Query(context.Background(), "select 1", nil); !errors.As(err, &ce) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if err := conn.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	var ue *UnsupportedOperationError
	if _, err := conn.Query(context.Background(), "update t set x = 1", nil); !errors.As(err, &ue) {
		t.Fatalf("expected UnsupportedOperationError, got %v", err)
	}
	var te *TransactionError
	if _, err := conn.Query(context.Background(), "commit", nil); !errors.As(err, &te) {
		t.Fatalf("expected TransactionError, got %v", err)
	}
	var me *MalformedQueryError
	if _, err := conn.Query(context.Background(), "select * from a inner join b", nil); !errors.As(err, &me) {
		t.Fatalf("expected MalformedQueryError, got %v", err)
	}
}
