package driver

import (
	"database/sql"
	"testing"

	"github.com/mimicsql/mimicsql"
)

func openShared(t *testing.T, handle string) *sql.DB {
	t.Helper()
	RegisterStore(handle, mimicsql.NewStore())
	db, err := sql.Open("mimicsql", "mem://"+handle)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExecAndQuery(t *testing.T) {
	db := openShared(t, "exec-query")

	res, err := db.Exec("insert into users(id, name) values (1, 'John'), (2, 'Richy')")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 2 {
		t.Fatalf("RowsAffected = %d", n)
	}

	rows, err := db.Query("select * from users where id = $1", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	// column order is the sorted union of field names
	if len(cols) != 2 || cols[0] != "id" || cols[1] != "name" {
		t.Fatalf("cols = %v", cols)
	}

	count := 0
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if id != 2 || name != "Richy" {
			t.Fatalf("row = %d, %q", id, name)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
}

func TestFreshStorePerOpen(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("insert into t(id) values (1)"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
}

func TestUnknownHandle(t *testing.T) {
	db, err := sql.Open("mimicsql", "mem://no-such-store")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err == nil {
		t.Fatalf("expected error for unregistered handle")
	}
}

func TestBadDSN(t *testing.T) {
	db, err := sql.Open("mimicsql", "file:/tmp/x.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err == nil {
		t.Fatalf("expected error for unsupported DSN")
	}
}

func TestTransactionCommit(t *testing.T) {
	db := openShared(t, "tx-commit")

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.Exec("insert into t(id) values (1)"); err != nil {
		t.Fatalf("tx Exec: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var n int
	row := db.QueryRow("select * from t where id = 1")
	if err := row.Scan(&n); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 1 {
		t.Fatalf("id = %d", n)
	}
}

func TestTransactionRollback(t *testing.T) {
	db := openShared(t, "tx-rollback")

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.Exec("insert into t(id) values (1)"); err != nil {
		t.Fatalf("tx Exec: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	rows, err := db.Query("select * from t")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer rows.Close()
	if rows.Next() {
		t.Fatalf("rolled back row is visible")
	}
}

func TestPreparedStatement(t *testing.T) {
	db := openShared(t, "prepared")

	stmt, err := db.Prepare("insert into t(id) values ($1)")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	defer stmt.Close()
	for i := 1; i <= 3; i++ {
		if _, err := stmt.Exec(i); err != nil {
			t.Fatalf("Exec(%d): %v", i, err)
		}
	}

	rows, err := db.Query("select * from t order by id")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer rows.Close()
	want := int64(1)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if id != want {
			t.Fatalf("id = %d, want %d", id, want)
		}
		want++
	}
	if want != 4 {
		t.Fatalf("saw %d rows", want-1)
	}
}

func TestResultLastInsertId(t *testing.T) {
	if _, err := (Result{}).LastInsertId(); err == nil {
		t.Fatalf("LastInsertId must not be supported")
	}
}
