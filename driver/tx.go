package driver

import (
	"context"
	"database/sql/driver"

	"github.com/mimicsql/mimicsql"
)

// Tx implements driver.Tx. Commit and rollback travel as the engine's
// reserved statements so the replay-based transaction model is engaged.
type Tx struct {
	session *mimicsql.Connection
}

// Commit replays the staged statements into the main executor.
func (t *Tx) Commit() error {
	_, err := t.session.Query(context.Background(), "commit", nil)
	return err
}

// Rollback discards the staged statements.
func (t *Tx) Rollback() error {
	_, err := t.session.Query(context.Background(), "rollback", nil)
	return err
}

// Ensure Tx implements driver.Tx.
var _ driver.Tx = &Tx{}
