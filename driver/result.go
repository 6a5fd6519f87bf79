package driver

import (
	"database/sql/driver"
	"errors"
)

// Result implements driver.Result.
type Result struct {
	rowsAffected int64
}

// LastInsertId is not supported; the engine has no row identifiers.
func (r Result) LastInsertId() (int64, error) {
	return 0, errors.New("mimicsql: last insert id is not supported")
}

// RowsAffected returns the engine's reported row count.
func (r Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

// Ensure Result implements driver.Result.
var _ driver.Result = Result{}
