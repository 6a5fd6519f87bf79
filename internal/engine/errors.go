package engine

import "fmt"

// ConnectionError reports misuse of the connect/disconnect lifecycle or a
// statement issued without a session.
type ConnectionError struct{ Msg string }

func (e *ConnectionError) Error() string { return "connection error: " + e.Msg }

// TransactionError reports misuse of begin/commit/rollback.
type TransactionError struct{ Msg string }

func (e *TransactionError) Error() string { return "transaction error: " + e.Msg }

// UnsupportedOperationError reports a statement kind, operator, join kind,
// drop keyword, column expression, or returning shape the engine does not
// serve. Unknown constructs fail loudly instead of being ignored.
type UnsupportedOperationError struct{ Msg string }

func (e *UnsupportedOperationError) Error() string { return "unsupported operation: " + e.Msg }

// MalformedQueryError reports an invalid FROM or join shape.
type MalformedQueryError struct{ Msg string }

func (e *MalformedQueryError) Error() string { return "malformed query: " + e.Msg }

func unsupportedf(format string, a ...any) error {
	return &UnsupportedOperationError{Msg: fmt.Sprintf(format, a...)}
}

func malformedf(format string, a ...any) error {
	return &MalformedQueryError{Msg: fmt.Sprintf(format, a...)}
}
