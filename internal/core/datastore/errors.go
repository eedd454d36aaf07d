package datastore

import "errors"

// ErrNotReady is returned for any statement issued before the store reached
// the ready state, or after initialization failed.
var ErrNotReady = errors.New("datastore not ready")

// ConnectivityError marks a backend that was unreachable during
// initialization. It is terminal for the session: the store stays failed and
// is never retried automatically.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// StatementError marks a statement the active backend rejected. The backend
// message is preserved untouched so the query console can show it verbatim.
type StatementError struct {
	Op  string // "query", "run", "execute" or "script"
	SQL string
	Err error
}

func (e *StatementError) Error() string { return e.Err.Error() }

func (e *StatementError) Unwrap() error { return e.Err }
