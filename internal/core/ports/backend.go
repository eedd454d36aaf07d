package ports

import (
	"context"
	"errors"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// RunResult reports the effect of a single mutating statement.
type RunResult struct {
	LastInsertID int64 `json:"lastInsertId"`
	Changes      int64 `json:"changes"`
}

// ErrSnapshotUnsupported is returned by backends that have no serialized
// whole-database representation (the remote and postgres backends).
var ErrSnapshotUnsupported = errors.New("snapshot not supported by this backend")

// DataBackend is the capability surface every persistence backend conforms
// to. Exactly one backend is active per process, selected at startup;
// callers never branch on the concrete kind.
type DataBackend interface {
	// Query runs a read-only statement and returns its rows.
	Query(ctx context.Context, sql string, params []any) ([]Row, error)
	// Run executes a single mutating statement.
	Run(ctx context.Context, sql string, params []any) (RunResult, error)
	// Execute runs an ad-hoc statement, read or write, returning any rows.
	Execute(ctx context.Context, sql string, params []any) ([]Row, error)
	// RunScript splits script on the statement terminator and executes the
	// statements sequentially. The first failure aborts the remainder;
	// already-applied statements are not rolled back.
	RunScript(ctx context.Context, script string) error
	// ExportSnapshot serializes the full current state.
	ExportSnapshot(ctx context.Context) ([]byte, error)
	// ImportSnapshot replaces the current state wholesale.
	ImportSnapshot(ctx context.Context, data []byte) error
	// ResetToSeed discards the current state and reloads schema plus seed data.
	ResetToSeed(ctx context.Context) error
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// StatementExecutor is the narrow read/write surface services use. The
// datastore facade satisfies it; revision bookkeeping stays behind it.
type StatementExecutor interface {
	Query(ctx context.Context, sql string, params []any) ([]Row, error)
	Run(ctx context.Context, sql string, params []any) (RunResult, error)
}
