package datastore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agriconnect/platform/internal/core/ports"
)

// stubBackend lets each test script backend behaviour per operation.
type stubBackend struct {
	pingErr   error
	queryRows []ports.Row
	queryErr  error
	runRes    ports.RunResult
	runErr    error
	scriptErr error

	queries []string
	runs    []string
}

func (b *stubBackend) Query(_ context.Context, sql string, _ []any) ([]ports.Row, error) {
	b.queries = append(b.queries, sql)
	return b.queryRows, b.queryErr
}

func (b *stubBackend) Run(_ context.Context, sql string, _ []any) (ports.RunResult, error) {
	b.runs = append(b.runs, sql)
	return b.runRes, b.runErr
}

func (b *stubBackend) Execute(ctx context.Context, sql string, params []any) ([]ports.Row, error) {
	return b.Query(ctx, sql, params)
}

func (b *stubBackend) RunScript(_ context.Context, _ string) error { return b.scriptErr }

func (b *stubBackend) ExportSnapshot(_ context.Context) ([]byte, error) { return []byte("{}"), nil }

func (b *stubBackend) ImportSnapshot(_ context.Context, _ []byte) error { return nil }

func (b *stubBackend) ResetToSeed(_ context.Context) error { return nil }

func (b *stubBackend) Ping(_ context.Context) error { return b.pingErr }

func (b *stubBackend) Close() error { return nil }

func openStore(t *testing.T, backend ports.DataBackend) *Store {
	t.Helper()
	s := New(backend, zerolog.Nop())
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return s
}

func TestOpenFailureIsTerminal(t *testing.T) {
	backend := &stubBackend{pingErr: errors.New("connection refused")}
	s := New(backend, zerolog.Nop())

	err := s.Open(context.Background())
	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if s.State() != StateFailed {
		t.Fatalf("expected failed state, got %v", s.State())
	}

	// The backend recovering does not matter: failed is terminal.
	backend.pingErr = nil
	if err := s.Open(context.Background()); !errors.As(err, &ce) {
		t.Errorf("reopen should return the original error, got %v", err)
	}
	if _, err := s.Query(context.Background(), "SELECT * FROM sectors", nil); !errors.As(err, &ce) {
		t.Errorf("statements on a failed store should fail, got %v", err)
	}
}

func TestStatementsBeforeOpenReturnNotReady(t *testing.T) {
	s := New(&stubBackend{}, zerolog.Nop())
	if _, err := s.Query(context.Background(), "SELECT 1", nil); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestQueryDoesNotBumpRevision(t *testing.T) {
	s := openStore(t, &stubBackend{queryRows: []ports.Row{{"id": int64(1)}}})

	before := s.Revision()
	if _, err := s.Query(context.Background(), "SELECT * FROM sectors", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Revision() != before {
		t.Errorf("reads must not move the revision counter")
	}
}

func TestRunBumpsRevisionExactlyOnceOnSuccess(t *testing.T) {
	backend := &stubBackend{runRes: ports.RunResult{LastInsertID: 7, Changes: 1}}
	s := openStore(t, backend)

	before := s.Revision()
	res, err := s.Run(context.Background(), "INSERT INTO events (title) VALUES (?)", []any{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LastInsertID != 7 || res.Changes != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if s.Revision() != before+1 {
		t.Errorf("expected exactly one bump, revision went %d -> %d", before, s.Revision())
	}
}

func TestRunFailureLeavesRevisionUntouched(t *testing.T) {
	backend := &stubBackend{runErr: errors.New("no such table: nothing")}
	s := openStore(t, backend)

	before := s.Revision()
	_, err := s.Run(context.Background(), "DELETE FROM nothing WHERE id = ?", []any{int64(1)})

	var se *StatementError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatementError, got %v", err)
	}
	if se.Op != "run" {
		t.Errorf("unexpected op: %s", se.Op)
	}
	if se.Error() != "no such table: nothing" {
		t.Errorf("statement errors must carry the raw backend message, got %q", se.Error())
	}
	if s.Revision() != before {
		t.Errorf("failed mutations must not move the revision counter")
	}
}

func TestExecuteNeverBumpsRevision(t *testing.T) {
	s := openStore(t, &stubBackend{})

	before := s.Revision()
	if _, err := s.Execute(context.Background(), "DELETE FROM events WHERE id = ?", []any{int64(1)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Revision() != before {
		t.Errorf("the console path must not move the revision counter")
	}
}

func TestRunScriptBumpsOnceOnFullSuccess(t *testing.T) {
	s := openStore(t, &stubBackend{})

	before := s.Revision()
	if err := s.RunScript(context.Background(), "DELETE FROM a; DELETE FROM b;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Revision() != before+1 {
		t.Errorf("expected one bump for the whole script")
	}
}

func TestRunScriptFailureAbortsWithoutBump(t *testing.T) {
	s := openStore(t, &stubBackend{scriptErr: errors.New("syntax error")})

	before := s.Revision()
	err := s.RunScript(context.Background(), "NOT SQL;")
	var se *StatementError
	if !errors.As(err, &se) || se.Op != "script" {
		t.Fatalf("expected script StatementError, got %v", err)
	}
	if s.Revision() != before {
		t.Errorf("failed scripts must not move the revision counter")
	}
}

func TestEmptyScriptIsANoOp(t *testing.T) {
	s := openStore(t, &stubBackend{})
	before := s.Revision()
	if err := s.RunScript(context.Background(), "   \n  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Revision() != before {
		t.Errorf("empty scripts must not move the revision counter")
	}
}

func TestSubscribeCoalescesAndDeliversLatest(t *testing.T) {
	s := openStore(t, &stubBackend{})

	ch, cancel := s.Subscribe()
	defer cancel()
	drain(ch) // open() publishes readiness

	// Three quick mutations; a slow receiver sees only the newest value.
	for i := 0; i < 3; i++ {
		if _, err := s.Run(context.Background(), "INSERT INTO t (a) VALUES (?)", []any{i}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	select {
	case rev := <-ch:
		if rev != s.Revision() {
			t.Errorf("expected latest revision %d, got %d", s.Revision(), rev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}
}

func TestSubscribeCancelCloses(t *testing.T) {
	s := openStore(t, &stubBackend{})
	ch, cancel := s.Subscribe()
	cancel()
	cancel() // second cancel is harmless

	if _, ok := <-ch; ok {
		// The readiness publish may still be buffered; the channel must be
		// closed after at most one pending value.
		if _, ok := <-ch; ok {
			t.Fatal("channel should be closed after cancel")
		}
	}
}

func drain(ch <-chan uint64) {
	select {
	case <-ch:
	default:
	}
}
