// Package datastore provides the facade every caller goes through to reach
// the configured persistence backend. It adds two things the backends do not
// have: a monotonic revision counter with subscribe/notify semantics, used as
// a coarse cache-invalidation signal, and a ready/failed lifecycle.
package datastore

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agriconnect/platform/internal/core/ports"
)

// State is the lifecycle position of a Store.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	// StateFailed is terminal; there is no automatic retry.
	StateFailed
)

// Store normalizes the configured backend behind one stable contract.
// Reads never move the revision counter; every successful mutation bumps it
// exactly once and wakes all subscribers.
type Store struct {
	backend ports.DataBackend
	log     zerolog.Logger

	mu       sync.Mutex
	state    State
	initErr  error
	revision uint64
	subs     map[int]chan uint64
	nextSub  int
}

// New wraps backend. Call Open before issuing statements.
func New(backend ports.DataBackend, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log,
		subs:    make(map[int]chan uint64),
	}
}

// Open drives the store from uninitialized to ready, or to the terminal
// failed state when the backend cannot be reached.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		err := s.initErr
		s.mu.Unlock()
		return err
	}
	s.state = StateInitializing
	s.mu.Unlock()

	if err := s.backend.Ping(ctx); err != nil {
		cerr := &ConnectivityError{Err: err}
		s.mu.Lock()
		s.state = StateFailed
		s.initErr = cerr
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("datastore initialization failed")
		return cerr
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()
	s.log.Info().Msg("datastore ready")

	// Wake subscribers that attached before the store became ready.
	s.publish()
	return nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ready reports whether statements are accepted.
func (s *Store) Ready() bool { return s.State() == StateReady }

// Err returns the terminal initialization error, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initErr
}

// Revision returns the current value of the mutation counter.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Subscribe registers for revision notifications. The channel carries the
// latest revision; intermediate values are coalesced for slow receivers.
// The returned cancel func must be called to release the subscription.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan uint64, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// bump increments the revision and notifies subscribers. Callers must not
// hold s.mu.
func (s *Store) bump() {
	s.mu.Lock()
	s.revision++
	s.mu.Unlock()
	s.publish()
}

// publish sends the current revision to every subscriber, replacing any
// undelivered older value.
func (s *Store) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.revision
	}
}

func (s *Store) ensureReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateReady:
		return nil
	case StateFailed:
		return s.initErr
	default:
		return ErrNotReady
	}
}

// Query runs a read-only statement. It never moves the revision counter.
func (s *Store) Query(ctx context.Context, sql string, params []any) ([]ports.Row, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	rows, err := s.backend.Query(ctx, sql, params)
	if err != nil {
		return nil, &StatementError{Op: "query", SQL: sql, Err: err}
	}
	return rows, nil
}

// Run executes one mutating statement. The revision is bumped exactly once
// on success and left untouched on failure.
func (s *Store) Run(ctx context.Context, sql string, params []any) (ports.RunResult, error) {
	if err := s.ensureReady(); err != nil {
		return ports.RunResult{}, err
	}
	res, err := s.backend.Run(ctx, sql, params)
	if err != nil {
		return ports.RunResult{}, &StatementError{Op: "run", SQL: sql, Err: err}
	}
	s.bump()
	return res, nil
}

// Execute runs an ad-hoc statement, read or write. Like the query console it
// serves, it reports rows only and does not move the revision counter.
func (s *Store) Execute(ctx context.Context, sql string, params []any) ([]ports.Row, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	rows, err := s.backend.Execute(ctx, sql, params)
	if err != nil {
		return nil, &StatementError{Op: "execute", SQL: sql, Err: err}
	}
	return rows, nil
}

// RunScript executes a multi-statement script. The first failing statement
// aborts the batch; statements already applied stay applied. The revision is
// bumped once, only when the whole script succeeded.
func (s *Store) RunScript(ctx context.Context, script string) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if strings.TrimSpace(script) == "" {
		return nil
	}
	if err := s.backend.RunScript(ctx, script); err != nil {
		return &StatementError{Op: "script", SQL: script, Err: err}
	}
	s.bump()
	return nil
}

// ExportSnapshot serializes the full current state of the backend.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	return s.backend.ExportSnapshot(ctx)
}

// ImportSnapshot replaces the backend state wholesale and bumps the revision.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := s.backend.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	s.bump()
	return nil
}

// ResetToSeed discards the current state, reloads schema and seed data and
// bumps the revision.
func (s *Store) ResetToSeed(ctx context.Context) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := s.backend.ResetToSeed(ctx); err != nil {
		return err
	}
	s.bump()
	return nil
}

// Ping probes the backend without touching store state.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
