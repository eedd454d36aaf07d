package datastore

import (
	"context"
	"sync"

	"github.com/agriconnect/platform/internal/core/ports"
)

// LiveQuery binds a consumer to the result of one statement and keeps it
// fresh. It re-executes when the binding changes, when the store's revision
// counter moves (any mutation anywhere — invalidation is deliberately
// coarse), and when the store becomes ready.
//
// Every dispatch captures a generation token; a result is applied only if
// its token is still the latest. The last dispatched request wins, never the
// last completed one.
type LiveQuery struct {
	store  *Store
	cancel func()

	mu         sync.Mutex
	sql        string
	params     []any
	key        string
	generation uint64
	closed     bool

	data    []ports.Row
	loading bool
	err     error
}

// NewLiveQuery attaches a live query to store. Call Bind to give it a
// statement and Close to detach.
func NewLiveQuery(store *Store) *LiveQuery {
	q := &LiveQuery{store: store, loading: true}
	ch, cancel := store.Subscribe()
	q.cancel = cancel
	go q.watch(ch)
	return q
}

func (q *LiveQuery) watch(ch <-chan uint64) {
	for range ch {
		q.mu.Lock()
		q.dispatchLocked()
		q.mu.Unlock()
	}
}

// Bind sets the statement, parameters and an optional cache-bust key, then
// dispatches. An empty sql skips execution entirely, for when a dependent
// parameter is not yet chosen.
func (q *LiveQuery) Bind(sql string, params []any, key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sql = sql
	q.params = append([]any(nil), params...)
	q.key = key
	q.dispatchLocked()
}

// Refresh forces a re-execution of the current binding.
func (q *LiveQuery) Refresh() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dispatchLocked()
}

// dispatchLocked starts an asynchronous execution of the current binding.
// Callers must hold q.mu.
func (q *LiveQuery) dispatchLocked() {
	if q.closed || q.sql == "" || !q.store.Ready() {
		return
	}
	q.generation++
	gen := q.generation
	q.loading = true

	sql := q.sql
	params := append([]any(nil), q.params...)

	go func() {
		rows, err := q.store.Query(context.Background(), sql, params)

		q.mu.Lock()
		defer q.mu.Unlock()
		if gen != q.generation {
			// Superseded by a newer dispatch; discard.
			return
		}
		if err != nil {
			q.err = err
		} else {
			q.data = rows
			q.err = nil
		}
		q.loading = false
	}()
}

// Snapshot returns the current data, loading flag and error.
func (q *LiveQuery) Snapshot() ([]ports.Row, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data, q.loading, q.err
}

// Close detaches from the store. Results of in-flight executions are dropped.
func (q *LiveQuery) Close() {
	q.mu.Lock()
	q.closed = true
	q.generation++ // invalidate anything in flight
	q.mu.Unlock()
	q.cancel()
}
