// Package memory implements the ephemeral table store: per-session CRUD over
// named tables, seeded with sample fixtures, lost on process exit. It lets
// callers demo full CRUD flows without touching shared backend state.
package memory

import (
	"sync"
	"time"
)

// Record is one table row.
type Record map[string]any

// firstSyntheticID is where per-table id counters start, above any fixture id.
const firstSyntheticID = 1000

// Store maps table names to ordered record sequences. Create prepends, so
// iteration order is newest-first. Each table keeps its own next-id counter.
type Store struct {
	mu          sync.Mutex
	tables      map[string][]Record
	nextID      map[string]int64
	initialized map[string]bool
	now         func() time.Time
}

// NewStore returns a store preloaded with the sample fixtures.
func NewStore() *Store {
	s := &Store{
		tables:      make(map[string][]Record),
		nextID:      make(map[string]int64),
		initialized: make(map[string]bool),
		now:         time.Now,
	}
	s.loadFixtures()
	return s
}

// ensureTable registers an unknown table on first use.
func (s *Store) ensureTable(table string) {
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = nil
	}
	if _, ok := s.nextID[table]; !ok {
		s.nextID[table] = firstSyntheticID
	}
}

// Initialize adopts rows as the table's content. It is one-shot per table per
// process lifetime: later calls are ignored, and there is no re-sync. Empty
// input keeps whatever fixtures are already loaded.
func (s *Store) Initialize(table string, rows []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized[table] || len(rows) == 0 {
		return
	}
	s.ensureTable(table)
	s.tables[table] = append([]Record(nil), rows...)
	s.reseedLocked(table)
	s.initialized[table] = true
}

// reseedLocked moves the table's id counter above max(id)+1, never below
// firstSyntheticID.
func (s *Store) reseedLocked(table string) {
	next := int64(firstSyntheticID)
	for _, rec := range s.tables[table] {
		if id, ok := recordID(rec); ok && id+1 > next {
			next = id + 1
		}
	}
	s.nextID[table] = next
}

// Create assigns the next synthetic id and a creation timestamp, then
// prepends the record so the newest row iterates first.
func (s *Store) Create(table string, rec Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureTable(table)

	created := make(Record, len(rec)+2)
	for k, v := range rec {
		created[k] = v
	}
	created["id"] = s.nextID[table]
	s.nextID[table]++
	created["created_at"] = s.now().UTC().Format(time.RFC3339)

	s.tables[table] = append([]Record{created}, s.tables[table]...)
	return created
}

// Update merges patch into the matching record and stamps updated_at.
// A nil return signals "not found", not an error.
func (s *Store) Update(table string, id int64, patch Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.tables[table] {
		if rid, ok := recordID(rec); ok && rid == id {
			merged := make(Record, len(rec)+len(patch)+1)
			for k, v := range rec {
				merged[k] = v
			}
			for k, v := range patch {
				merged[k] = v
			}
			merged["updated_at"] = s.now().UTC().Format(time.RFC3339)
			s.tables[table][i] = merged
			return merged
		}
	}
	return nil
}

// Delete removes and returns the record, or nil when absent. Deleting an
// already-deleted id returns nil again (idempotent absence).
func (s *Store) Delete(table string, id int64) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	for i, rec := range rows {
		if rid, ok := recordID(rec); ok && rid == id {
			s.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return rec
		}
	}
	return nil
}

// GetAll returns the table's current content, newest-created first.
func (s *Store) GetAll(table string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.tables[table]...)
}

// recordID extracts a record's id across the numeric types rows pick up from
// JSON decoding or fixture literals.
func recordID(rec Record) (int64, bool) {
	switch v := rec["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
