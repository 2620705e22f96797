// Package store holds the client-side record collection.
package store

import (
	"sync"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/logger"
)

// Compile-time interface check.
var _ domain.RecordStore = (*MemoryStore)(nil)

// MemoryStore is the ordered in-memory record collection. Order is the
// default display order. Ids are unique. Safe for concurrent access.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.Recipe
	version uint64
	log     *logger.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{log: log}
}

// Replace swaps the whole collection (initial load or reload). Records
// without an id are dropped, as are later duplicates of an id.
func (s *MemoryStore) Replace(records []domain.Recipe) {
	seen := make(map[int]struct{}, len(records))
	next := make([]domain.Recipe, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.ID == 0 {
			dropped++
			continue
		}
		if _, dup := seen[r.ID]; dup {
			dropped++
			continue
		}
		seen[r.ID] = struct{}{}
		next = append(next, r.Clone())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = next
	s.version++
	s.log.Debug("replaced collection, count=%d dropped=%d", len(next), dropped)
}

// InsertIfAbsent prepends r unless a record with the same id exists.
// Reports whether r was inserted.
func (s *MemoryStore) InsertIfAbsent(r domain.Recipe) (bool, error) {
	return s.InsertAt(0, r)
}

// InsertAt inserts r at position pos (clamped to the collection bounds)
// unless its id is already present.
func (s *MemoryStore) InsertAt(pos int, r domain.Recipe) (bool, error) {
	if r.ID == 0 {
		return false, domain.ErrNoID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(r.ID) >= 0 {
		s.log.Debug("insert skipped, id %d already present", r.ID)
		return false, nil
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.records) {
		pos = len(s.records)
	}

	s.records = append(s.records, domain.Recipe{})
	copy(s.records[pos+1:], s.records[pos:])
	s.records[pos] = r.Clone()
	s.version++
	s.log.Debug("inserted id %d at %d", r.ID, pos)
	return true, nil
}

// Merge applies patch to the record with the given id and returns the
// record as it was before and after the merge.
func (s *MemoryStore) Merge(id int, patch domain.Patch) (before, after domain.Recipe, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Recipe{}, domain.Recipe{}, domain.ErrNotFound
	}
	before = s.records[i].Clone()
	after = patch.Apply(s.records[i])
	s.records[i] = after
	s.version++
	s.log.Debug("merged patch into id %d", id)
	return before, after.Clone(), nil
}

// Remove deletes the record with the given id and returns it together
// with the position it occupied.
func (s *MemoryStore) Remove(id int) (domain.Recipe, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Recipe{}, -1, domain.ErrNotFound
	}
	removed := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.version++
	s.log.Debug("removed id %d from %d", id, i)
	return removed, i, nil
}

// Get returns a copy of the record with the given id.
func (s *MemoryStore) Get(id int) (domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Recipe{}, domain.ErrNotFound
	}
	return s.records[i].Clone(), nil
}

// Has reports whether id is present.
func (s *MemoryStore) Has(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Snapshot returns a copy of the collection and the version it was taken
// at. The copy is safe to hand to the view pipeline.
func (s *MemoryStore) Snapshot() ([]domain.Recipe, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recipe, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out, s.version
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version increases on every mutation.
func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// indexOf must be called with the lock held.
func (s *MemoryStore) indexOf(id int) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
