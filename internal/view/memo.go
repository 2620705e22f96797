package view

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

const defaultMemoSize = 32

type memoKey struct {
	version  uint64
	criteria domain.Criteria
}

// Memo caches evaluated sequences by (collection version, criteria).
// Cached slices are shared between callers and must not be modified.
type Memo struct {
	eval  *Evaluator
	cache *lru.Cache[memoKey, []domain.Recipe]
}

// NewMemo creates a memo holding up to size evaluated sequences.
func NewMemo(eval *Evaluator, size int) (*Memo, error) {
	if size <= 0 {
		size = defaultMemoSize
	}
	cache, err := lru.New[memoKey, []domain.Recipe](size)
	if err != nil {
		return nil, err
	}
	return &Memo{eval: eval, cache: cache}, nil
}

// Evaluate returns the cached sequence for (version, c) or computes it.
// records must be the collection as of version.
func (m *Memo) Evaluate(version uint64, records []domain.Recipe, c domain.Criteria) []domain.Recipe {
	key := memoKey{version: version, criteria: c}
	if seq, ok := m.cache.Get(key); ok {
		return seq
	}
	seq := m.eval.Evaluate(records, c)
	m.cache.Add(key, seq)
	return seq
}

// Len returns the number of cached sequences.
func (m *Memo) Len() int { return m.cache.Len() }
