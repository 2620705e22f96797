package view

import "github.com/hammamikhairi/recipedesk/internal/domain"

// Source is what the pipeline reads from; store.MemoryStore satisfies it.
type Source interface {
	Snapshot() ([]domain.Recipe, uint64)
}

// Result is everything the listing needs for one render.
type Result struct {
	State  State  `json:"state"`
	Page   Page   `json:"page"`
	Kpis   Kpis   `json:"kpis"`
	Facets Facets `json:"facets"`
}

// Pipeline ties the memoized evaluator to a page size.
type Pipeline struct {
	memo     *Memo
	pageSize int
}

// NewPipeline creates a pipeline. A non-positive pageSize means
// DefaultPageSize.
func NewPipeline(eval *Evaluator, pageSize int) (*Pipeline, error) {
	memo, err := NewMemo(eval, defaultMemoSize)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pipeline{memo: memo, pageSize: pageSize}, nil
}

// PageSize returns the configured rows per page.
func (p *Pipeline) PageSize() int { return p.pageSize }

// Render derives the visible page from the source's current snapshot.
// The returned state has its page clamped to the page count, so a page
// that emptied under the user snaps back to the last one.
func (p *Pipeline) Render(src Source, s State) Result {
	return p.RenderSize(src, s, p.pageSize)
}

// RenderSize is Render with a caller-chosen page size. A non-positive
// size means the configured one.
func (p *Pipeline) RenderSize(src Source, s State, size int) Result {
	if size <= 0 {
		size = p.pageSize
	}
	records, version := src.Snapshot()
	seq := p.memo.Evaluate(version, records, s.Criteria)
	s = s.Clamp(PageCount(len(seq), size))

	return Result{
		State:  s,
		Page:   Paginate(seq, size, s.Page),
		Kpis:   Summarize(seq),
		Facets: FacetsOf(records),
	}
}
