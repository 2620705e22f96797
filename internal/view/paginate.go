package view

import (
	"fmt"
	"slices"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// DefaultPageSize is the number of rows per page unless configured.
const DefaultPageSize = 10

// Page is one slice of an ordered sequence plus display metadata.
type Page struct {
	Rows       []domain.Recipe `json:"rows"`
	Number     int             `json:"page"`
	Size       int             `json:"pageSize"`
	Total      int             `json:"total"`
	PageCount  int             `json:"pageCount"`
	RangeStart int             `json:"rangeStart"`
	RangeEnd   int             `json:"rangeEnd"`
}

// Paginate slices seq into page number (1-indexed) of the given size.
// The page number is not clamped: out-of-range pages have no rows and a
// 0–0 range. A non-positive size falls back to DefaultPageSize. Rows is
// a copy, so callers may reorder it without touching seq.
func Paginate(seq []domain.Recipe, size, number int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(seq)

	p := Page{
		Number:    number,
		Size:      size,
		Total:     total,
		PageCount: PageCount(total, size),
		Rows:      []domain.Recipe{},
	}

	if number < 1 {
		return p
	}
	start := (number - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}

	p.Rows = slices.Clone(seq[start:end])
	p.RangeStart = start + 1
	p.RangeEnd = end
	return p
}

// PageCount is max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	n := (total + size - 1) / size
	if n < 1 {
		return 1
	}
	return n
}

// Summary renders the displayed range, e.g. "11–20 of 57".
func (p Page) Summary() string {
	return fmt.Sprintf("%d–%d of %d", p.RangeStart, p.RangeEnd, p.Total)
}

// Position renders the pager label, e.g. "page 2 of 6".
func (p Page) Position() string {
	return fmt.Sprintf("page %d of %d", p.Number, p.PageCount)
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.PageCount }
