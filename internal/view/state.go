package view

import "github.com/hammamikhairi/recipedesk/internal/domain"

// State is the ephemeral listing state: active criteria and current
// page. It is a value; every transition returns a new State.
type State struct {
	Criteria domain.Criteria `json:"criteria"`
	Page     int             `json:"page"`
}

// NewState returns the initial state: no filters, default sort, page 1.
func NewState() State {
	return State{Criteria: domain.DefaultCriteria(), Page: 1}
}

// WithCriteria replaces the criteria and goes back to page 1.
func (s State) WithCriteria(c domain.Criteria) State {
	if c.Sort == "" {
		c.Sort = domain.DefaultSort
	}
	return State{Criteria: c, Page: 1}
}

// WithSort changes only the sort key. Like any criteria change it
// resets to page 1.
func (s State) WithSort(k domain.SortKey) State {
	c := s.Criteria
	c.Sort = k
	return s.WithCriteria(c)
}

// WithPage moves to page n, clamped to [1, pageCount].
func (s State) WithPage(n, pageCount int) State {
	s.Page = clamp(n, pageCount)
	return s
}

// Next moves one page forward, stopping at the last page.
func (s State) Next(pageCount int) State { return s.WithPage(s.Page+1, pageCount) }

// Prev moves one page back, stopping at page 1.
func (s State) Prev(pageCount int) State { return s.WithPage(s.Page-1, pageCount) }

// Clamp keeps the current page inside [1, pageCount]; used after the
// collection shrinks underneath the user.
func (s State) Clamp(pageCount int) State { return s.WithPage(s.Page, pageCount) }

func clamp(n, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	if n > pageCount {
		n = pageCount
	}
	if n < 1 {
		n = 1
	}
	return n
}
