package domain

import (
	"fmt"
	"strings"
)

// SortKey selects the comparator used to order the listing.
type SortKey string

// Supported sort keys. The zero value behaves like SortNameAsc.
const (
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortRatingAsc  SortKey = "rating-asc"
	SortRatingDesc SortKey = "rating-desc"
	SortTimeAsc    SortKey = "time-asc"
	SortTimeDesc   SortKey = "time-desc"
	SortCalAsc     SortKey = "cal-asc"
	SortCalDesc    SortKey = "cal-desc"
)

// DefaultSort is the order used when no sort key was chosen.
const DefaultSort = SortNameAsc

// SortKeys lists every supported key in menu order.
var SortKeys = []SortKey{
	SortNameAsc, SortNameDesc,
	SortRatingDesc, SortRatingAsc,
	SortTimeAsc, SortTimeDesc,
	SortCalAsc, SortCalDesc,
}

// String returns the wire form of the key.
func (k SortKey) String() string { return string(k) }

// Label returns a short human description for menus and help text.
func (k SortKey) Label() string {
	switch k {
	case SortNameAsc:
		return "name ↑"
	case SortNameDesc:
		return "name ↓"
	case SortRatingAsc:
		return "rating ↑"
	case SortRatingDesc:
		return "rating ↓"
	case SortTimeAsc:
		return "time (prep+cook) ↑"
	case SortTimeDesc:
		return "time (prep+cook) ↓"
	case SortCalAsc:
		return "calories ↑"
	case SortCalDesc:
		return "calories ↓"
	default:
		return string(k)
	}
}

// ParseSortKey converts user input into a SortKey. Empty input yields
// DefaultSort.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSort, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Criteria is the active combination of filter and sort selections.
// Empty Cuisine or Difficulty means "any". Tags holds the raw
// comma-separated text typed by the user.
type Criteria struct {
	Cuisine    string  `json:"cuisine,omitempty"`
	Difficulty string  `json:"difficulty,omitempty"`
	MinRating  float64 `json:"minRating,omitempty"`
	Tags       string  `json:"tags,omitempty"`
	Sort       SortKey `json:"sortBy,omitempty"`
}

// DefaultCriteria matches everything in the default order.
func DefaultCriteria() Criteria {
	return Criteria{Sort: DefaultSort}
}

// TagList splits the tag text on commas, trims, lowercases and drops
// empty entries.
func (c Criteria) TagList() []string {
	var out []string
	for _, t := range strings.Split(c.Tags, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// IsZero reports whether no filter is active (the sort key is ignored).
func (c Criteria) IsZero() bool {
	return c.Cuisine == "" && c.Difficulty == "" && c.MinRating <= 0 && len(c.TagList()) == 0
}
