// Package view derives the rows shown on screen from the record
// collection: filtering, sorting, pagination, summaries. Everything here
// is a pure function of its inputs.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// Evaluator filters and sorts records. String keys are compared with a
// collator for the configured locale.
type Evaluator struct {
	locale language.Tag
}

// NewEvaluator creates an evaluator for the given locale.
func NewEvaluator(locale language.Tag) *Evaluator {
	return &Evaluator{locale: locale}
}

var defaultEvaluator = NewEvaluator(language.English)

// Evaluate filters and sorts records with the default (English) collation.
func Evaluate(records []domain.Recipe, c domain.Criteria) []domain.Recipe {
	return defaultEvaluator.Evaluate(records, c)
}

// Evaluate returns the records matching every active criterion, ordered
// by c.Sort. Records equal under the comparator keep their input order.
// The input slice is not modified.
func (e *Evaluator) Evaluate(records []domain.Recipe, c domain.Criteria) []domain.Recipe {
	tags := c.TagList()

	out := make([]domain.Recipe, 0, len(records))
	for _, r := range records {
		if Matches(r, c, tags) {
			out = append(out, r)
		}
	}

	if cmp := e.comparator(c.Sort); cmp != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return cmp(out[i], out[j]) < 0
		})
	}
	return out
}

// Matches reports whether r satisfies every active criterion. tags is
// the parsed tag list (see domain.Criteria.TagList).
func Matches(r domain.Recipe, c domain.Criteria, tags []string) bool {
	if c.Cuisine != "" && r.Cuisine != c.Cuisine {
		return false
	}
	if c.Difficulty != "" && r.Difficulty != c.Difficulty {
		return false
	}
	if r.Rating < c.MinRating {
		return false
	}
	if len(tags) > 0 {
		have := make(map[string]struct{}, len(r.Tags))
		for _, t := range r.Tags {
			have[strings.ToLower(t)] = struct{}{}
		}
		for _, t := range tags {
			if _, ok := have[t]; !ok {
				return false
			}
		}
	}
	return true
}

type comparator func(a, b domain.Recipe) int

// comparator returns nil for unknown keys, which leaves the filtered
// order untouched. The collator is created per call because it keeps
// internal buffers and is not safe for concurrent use.
func (e *Evaluator) comparator(key domain.SortKey) comparator {
	if key == "" {
		key = domain.DefaultSort
	}

	switch key {
	case domain.SortNameAsc, domain.SortNameDesc:
		col := collate.New(e.locale)
		if key == domain.SortNameDesc {
			return func(a, b domain.Recipe) int { return col.CompareString(b.Name, a.Name) }
		}
		return func(a, b domain.Recipe) int { return col.CompareString(a.Name, b.Name) }
	case domain.SortRatingAsc:
		return func(a, b domain.Recipe) int { return sign(a.Rating - b.Rating) }
	case domain.SortRatingDesc:
		return func(a, b domain.Recipe) int { return sign(b.Rating - a.Rating) }
	case domain.SortTimeAsc:
		return func(a, b domain.Recipe) int { return sign(a.TotalMinutes() - b.TotalMinutes()) }
	case domain.SortTimeDesc:
		return func(a, b domain.Recipe) int { return sign(b.TotalMinutes() - a.TotalMinutes()) }
	case domain.SortCalAsc:
		return func(a, b domain.Recipe) int { return sign(a.CaloriesPerServing - b.CaloriesPerServing) }
	case domain.SortCalDesc:
		return func(a, b domain.Recipe) int { return sign(b.CaloriesPerServing - a.CaloriesPerServing) }
	default:
		return nil
	}
}

func sign(d float64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

// ParseLocale parses a BCP 47 tag such as "en" or "es-MX". Empty input
// yields English.
func ParseLocale(s string) (language.Tag, error) {
	if strings.TrimSpace(s) == "" {
		return language.English, nil
	}
	return language.Parse(s)
}
