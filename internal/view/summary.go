package view

import (
	"sort"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// Kpis are the headline numbers shown above the listing.
type Kpis struct {
	Total      int     `json:"total"`
	AvgRating  float64 `json:"avgRating"`
	AvgMinutes float64 `json:"avgMinutes"`
}

// Summarize computes KPIs over seq. Averages are 0 for an empty sequence.
func Summarize(seq []domain.Recipe) Kpis {
	k := Kpis{Total: len(seq)}
	if len(seq) == 0 {
		return k
	}
	var rating, minutes float64
	for _, r := range seq {
		rating += r.Rating
		minutes += r.TotalMinutes()
	}
	k.AvgRating = rating / float64(len(seq))
	k.AvgMinutes = minutes / float64(len(seq))
	return k
}

// Facets are the option lists offered by the filter bar.
type Facets struct {
	Cuisines     []string `json:"cuisines"`
	Difficulties []string `json:"difficulties"`
}

// FacetsOf collects the distinct non-empty cuisines and difficulties,
// sorted.
func FacetsOf(records []domain.Recipe) Facets {
	return Facets{
		Cuisines:     distinct(records, func(r domain.Recipe) string { return r.Cuisine }),
		Difficulties: distinct(records, func(r domain.Recipe) string { return r.Difficulty }),
	}
}

func distinct(records []domain.Recipe, key func(domain.Recipe) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		v := key(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
