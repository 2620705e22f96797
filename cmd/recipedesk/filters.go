package main

import (
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// filterFlags are the criteria flags shared by list and export.
type filterFlags struct {
	cuisine    string
	difficulty string
	minRating  float64
	tags       string
	sort       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.cuisine, "cuisine", "", "only this cuisine")
	fl.StringVar(&f.difficulty, "difficulty", "", "only this difficulty")
	fl.Float64Var(&f.minRating, "min-rating", 0, "minimum rating")
	fl.StringVar(&f.tags, "tags", "", "comma-separated tags; a recipe must carry every one")
	fl.StringVar(&f.sort, "sort", "", "sort key (name-asc, rating-desc, time-asc, cal-desc, ...)")
}

func (f *filterFlags) criteria() (domain.Criteria, error) {
	key, err := domain.ParseSortKey(f.sort)
	if err != nil {
		return domain.Criteria{}, err
	}
	return domain.Criteria{
		Cuisine:    f.cuisine,
		Difficulty: f.difficulty,
		MinRating:  f.minRating,
		Tags:       f.tags,
		Sort:       key,
	}, nil
}
