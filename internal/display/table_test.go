package display

import (
	"strings"
	"testing"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

func samplePage() view.Page {
	seq := []domain.Recipe{
		{ID: 1, Name: "Classic Margherita Pizza", Rating: 4.6, Cuisine: "Italian", CaloriesPerServing: 300, Servings: 4, PrepTimeMinutes: 20, CookTimeMinutes: 15, Difficulty: "Easy"},
		{ID: 2, Name: "Vegetarian Stir-Fry", Rating: 4.7, Cuisine: "Asian", CaloriesPerServing: 250, Servings: 3, PrepTimeMinutes: 15, CookTimeMinutes: 20, Difficulty: "Medium"},
		{ID: 3, Name: "Chocolate Chip Cookies", Rating: 4.9, Cuisine: "American", CaloriesPerServing: 150, Servings: 24, PrepTimeMinutes: 15, CookTimeMinutes: 10, Difficulty: "Easy"},
	}
	return view.Paginate(seq, 2, 1)
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(samplePage())

	for _, want := range []string{"id", "cal/serv", "difficulty", "Classic Margherita Pizza", "Vegetarian Stir-Fry", "page 1 of 2", "1–2 of 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in table:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Chocolate Chip Cookies") {
		t.Errorf("row from page 2 leaked into page 1:\n%s", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	out := RenderTable(view.Paginate(nil, 10, 1))
	if !strings.Contains(out, "no recipes match") {
		t.Fatalf("expected empty-state line, got:\n%s", out)
	}
	if !strings.Contains(out, "0–0 of 0") {
		t.Fatalf("expected 0–0 range, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long name", 8, "too lon…"},
		{"ñandú asado", 6, "ñandú…"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestDescribeCriteria(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Criteria
		want string
	}{
		{"default", domain.DefaultCriteria(), ""},
		{"cuisine and rating", domain.Criteria{Cuisine: "Italian", MinRating: 4.5, Sort: domain.DefaultSort}, "cuisine=Italian rating≥4.5"},
		{"tags normalized", domain.Criteria{Tags: " Pizza, ,QUICK ", Sort: domain.DefaultSort}, "tags=pizza,quick"},
		{"sort only", domain.Criteria{Sort: domain.SortCalDesc}, "sort calories ↓"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeCriteria(tt.c); got != tt.want {
				t.Fatalf("DescribeCriteria() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderRecipe(t *testing.T) {
	r := domain.Recipe{
		ID: 7, Name: "Shakshuka", Rating: 4.5, Cuisine: "Tunisian",
		CaloriesPerServing: 320, Servings: 2, PrepTimeMinutes: 10, CookTimeMinutes: 25,
		Difficulty: "Easy", Tags: []string{"eggs", "brunch"},
		Ingredients:  []string{"eggs", "tomatoes"},
		Instructions: []string{"Simmer the sauce", "Crack in the eggs"},
	}
	out := RenderRecipe(r)

	for _, want := range []string{"#7 Shakshuka", "Tunisian", "320 per serving", "10 min prep, 25 min cook", "eggs, brunch", "• tomatoes", "2. Crack in the eggs"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in detail view:\n%s", want, out)
		}
	}
}

func TestRenderKpisAndFacets(t *testing.T) {
	kpis := RenderKpis(view.Kpis{Total: 3, AvgRating: 4.733, AvgMinutes: 31.7})
	if !strings.Contains(kpis, "3 recipes · avg rating 4.73 · avg time 32 min") {
		t.Fatalf("unexpected kpis %q", kpis)
	}

	facets := RenderFacets(view.Facets{Cuisines: []string{"Asian", "Italian"}})
	if !strings.Contains(facets, "Asian, Italian") || !strings.Contains(facets, "(none)") {
		t.Fatalf("unexpected facets:\n%s", facets)
	}
}
