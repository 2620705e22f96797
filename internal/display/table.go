package display

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

// column is one listing column: header, width and cell formatter.
type column struct {
	title string
	width int
	right bool
	cell  func(domain.Recipe) string
}

var columns = []column{
	{"id", 5, true, func(r domain.Recipe) string { return strconv.Itoa(r.ID) }},
	{"name", 28, false, func(r domain.Recipe) string { return r.Name }},
	{"rating", 6, true, func(r domain.Recipe) string { return fmt.Sprintf("%.1f", r.Rating) }},
	{"cuisine", 14, false, func(r domain.Recipe) string { return r.Cuisine }},
	{"cal/serv", 8, true, func(r domain.Recipe) string { return formatNumber(r.CaloriesPerServing) }},
	{"serv", 4, true, func(r domain.Recipe) string { return strconv.Itoa(r.Servings) }},
	{"prep", 5, true, func(r domain.Recipe) string { return formatNumber(r.PrepTimeMinutes) }},
	{"cook", 5, true, func(r domain.Recipe) string { return formatNumber(r.CookTimeMinutes) }},
	{"difficulty", 10, false, func(r domain.Recipe) string { return r.Difficulty }},
}

// RenderTable renders one page of the listing with its pager line.
func RenderTable(p view.Page) string {
	var b strings.Builder

	heads := make([]string, len(columns))
	for i, c := range columns {
		heads[i] = cellStyle(c).Render(c.title)
	}
	b.WriteString(headingStyle.Render("  " + strings.Join(heads, " ")))
	b.WriteByte('\n')

	if len(p.Rows) == 0 {
		b.WriteString(secondaryStyle.Render("  no recipes match the current filters"))
		b.WriteByte('\n')
	}
	for _, r := range p.Rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cellStyle(c).Render(truncate(c.cell(r), c.width))
		}
		b.WriteString(primaryStyle.Render("  " + strings.Join(cells, " ")))
		b.WriteByte('\n')
	}

	b.WriteString(secondaryStyle.Render(fmt.Sprintf("  %s · %s", p.Position(), p.Summary())))
	return b.String()
}

// RenderKpis renders the headline numbers as a single line.
func RenderKpis(k view.Kpis) string {
	return infoStyle.Render(fmt.Sprintf("  %d recipes · avg rating %.2f · avg time %.0f min",
		k.Total, k.AvgRating, k.AvgMinutes))
}

// RenderFacets lists the filter options present in the collection.
func RenderFacets(f view.Facets) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("  cuisines") + "\n")
	b.WriteString(primaryStyle.Render("    "+joinOrNone(f.Cuisines)) + "\n")
	b.WriteString(headingStyle.Render("  difficulties") + "\n")
	b.WriteString(primaryStyle.Render("    " + joinOrNone(f.Difficulties)))
	return b.String()
}

// RenderRecipe renders the detail view of a single record.
func RenderRecipe(r domain.Recipe) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("  #%d %s", r.ID, r.Name)) + "\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("    %-12s", label)))
		b.WriteString(primaryStyle.Render(value))
		b.WriteByte('\n')
	}
	field("rating", fmt.Sprintf("%.1f", r.Rating))
	field("cuisine", r.Cuisine)
	field("difficulty", r.Difficulty)
	field("calories", formatNumber(r.CaloriesPerServing)+" per serving")
	field("servings", strconv.Itoa(r.Servings))
	field("time", fmt.Sprintf("%s min prep, %s min cook", formatNumber(r.PrepTimeMinutes), formatNumber(r.CookTimeMinutes)))
	field("tags", strings.Join(r.Tags, ", "))
	field("meal", strings.Join(r.MealType, ", "))

	if len(r.Ingredients) > 0 {
		b.WriteString(headingStyle.Render("  ingredients") + "\n")
		for _, in := range r.Ingredients {
			b.WriteString(primaryStyle.Render("    • "+in) + "\n")
		}
	}
	if len(r.Instructions) > 0 {
		b.WriteString(headingStyle.Render("  instructions") + "\n")
		for i, step := range r.Instructions {
			b.WriteString(primaryStyle.Render(fmt.Sprintf("    %d. %s", i+1, step)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// DescribeCriteria renders the active filters for the status bar. It is
// empty when nothing is filtered and the sort is the default.
func DescribeCriteria(c domain.Criteria) string {
	var parts []string
	if c.Cuisine != "" {
		parts = append(parts, "cuisine="+c.Cuisine)
	}
	if c.Difficulty != "" {
		parts = append(parts, "difficulty="+c.Difficulty)
	}
	if c.MinRating > 0 {
		parts = append(parts, "rating≥"+formatNumber(c.MinRating))
	}
	if tags := c.TagList(); len(tags) > 0 {
		parts = append(parts, "tags="+strings.Join(tags, ","))
	}
	if c.Sort != "" && c.Sort != domain.DefaultSort {
		parts = append(parts, "sort "+c.Sort.Label())
	}
	return strings.Join(parts, " ")
}

// HelpText is the command reference printed by "help".
const HelpText = `commands
  list                      redraw the current page
  next | prev | page N      move between pages
  filter key=value ...      cuisine, difficulty, rating, tags, sort
  clear                     drop every filter
  sort [key]                name-asc name-desc rating-asc rating-desc
                            time-asc time-desc cal-asc cal-desc
  show N                    recipe details
  add key=value ...         create a recipe (name rating cal prep cook required)
  edit N key=value ...      change fields of recipe N
  delete N                  delete recipe N (asks for confirmation)
  reload                    fetch the collection again
  stats | facets            headline numbers, filter options
  quit

keys
  pgdn | pgup               next | prev (on an empty line)
  up | down                 earlier commands`

// RenderHelp renders the command reference.
func RenderHelp() string {
	lines := strings.Split(HelpText, "\n")
	lines[0] = headingStyle.Render("  " + lines[0])
	for i := 1; i < len(lines); i++ {
		lines[i] = primaryStyle.Render(lines[i])
	}
	return strings.Join(lines, "\n")
}

func cellStyle(c column) lipgloss.Style {
	s := lipgloss.NewStyle().Width(c.width)
	if c.right {
		s = s.Align(lipgloss.Right)
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// formatNumber drops a trailing ".0" so whole values read as integers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "(none)"
	}
	return strings.Join(s, ", ")
}
