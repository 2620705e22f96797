package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipedesk/internal/display"
	"github.com/hammamikhairi/recipedesk/internal/form"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a recipe using an interactive form",
	Long: `Create a recipe using an interactive terminal form.

The form uses keyboard navigation:
  - Tab/Shift+Tab: Move between fields
  - Enter: Submit the form (on the last field)
  - Ctrl+C: Cancel and exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := runAddForm()
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("cancelled")
				return nil
			}
			return err
		}

		d, err := wire(nil)
		if err != nil {
			return err
		}
		draft, err := form.ParseDraft(d.validate, fields)
		if err != nil {
			return err
		}

		rec, err := d.coord.Create(cmd.Context(), draft).Wait(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(display.RenderRecipe(rec))
		return nil
	},
}

// runAddForm shows the create form and returns the entered values keyed
// by field name.
func runAddForm() (map[string]string, error) {
	var (
		name       string
		rating     string
		cuisine    string
		calories   string
		servings   = strconv.Itoa(form.DefaultServings)
		prep       string
		cook       string
		difficulty = form.DefaultDifficulty
		tags       string
	)

	difficultyOptions := make([]huh.Option[string], 0, len(form.Difficulties))
	for _, d := range form.Difficulties {
		difficultyOptions = append(difficultyOptions, huh.NewOption(d, d))
	}

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Recipe name (required)").
				Placeholder("e.g., Classic Margherita Pizza").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Rating").
				Description("0 to 5").
				Placeholder("4.5").
				Value(&rating).
				Validate(numberIn(0, 5, "rating must be between 0 and 5")),

			huh.NewInput().
				Title("Cuisine").
				Description("optional").
				Placeholder("Italian").
				Value(&cuisine),

			huh.NewSelect[string]().
				Title("Difficulty").
				Options(difficultyOptions...).
				Value(&difficulty),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Calories per serving").
				Value(&calories).
				Validate(positive("calories must be greater than 0")),

			huh.NewInput().
				Title("Servings").
				Value(&servings).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return errors.New("servings must be a whole number greater than 0")
					}
					return nil
				}),

			huh.NewInput().
				Title("Prep time (minutes)").
				Value(&prep).
				Validate(numberIn(0, -1, "times must be valid non-negative numbers")),

			huh.NewInput().
				Title("Cook time (minutes)").
				Value(&cook).
				Validate(numberIn(0, -1, "times must be valid non-negative numbers")),

			huh.NewInput().
				Title("Tags").
				Description("Comma-separated (optional)").
				Placeholder("e.g., pizza, quick").
				Value(&tags),
		),
	).WithTheme(huh.ThemeDracula())

	if err := f.Run(); err != nil {
		return nil, err
	}

	return map[string]string{
		form.FieldName:       name,
		form.FieldRating:     rating,
		form.FieldCuisine:    cuisine,
		form.FieldCalories:   calories,
		form.FieldServings:   servings,
		form.FieldPrep:       prep,
		form.FieldCook:       cook,
		form.FieldDifficulty: difficulty,
		form.FieldTags:       tags,
	}, nil
}

// numberIn accepts a number in [lo, hi]; a negative hi means unbounded.
func numberIn(lo, hi float64, msg string) func(string) error {
	return func(s string) error {
		n, err := form.ParseNumber(s)
		if err != nil || n < lo || (hi >= 0 && n > hi) {
			return errors.New(msg)
		}
		return nil
	}
}

func positive(msg string) func(string) error {
	return func(s string) error {
		n, err := form.ParseNumber(s)
		if err != nil || n <= 0 {
			return errors.New(msg)
		}
		return nil
	}
}
