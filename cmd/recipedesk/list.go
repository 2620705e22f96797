package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipedesk/internal/display"
	"github.com/hammamikhairi/recipedesk/internal/view"
)

var (
	listFilters filterFlags
	listPage    int
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of the listing and exit",
	Example: `  recipedesk list --cuisine Italian --sort rating-desc
  recipedesk list --tags quick,vegetarian --page 2 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := listFilters.criteria()
		if err != nil {
			return err
		}
		d, err := wire(nil)
		if err != nil {
			return err
		}
		if _, err := d.coord.Load(cmd.Context()); err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}

		state := view.NewState().WithCriteria(c)
		state.Page = listPage
		res := d.pipeline.Render(d.store, state)

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Println(display.RenderKpis(res.Kpis))
		fmt.Println(display.RenderTable(res.Page))
		return nil
	},
}

func init() {
	listFilters.register(listCmd)
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the page as JSON")
}
