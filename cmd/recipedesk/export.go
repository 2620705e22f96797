package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/recipedesk/internal/domain"
)

// exportPageSize is how many records each export request asks for.
const exportPageSize = 50

var (
	exportFilters filterFlags
	exportFormat  string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the whole collection (filtered and sorted) as json or yaml",
	Example: `  recipedesk export --format yaml --out recipes.yaml
  recipedesk export --cuisine Italian --sort cal-asc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := exportFilters.criteria()
		if err != nil {
			return err
		}
		d, err := wire(nil)
		if err != nil {
			return err
		}

		records, err := d.gw.FetchAll(cmd.Context(), exportPageSize)
		if err != nil {
			return fmt.Errorf("fetch recipes: %w", err)
		}
		seq := d.eval.Evaluate(records, c)
		log.Info("exporting %d of %d records as %s", len(seq), len(records), exportFormat)

		var w io.Writer = os.Stdout
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return writeExport(w, seq, exportFormat)
	},
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format (json|yaml)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

// writeExport encodes records in the given format.
func writeExport(w io.Writer, records []domain.Recipe, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
