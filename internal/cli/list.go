package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/grid"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newListCmd(a *app) *cobra.Command {
	var filter, format string

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List the rows of a table",
		Long: `List prints every row of a table. Parent columns show the referenced
value and phone numbers are formatted.

The filter is a case-insensitive substring matched against the displayed
cells.`,
		Example: `  phonebook list entries
  phonebook list entries --filter lenina
  phonebook list names --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("%w: unknown format %q", errUsage, format)
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			g, err := s.grid(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g.SetFilter(filter)

			if format == formatJSON {
				return renderJSON(cmd.OutOrStdout(), g)
			}
			renderTable(cmd.OutOrStdout(), g)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "show only rows containing this text")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table or json")
	return cmd
}

// renderTable writes the visible rows as a box-drawn table.
func renderTable(w io.Writer, g *grid.Grid) {
	visible := g.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	columns := g.Columns()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = c.Title
	}
	t.AppendHeader(header)

	for _, r := range visible {
		row := make(table.Row, len(columns))
		for c := range columns {
			row[c] = g.CellText(r, c)
		}
		t.AppendRow(row)
	}

	t.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(visible))
}

// renderJSON writes the visible rows as a JSON array of records.
func renderJSON(w io.Writer, g *grid.Grid) error {
	records := []types.Record{}
	for _, i := range g.Visible() {
		records = append(records, g.Row(i))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
