package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/grid"
	"github.com/mesh-intelligence/phonebook/internal/tui"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse and edit the directory interactively",
		Long: `Browse opens a terminal grid over every table.

Keys: tab/shift+tab switch table, up/down move, left/right choose column,
/ filter, n create, e edit, d delete, D duplicate, r resync, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			grids := make([]*grid.Grid, 0, len(s.backend.Catalog().Names()))
			for _, name := range s.backend.Catalog().Names() {
				g, err := s.grid(cmd.Context(), name)
				if err != nil {
					return err
				}
				grids = append(grids, g)
			}
			return tui.Run(cmd.Context(), grids, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
