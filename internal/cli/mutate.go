package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/grid"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> [col=value...]",
		Short: "Create a row from the table defaults",
		Long: `Create inserts one row. Columns not given take the table defaults: the
first row of every parent table for entries, and "Value" for parent tables.
Parent columns accept the referenced value or its id.`,
		Example: `  phonebook create names name=Ivan
  phonebook create entries name_id=Ivan building=12 apartment=5 phone=79991234567`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(args[1:])
			if err != nil {
				return err
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
			row, err := g.Insert(cmd.Context(), values)
			if err != nil {
				return err
			}

			id, _ := row.Int64(g.Def().Schema.PrimaryKey)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s/%d\n", args[0], id)
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "update <table> <id> <col>=<value>...",
		Short:   "Change cells of one row",
		Example: `  phonebook update entries 3 apartment=12 street_id=Lenina`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:2])
			if err != nil {
				return err
			}
			values, err := parseAssignments(args[2:])
			if err != nil {
				return err
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

			columns := make([]string, 0, len(values))
			for col := range values {
				columns = append(columns, col)
			}
			slices.Sort(columns)

			for _, col := range columns {
				row := g.Find(ids[0])
				if row < 0 {
					return fmt.Errorf("%s/%d: %w", args[0], ids[0], types.ErrNotFound)
				}
				c := g.ColumnIndex(col)
				if c < 0 {
					return fmt.Errorf("%w: %s has no column %s", types.ErrUnknownColumn, args[0], col)
				}
				if err := g.Edit(cmd.Context(), grid.Cell{Row: row, Col: c}, values[col]); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s/%d\n", args[0], ids[0])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>...",
		Short: "Delete rows by id",
		Long:  "Delete removes the given rows. Ids with no row are ignored.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
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
			rows := rowIndexes(g, ids)
			if err := g.Delete(cmd.Context(), rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", grid.ActionLabel(types.ActionDelete, len(rows)), len(rows))
			return nil
		},
	}
}

func newDuplicateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>...",
		Short: "Copy entries under new ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			g, err := s.grid(cmd.Context(), types.TableEntries)
			if err != nil {
				return err
			}
			rows := rowIndexes(g, ids)
			if len(rows) == 0 {
				return fmt.Errorf("entries %v: %w", ids, types.ErrNotFound)
			}
			copies, err := g.Duplicate(cmd.Context(), rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d\n", grid.ActionLabel(types.ActionDuplicate, len(copies)), len(copies))
			for _, c := range copies {
				fmt.Fprintf(out, "Created %s/%s\n", types.TableEntries, c.Text(g.Def().Schema.PrimaryKey))
			}
			return nil
		},
	}
}
