package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize phonebook storage",
		Long:  "Create the configuration file and data directory, then apply the schema migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			version, err := s.backend.SchemaVersion(cmd.Context())
			if cerr := s.close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Phonebook initialized (%s, schema version %d)\n", a.config.Backend, version)
			fmt.Fprintf(out, "config: %s\n", a.configDir)
			if a.config.Backend == types.BackendSQLite {
				fmt.Fprintf(out, "data:   %s\n", a.config.DataDir)
			}
			return nil
		},
	}
}
