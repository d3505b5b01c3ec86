package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/phonebook/internal/seed"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

func newSeedCmd(a *app) *cobra.Command {
	var workers int
	var seedValue uint64

	cmd := &cobra.Command{
		Use:   "seed <count>",
		Short: "Fill the directory with generated entries",
		Long: fmt.Sprintf(`Seed generates count random entries (0 to %d) and inserts them.
Parent values that already exist are reused.`, seed.MaxCount),
		Example: `  phonebook seed 1000
  phonebook seed 50 --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: count %q", errUsage, args[0])
			}
			if workers == 0 {
				workers = a.settings.Seed.Workers
			}

			start := time.Now()
			gen := seed.NewGenerator(seed.Options{Workers: workers, Seed: seedValue})
			entries, err := gen.Generate(cmd.Context(), count)
			if err != nil {
				return err
			}

			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			records := make([]types.Record, len(entries))
			for i, e := range entries {
				records[i] = e.Record()
			}
			n, err := seed.Populate(cmd.Context(), s.backend, records, a.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d entries in %s\n", n, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "generator workers (default: seed.workers or GOMAXPROCS)")
	cmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed for reproducible output (default: random)")
	return cmd
}
