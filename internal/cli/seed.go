package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlstudio-labs/sqlstudio/internal/seed"
	"github.com/sqlstudio-labs/sqlstudio/internal/store"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in exercise catalog into the store",
		Long: `Load the built-in exercise catalog into the exercise store.

Exercises cover SELECT basics, WHERE filters, aggregates, joins,
subqueries, and window functions. Running seed twice inserts the
catalog twice.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(cfg.Store.Path, logger)
			if err != nil {
				return fmt.Errorf("failed to open exercise store: %w", err)
			}
			defer func() { _ = st.Close() }()

			created, err := seed.Apply(cmd.Context(), st, logger)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d exercises\n", len(created))
			for i, ex := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. [%s] %s (ID: %s)\n", i+1, ex.Difficulty, ex.Title, ex.ID)
			}
			return nil
		},
	}
}
