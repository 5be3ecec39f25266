package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlstudio-labs/sqlstudio/internal/database"
	"github.com/sqlstudio-labs/sqlstudio/pkg/sandbox"
)

func newDestroyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <exercise-id>",
		Short: "Drop the workspace schema for an exercise",
		Long: `Drop the disposable workspace schema derived from an exercise id.

Workspaces are rebuilt on every query run, so destroying one only
reclaims storage; the next execution recreates it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := database.Connect(ctx, cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer func() { _ = db.Close() }()

			runner := sandbox.NewRunner(db, cfg.Database.AcquireTimeout, logger)
			if err := runner.DestroyWorkspace(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to destroy workspace: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Destroyed workspace %s\n", sandbox.DeriveNamespace(args[0]))
			return nil
		},
	}
}
