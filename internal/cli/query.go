package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlstudio-labs/sqlstudio/internal/database"
	"github.com/sqlstudio-labs/sqlstudio/internal/store"
	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
	"github.com/sqlstudio-labs/sqlstudio/pkg/sandbox"
)

// queryOptions holds options for the query command.
type queryOptions struct {
	ExerciseID string
	Format     string
	Input      string
}

func newQueryCommand() *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a query in an exercise workspace",
		Long: `Run a sanitized query inside an exercise's disposable workspace.

The exercise's sample tables are provisioned into an isolated schema,
the statement goes through the same read-only admission filter as the
API, and results render to the terminal.

When invoked without SQL, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  sqlstudio query --exercise 665f1c2a "SELECT * FROM employees"

  # Read SQL from a file
  sqlstudio query --exercise 665f1c2a --input solution.sql

  # Output as JSON
  sqlstudio query --exercise 665f1c2a "SELECT 1" --format json

  # Interactive mode
  sqlstudio query --exercise 665f1c2a`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ExerciseID, "exercise", "e", "", "Exercise id whose workspace to run in (required)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	_ = cmd.MarkFlagRequired("exercise")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *queryOptions) error {
	ctx := cmd.Context()

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open exercise store: %w", err)
	}
	defer func() { _ = st.Close() }()

	ex, err := st.GetExercise(ctx, opts.ExerciseID)
	if err != nil {
		return fmt.Errorf("failed to load exercise %s: %w", opts.ExerciseID, err)
	}

	db, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	runner := sandbox.NewRunner(db, cfg.Database.AcquireTimeout, logger)

	// Determine SQL source
	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runQueryREPL(cmd, runner, ex, opts)
	}

	result, err := runner.Run(ctx, ex.ID, ex.SampleTables, sqlQuery)
	if err != nil {
		return err
	}
	return renderResult(cmd.OutOrStdout(), result, opts.Format)
}

func executeAndRender(cmd *cobra.Command, runner *sandbox.Runner, ex *core.Exercise, query, format string) error {
	result, err := runner.Run(cmd.Context(), ex.ID, ex.SampleTables, query)
	if err != nil {
		return err
	}
	return renderResult(cmd.OutOrStdout(), result, format)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
