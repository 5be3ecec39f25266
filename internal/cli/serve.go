package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sqlstudio-labs/sqlstudio/internal/auth"
	"github.com/sqlstudio-labs/sqlstudio/internal/database"
	"github.com/sqlstudio-labs/sqlstudio/internal/hint"
	"github.com/sqlstudio-labs/sqlstudio/internal/server"
	"github.com/sqlstudio-labs/sqlstudio/internal/store"
	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
	"github.com/sqlstudio-labs/sqlstudio/pkg/sandbox"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the SQLStudio API server",
		Long: `Start the HTTP API server.

Serves the exercise catalog, executes sanitized queries in disposable
PostgreSQL workspaces, and tracks per-user progress. Runs until
interrupted.`,
		Example: `  # Start with defaults (sqlstudio.yaml in the working directory)
  sqlstudio serve

  # Start on a custom port
  sqlstudio serve --port 9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open exercise store: %w", err)
	}
	defer func() { _ = st.Close() }()

	db, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() { _ = db.Close() }()

	authSvc, err := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	var hints core.HintGenerator
	if cfg.Hint.Enabled() {
		hints = hint.NewClient(cfg.Hint, logger)
	} else {
		logger.Warn("hint generation disabled: no API key configured")
	}

	runner := sandbox.NewRunner(db, cfg.Database.AcquireTimeout, logger)

	srv := server.New(server.Config{
		Port:       cfg.Server.Port,
		CORSOrigin: cfg.Server.CORSOrigin,
		Store:      st,
		Runner:     runner,
		Auth:       authSvc,
		Hints:      hints,
		Logger:     logger,
	})

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
