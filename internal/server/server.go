// Package server exposes the HTTP API: exercise catalog, query execution,
// authentication, progress tracking, and hints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/sqlstudio-labs/sqlstudio/internal/auth"
	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
	"github.com/sqlstudio-labs/sqlstudio/pkg/sandbox"
)

// QueryRunner executes sanitized queries against disposable workspaces.
// *sandbox.Runner implements it; tests substitute fakes.
type QueryRunner interface {
	Run(ctx context.Context, exerciseID string, specs []core.TableSpec, sqlText string) (*core.ExecutionResult, error)
	DestroyWorkspace(ctx context.Context, exerciseID string) error
}

var _ QueryRunner = (*sandbox.Runner)(nil)

// Config holds server dependencies and settings.
type Config struct {
	Port       int
	CORSOrigin string
	Store      core.Store
	Runner     QueryRunner
	Auth       *auth.Service
	Hints      core.HintGenerator // nil disables the hint endpoint
	Logger     *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	port   int
	store  core.Store
	runner QueryRunner
	auth   *auth.Service
	hints  core.HintGenerator
	logger *slog.Logger
	router chi.Router
}

// New creates a Server with its routes configured.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		port:   cfg.Port,
		store:  cfg.Store,
		runner: cfg.Runner,
		auth:   cfg.Auth,
		hints:  cfg.Hints,
		logger: logger,
	}
	s.router = s.routes(cfg.CORSOrigin)
	return s
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes(corsOrigin string) chi.Router {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Get("/{id}", s.handleGetExercise)
		})

		r.Post("/query/execute", s.handleExecuteQuery)
		r.Post("/hint", s.handleHint)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Get("/", s.handleListProgress)
			r.Post("/save", s.handleSaveProgress)
			r.Get("/{assignmentId}", s.handleGetProgress)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Delete("/workspaces/{id}", s.handleDestroyWorkspace)
		})
	})

	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
