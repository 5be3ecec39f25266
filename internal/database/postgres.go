// Package database constructs the shared PostgreSQL connection pool used
// by the sandbox. The pool is an explicitly lifetime-scoped handle passed
// to component constructors, never a module-level singleton.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	SSLMode  string `koanf:"sslmode"`

	// MaxConns bounds the shared pool; pool acquisition is the sole
	// blocking point of a request.
	MaxConns int `koanf:"max_conns"`

	// AcquireTimeout is how long a request waits for a connection before
	// failing as pool exhaustion.
	AcquireTimeout time.Duration `koanf:"acquire_timeout"`
}

// ApplyDefaults fills unset fields with sensible local defaults.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.User == "" {
		c.User = "postgres"
	}
	if c.Database == "" {
		c.Database = "sqlstudio"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.AcquireTimeout == 0 {
		c.AcquireTimeout = 5 * time.Second
	}
}

// Validate checks the connection settings.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("postgres database name is required")
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("postgres max_conns must be at least 1, got %d", c.MaxConns)
	}
	return nil
}

// Connect opens a bounded connection pool to PostgreSQL and verifies it
// with a ping. The configured role should carry no write privileges on
// shared schemas: the sandbox admission filter is pattern-based, and the
// role is the second line of defense.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := buildDSN(cfg)
	logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg Config) string {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}
