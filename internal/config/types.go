// Package config loads application configuration from file, environment
// variables, and CLI flags.
package config

import (
	"fmt"
	"time"

	"github.com/sqlstudio-labs/sqlstudio/internal/database"
	"github.com/sqlstudio-labs/sqlstudio/internal/hint"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port       int    `koanf:"port"`
	CORSOrigin string `koanf:"cors_origin"`
}

// StoreConfig holds exercise store settings.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig holds token issuing settings.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

// Config is the root application configuration.
type Config struct {
	LogLevel string          `koanf:"log_level"`
	Server   ServerConfig    `koanf:"server"`
	Database database.Config `koanf:"database"`
	Store    StoreConfig     `koanf:"store"`
	Auth     AuthConfig      `koanf:"auth"`
	Hint     hint.Config     `koanf:"hint"`
}

// Default configuration values.
const (
	DefaultPort       = 8080
	DefaultCORSOrigin = "http://localhost:5173"
	DefaultStorePath  = "sqlstudio.db"
	DefaultTokenTTL   = 7 * 24 * time.Hour
	DefaultLogLevel   = "info"
)

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = DefaultCORSOrigin
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	c.Database.ApplyDefaults()
}

// Validate checks that the configuration can run the server.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}
