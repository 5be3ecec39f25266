package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// CreateUser persists a new user account.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*core.User, error) {
	user := &core.User{
		ID:           generateID(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	s.logger.Debug("creating user", slog.String("id", user.ID), slog.String("username", username))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

// GetUserByUsernameOrEmail checks for an existing account under either handle.
func (s *SQLiteStore) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*core.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ? OR email = ?`,
		username, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, args ...any) (*core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
