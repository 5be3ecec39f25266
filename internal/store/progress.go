package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

const progressColumns = `id, user_id, exercise_id, sql_query, is_completed, attempt_count, last_attempt`

// SaveProgress upserts a user's progress on an exercise and increments the
// attempt counter. completed is only applied when non-nil so a plain save
// never clears a completion flag.
func (s *SQLiteStore) SaveProgress(ctx context.Context, userID, exerciseID, sqlQuery string, completed *bool) (*core.Progress, error) {
	now := time.Now().UTC()
	isCompleted := false
	if completed != nil {
		isCompleted = *completed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (id, user_id, exercise_id, sql_query, is_completed, attempt_count, last_attempt)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			sql_query = excluded.sql_query,
			is_completed = CASE WHEN ? THEN excluded.is_completed ELSE progress.is_completed END,
			attempt_count = progress.attempt_count + 1,
			last_attempt = excluded.last_attempt`,
		generateID(), userID, exerciseID, sqlQuery, isCompleted, now, completed != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	return s.GetProgress(ctx, userID, exerciseID)
}

// GetProgress retrieves one user's progress on one exercise. Returns
// nil, nil when no attempt has been recorded.
func (s *SQLiteStore) GetProgress(ctx context.Context, userID, exerciseID string) (*core.Progress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM progress WHERE user_id = ? AND exercise_id = ?`,
		userID, exerciseID)

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return p, nil
}

// ListProgress returns all progress records for a user, most recent first.
func (s *SQLiteStore) ListProgress(ctx context.Context, userID string) ([]*core.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM progress WHERE user_id = ? ORDER BY last_attempt DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress: %w", err)
	}
	return out, nil
}

func scanProgress(sc scanner) (*core.Progress, error) {
	var p core.Progress
	err := sc.Scan(&p.ID, &p.UserID, &p.ExerciseID, &p.SQLQuery,
		&p.IsCompleted, &p.AttemptCount, &p.LastAttempt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
