package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const exerciseColumns = `id, title, description, difficulty, question, tags, table_specs, expected_output, created_at, updated_at`

// ListExercises returns exercises matching the filter, newest first.
func (s *SQLiteStore) ListExercises(ctx context.Context, f core.ExerciseFilter) ([]*core.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises`
	var conds []string
	var args []any

	if f.Difficulty != "" && !strings.EqualFold(f.Difficulty, "all") {
		conds = append(conds, "difficulty = ? COLLATE NOCASE")
		args = append(args, f.Difficulty)
	}
	if f.Search != "" {
		conds = append(conds, "(title LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*core.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exercises: %w", err)
	}
	return out, nil
}

// GetExercise retrieves a single exercise by id.
func (s *SQLiteStore) GetExercise(ctx context.Context, id string) (*core.Exercise, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id)

	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// CreateExercise persists a new exercise and returns it with id and
// timestamps set.
func (s *SQLiteStore) CreateExercise(ctx context.Context, ex *core.Exercise) (*core.Exercise, error) {
	if ex.ID == "" {
		ex.ID = generateID()
	}
	now := time.Now().UTC()
	ex.CreatedAt = now
	ex.UpdatedAt = now

	tags, err := json.Marshal(ex.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	specs, err := json.Marshal(ex.SampleTables)
	if err != nil {
		return nil, fmt.Errorf("failed to encode table specs: %w", err)
	}
	var expected []byte
	if ex.ExpectedOutput != nil {
		if expected, err = json.Marshal(ex.ExpectedOutput); err != nil {
			return nil, fmt.Errorf("failed to encode expected output: %w", err)
		}
	}

	s.logger.Debug("creating exercise", slog.String("id", ex.ID), slog.String("title", ex.Title))

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exercises (`+exerciseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Title, ex.Description, ex.Difficulty, ex.Question,
		string(tags), string(specs), nullableString(expected), ex.CreatedAt, ex.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}
	return ex, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(sc scanner) (*core.Exercise, error) {
	var ex core.Exercise
	var tags, specs string
	var expected sql.NullString

	err := sc.Scan(&ex.ID, &ex.Title, &ex.Description, &ex.Difficulty, &ex.Question,
		&tags, &specs, &expected, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &ex.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags for exercise %s: %w", ex.ID, err)
	}
	if err := json.Unmarshal([]byte(specs), &ex.SampleTables); err != nil {
		return nil, fmt.Errorf("failed to decode table specs for exercise %s: %w", ex.ID, err)
	}
	if expected.Valid && expected.String != "" {
		ex.ExpectedOutput = &core.ExpectedOutput{}
		if err := json.Unmarshal([]byte(expected.String), ex.ExpectedOutput); err != nil {
			return nil, fmt.Errorf("failed to decode expected output for exercise %s: %w", ex.ID, err)
		}
	}
	return &ex, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
