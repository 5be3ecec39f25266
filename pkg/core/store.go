package core

import "context"

// ExerciseFilter narrows an exercise listing.
type ExerciseFilter struct {
	Difficulty string // empty or "all" means no filter
	Search     string // matches title or description, case-insensitive
}

// Store is the persistence interface for exercises, users, and progress.
// The sandbox never persists exercise definitions itself; it consumes them
// through this interface.
type Store interface {
	// ListExercises returns exercises matching the filter, newest first.
	ListExercises(ctx context.Context, f ExerciseFilter) ([]*Exercise, error)

	// GetExercise retrieves a single exercise by id.
	GetExercise(ctx context.Context, id string) (*Exercise, error)

	// CreateExercise persists a new exercise and returns it with its id set.
	CreateExercise(ctx context.Context, ex *Exercise) (*Exercise, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByUsernameOrEmail checks for an existing account under either handle.
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// SaveProgress upserts a user's progress on an exercise and increments
	// the attempt counter.
	SaveProgress(ctx context.Context, userID, exerciseID, sqlQuery string, completed *bool) (*Progress, error)

	// GetProgress retrieves one user's progress on one exercise.
	// Returns nil, nil when no attempt has been recorded.
	GetProgress(ctx context.Context, userID, exerciseID string) (*Progress, error)

	// ListProgress returns all progress records for a user.
	ListProgress(ctx context.Context, userID string) ([]*Progress, error)

	// Close releases the underlying database handle.
	Close() error
}

// HintGenerator produces a tutoring hint for an exercise attempt.
// Implementations must guide without revealing the full answer.
type HintGenerator interface {
	GenerateHint(ctx context.Context, question, userSQL string, tables []TableSpec) (string, error)
}
