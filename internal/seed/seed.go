// Package seed ships a built-in exercise catalog and loads it into the
// exercise store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

//go:embed exercises.yaml
var exercisesYAML []byte

// Exercises parses the embedded catalog.
func Exercises() ([]core.Exercise, error) {
	var exercises []core.Exercise
	if err := yaml.Unmarshal(exercisesYAML, &exercises); err != nil {
		return nil, fmt.Errorf("parse exercise catalog: %w", err)
	}
	return exercises, nil
}

// Apply inserts the embedded catalog into the store and returns the created
// exercises. Existing exercises are left in place; duplicates are not
// detected.
func Apply(ctx context.Context, st core.Store, logger *slog.Logger) ([]*core.Exercise, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	exercises, err := Exercises()
	if err != nil {
		return nil, err
	}

	created := make([]*core.Exercise, 0, len(exercises))
	for i := range exercises {
		ex, err := st.CreateExercise(ctx, &exercises[i])
		if err != nil {
			return created, fmt.Errorf("seed exercise %q: %w", exercises[i].Title, err)
		}
		logger.Info("seeded exercise",
			slog.String("id", ex.ID),
			slog.String("difficulty", ex.Difficulty),
			slog.String("title", ex.Title))
		created = append(created, ex)
	}
	return created, nil
}
