package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstudio-labs/sqlstudio/internal/store"
	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

func TestExercises(t *testing.T) {
	exercises, err := Exercises()
	require.NoError(t, err)
	require.Len(t, exercises, 6)

	first := exercises[0]
	assert.Equal(t, "Basic SELECT Query", first.Title)
	assert.Equal(t, core.DifficultyEasy, first.Difficulty)
	require.Len(t, first.SampleTables, 1)
	assert.Equal(t, "employees", first.SampleTables[0].TableName)
	assert.Len(t, first.SampleTables[0].Columns, 5)
	assert.Len(t, first.SampleTables[0].Rows, 5)
	assert.Equal(t, "Alice Johnson", first.SampleTables[0].Rows[0]["name"])

	// The join exercise carries three tables and four expected rows.
	join := exercises[3]
	assert.Equal(t, "JOIN - Combining Two Tables", join.Title)
	require.Len(t, join.SampleTables, 3)
	require.NotNil(t, join.ExpectedOutput)
	rows, ok := join.ExpectedOutput.Value.([]any)
	require.True(t, ok)
	assert.Len(t, rows, 4)
}

func TestExercisesHaveValidDifficulty(t *testing.T) {
	exercises, err := Exercises()
	require.NoError(t, err)

	valid := map[string]bool{
		core.DifficultyEasy:   true,
		core.DifficultyMedium: true,
		core.DifficultyHard:   true,
	}
	for _, ex := range exercises {
		assert.True(t, valid[ex.Difficulty], "exercise %q has difficulty %q", ex.Title, ex.Difficulty)
		assert.NotEmpty(t, ex.Question, "exercise %q has no question", ex.Title)
		assert.NotEmpty(t, ex.SampleTables, "exercise %q has no tables", ex.Title)
	}
}

func TestApply(t *testing.T) {
	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	created, err := Apply(ctx, st, nil)
	require.NoError(t, err)
	require.Len(t, created, 6)

	for _, ex := range created {
		assert.NotEmpty(t, ex.ID)
	}

	listed, err := st.ListExercises(ctx, core.ExerciseFilter{})
	require.NoError(t, err)
	assert.Len(t, listed, 6)
}
