package core

import "time"

// Difficulty levels for exercises.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Column describes one column of a sample table using the logical type
// vocabulary (INTEGER, TEXT, REAL, ...). Logical types are mapped to
// engine types by the sandbox type mapper.
type Column struct {
	Name string `json:"columnName" yaml:"columnName"`
	Type string `json:"dataType" yaml:"dataType"`
}

// TableSpec is the declarative description of one sample table: its name,
// ordered columns, and seed rows. Row maps use exactly the declared column
// names as keys.
type TableSpec struct {
	TableName string           `json:"tableName" yaml:"tableName"`
	Columns   []Column         `json:"columns" yaml:"columns"`
	Rows      []map[string]any `json:"rows" yaml:"rows"`
}

// ExpectedOutput describes what a correct answer to an exercise looks like.
type ExpectedOutput struct {
	Type  string `json:"type" yaml:"type"` // table, single_value, column, count, row
	Value any    `json:"value" yaml:"value"`
}

// Exercise is one SQL exercise: the question, its sample tables, and the
// expected output. Exercises are authored by operators and persisted in the
// exercise store; the sandbox rebuilds a workspace from SampleTables on
// every execution request.
type Exercise struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description" yaml:"description"`
	Difficulty     string          `json:"difficulty" yaml:"difficulty"`
	Question       string          `json:"question" yaml:"question"`
	Tags           []string        `json:"tags" yaml:"tags"`
	SampleTables   []TableSpec     `json:"sampleTables" yaml:"sampleTables"`
	ExpectedOutput *ExpectedOutput `json:"expectedOutput,omitempty" yaml:"expectedOutput,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" yaml:"-"`
	UpdatedAt      time.Time       `json:"updatedAt" yaml:"-"`
}

// User is a registered learner account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Progress tracks one user's attempts at one exercise.
type Progress struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ExerciseID   string    `json:"exerciseId"`
	SQLQuery     string    `json:"sqlQuery"`
	IsCompleted  bool      `json:"isCompleted"`
	AttemptCount int       `json:"attemptCount"`
	LastAttempt  time.Time `json:"lastAttempt"`
}
