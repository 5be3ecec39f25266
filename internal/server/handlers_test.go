package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstudio-labs/sqlstudio/internal/auth"
	"github.com/sqlstudio-labs/sqlstudio/internal/store"
	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

type fakeRunner struct {
	result    *core.ExecutionResult
	err       error
	destroyed []string
	lastSQL   string
}

func (f *fakeRunner) Run(ctx context.Context, exerciseID string, specs []core.TableSpec, sqlText string) (*core.ExecutionResult, error) {
	f.lastSQL = sqlText
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRunner) DestroyWorkspace(ctx context.Context, exerciseID string) error {
	f.destroyed = append(f.destroyed, exerciseID)
	return f.err
}

type fakeHints struct {
	hint string
	err  error
}

func (f *fakeHints) GenerateHint(ctx context.Context, question, userSQL string, tables []core.TableSpec) (string, error) {
	return f.hint, f.err
}

type testEnv struct {
	server *Server
	store  *store.SQLiteStore
	runner *fakeRunner
	hints  *fakeHints
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	authSvc, err := auth.New("test-secret", time.Hour)
	require.NoError(t, err)

	runner := &fakeRunner{}
	hints := &fakeHints{hint: "Think about WHERE."}

	srv := New(Config{
		Port:       0,
		CORSOrigin: "http://localhost:5173",
		Store:      st,
		Runner:     runner,
		Auth:       authSvc,
		Hints:      hints,
	})

	return &testEnv{server: srv, store: st, runner: runner, hints: hints}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *testEnv) createExercise(t *testing.T) *core.Exercise {
	t.Helper()
	ex, err := e.store.CreateExercise(context.Background(), &core.Exercise{
		Title:      "Basic SELECT",
		Difficulty: core.DifficultyEasy,
		Question:   "Select everything.",
		SampleTables: []core.TableSpec{{
			TableName: "employees",
			Columns:   []core.Column{{Name: "id", Type: "INTEGER"}},
			Rows:      []map[string]any{{"id": float64(1)}},
		}},
	})
	require.NoError(t, err)
	return ex
}

func (e *testEnv) registerUser(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "learner",
		"email":    "learner@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestListExercises(t *testing.T) {
	env := newTestEnv(t)
	env.createExercise(t)

	rec := env.do(t, http.MethodGet, "/api/assignments", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 1)
}

func TestGetExerciseNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/assignments/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Assignment not found", decodeBody(t, rec)["message"])
}

func TestExecuteQuery(t *testing.T) {
	env := newTestEnv(t)
	ex := env.createExercise(t)
	env.runner.result = &core.ExecutionResult{
		Columns:  []string{"id"},
		Rows:     []map[string]any{{"id": 1}},
		RowCount: 1,
	}

	rec := env.do(t, http.MethodPost, "/api/query/execute", "", map[string]string{
		"assignmentId": ex.ID,
		"sql":          "SELECT * FROM employees",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["rowCount"])
	assert.Equal(t, "SELECT * FROM employees", env.runner.lastSQL)
}

func TestExecuteQueryMissingAssignment(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/query/execute", "", map[string]string{"sql": "SELECT 1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/query/execute", "", map[string]string{
		"assignmentId": "missing", "sql": "SELECT 1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecuteQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation rejection",
			err:        core.ErrValidation("blocked operation", "blocked keyword: DROP"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "engine rejection",
			err:        &core.QueryError{Message: `relation "emp" does not exist`, Hint: "check the table name", Code: "42P01"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "provisioning failure",
			err:        core.ErrProvisioning(nil, "create table failed"),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "pool exhausted",
			err:        &core.PoolExhaustionError{Timeout: 5 * time.Second},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ex := env.createExercise(t)
			env.runner.err = tt.err

			rec := env.do(t, http.MethodPost, "/api/query/execute", "", map[string]string{
				"assignmentId": ex.ID,
				"sql":          "SELECT 1",
			})

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestExecuteQueryEngineErrorCarriesHint(t *testing.T) {
	env := newTestEnv(t)
	ex := env.createExercise(t)
	env.runner.err = &core.QueryError{
		Message: `relation "emp" does not exist`,
		Detail:  "searched in workspace schema",
		Hint:    "check the table name",
	}

	rec := env.do(t, http.MethodPost, "/api/query/execute", "", map[string]string{
		"assignmentId": ex.ID,
		"sql":          "SELECT * FROM emp",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, `relation "emp" does not exist`, body["message"])
	assert.Equal(t, "searched in workspace schema", body["detail"])
	assert.Equal(t, "check the table name", body["hint"])
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t)

	// Duplicate registration is rejected.
	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "learner", "email": "learner@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "learner@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "learner", user["username"])
	assert.NotContains(t, user, "passwordHash")

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "learner@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "x", "email": "x@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "x", "email": "x@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/progress", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/progress", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProgressSaveAndList(t *testing.T) {
	env := newTestEnv(t)
	ex := env.createExercise(t)
	token := env.registerUser(t)

	completed := true
	rec := env.do(t, http.MethodPost, "/api/progress/save", token, map[string]any{
		"assignmentId": ex.ID,
		"sqlQuery":     "SELECT * FROM employees",
		"isCompleted":  completed,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["attemptCount"])
	assert.Equal(t, true, data["isCompleted"])

	rec = env.do(t, http.MethodGet, "/api/progress/"+ex.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "SELECT * FROM employees", data["sqlQuery"])

	rec = env.do(t, http.MethodGet, "/api/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], 1)
}

func TestHint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/hint", "", map[string]any{
		"question": "Filter engineers",
		"userSql":  "SELECT * FROM employees",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Think about WHERE.", decodeBody(t, rec)["hint"])
}

func TestHintRequiresQuestion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/hint", "", map[string]any{"userSql": "SELECT 1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHintNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.server.hints = nil

	rec := env.do(t, http.MethodPost, "/api/hint", "", map[string]any{"question": "q"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDestroyWorkspace(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser(t)

	rec := env.do(t, http.MethodDelete, "/api/admin/workspaces/abc123", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/workspaces/abc123", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc123"}, env.runner.destroyed)
}
