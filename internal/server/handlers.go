package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sqlstudio-labs/sqlstudio/internal/auth"
	"github.com/sqlstudio-labs/sqlstudio/internal/store"
	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeQueryError maps sandbox error kinds to HTTP responses. Engine
// rejections carry detail and hint verbatim so the client can self-correct;
// provisioning failures surface as a generic message.
func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	var (
		validationErr   *core.ValidationError
		queryErr        *core.QueryError
		provisioningErr *core.ProvisioningError
		exhaustionErr   *core.PoolExhaustionError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &queryErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": queryErr.Message,
			"detail":  nullableStr(queryErr.Detail),
			"hint":    nullableStr(queryErr.Hint),
		})
	case errors.As(err, &provisioningErr):
		s.logger.Error("workspace provisioning failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to prepare workspace")
	case errors.As(err, &exhaustionErr):
		writeError(w, http.StatusServiceUnavailable, exhaustionErr.Error())
	default:
		s.logger.Error("query execution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query execution failed")
	}
}

func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "SQLStudio API running"})
}

// --- Exercises ---

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	f := core.ExerciseFilter{
		Difficulty: r.URL.Query().Get("difficulty"),
		Search:     r.URL.Query().Get("search"),
	}
	if f.Difficulty == "all" {
		f.Difficulty = ""
	}

	exercises, err := s.store.ListExercises(r.Context(), f)
	if err != nil {
		s.logger.Error("list exercises failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	writeData(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.store.GetExercise(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Assignment not found")
			return
		}
		s.logger.Error("get exercise failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignment")
		return
	}
	writeData(w, http.StatusOK, ex)
}

// --- Query execution ---

type executeRequest struct {
	AssignmentID string `json:"assignmentId"`
	SQL          string `json:"sql"`
}

func (s *Server) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.AssignmentID == "" {
		writeError(w, http.StatusBadRequest, "assignmentId is required")
		return
	}

	ex, err := s.store.GetExercise(r.Context(), req.AssignmentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Assignment not found")
			return
		}
		s.logger.Error("get exercise failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load assignment")
		return
	}

	result, err := s.runner.Run(r.Context(), ex.ID, ex.SampleTables, req.SQL)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// --- Hints ---

type hintRequest struct {
	Question     string           `json:"question"`
	UserSQL      string           `json:"userSql"`
	SampleTables []core.TableSpec `json:"sampleTables"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	if s.hints == nil {
		writeError(w, http.StatusServiceUnavailable, "hint generation is not configured")
		return
	}

	var req hintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	hint, err := s.hints.GenerateHint(r.Context(), req.Question, req.UserSQL, req.SampleTables)
	if err != nil {
		s.logger.Error("hint generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate hint. Please try again later.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "hint": hint})
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) authResponse(w http.ResponseWriter, status int, user *core.User) {
	token, err := s.auth.IssueToken(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, status, map[string]any{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	if existing, err := s.store.GetUserByUsernameOrEmail(r.Context(), req.Username, req.Email); err == nil && existing != nil {
		writeError(w, http.StatusConflict, "Username or email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hash failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		s.logger.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.authResponse(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.authResponse(w, http.StatusOK, user)
}

// --- Progress ---

type saveProgressRequest struct {
	AssignmentID string `json:"assignmentId"`
	SQLQuery     string `json:"sqlQuery"`
	IsCompleted  *bool  `json:"isCompleted"`
}

func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req saveProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.AssignmentID == "" {
		writeError(w, http.StatusBadRequest, "assignmentId is required")
		return
	}

	progress, err := s.store.SaveProgress(r.Context(), claims.UserID, req.AssignmentID, req.SQLQuery, req.IsCompleted)
	if err != nil {
		s.logger.Error("save progress failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}
	writeData(w, http.StatusOK, progress)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	progress, err := s.store.GetProgress(r.Context(), claims.UserID, chi.URLParam(r, "assignmentId"))
	if err != nil {
		s.logger.Error("get progress failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	writeData(w, http.StatusOK, progress)
}

func (s *Server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	progress, err := s.store.ListProgress(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("list progress failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}
	writeData(w, http.StatusOK, progress)
}

// --- Admin ---

func (s *Server) handleDestroyWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.runner.DestroyWorkspace(r.Context(), id); err != nil {
		s.logger.Error("destroy workspace failed", "error", err, "exercise_id", id)
		writeError(w, http.StatusInternalServerError, "failed to destroy workspace")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"destroyed": id})
}
