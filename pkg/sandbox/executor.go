package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// DefaultAcquireTimeout bounds how long a request waits for a pooled
// connection before failing with a PoolExhaustionError.
const DefaultAcquireTimeout = 5 * time.Second

// Executor runs one already-sanitized statement scoped to one workspace
// and normalizes the result. It only ever reads within a schema; workspace
// lifecycle belongs to the Provisioner.
type Executor struct {
	db             *sql.DB
	acquireTimeout time.Duration
	logger         *slog.Logger
}

// NewExecutor creates an executor on the given pooled connection.
// If acquireTimeout is zero, DefaultAcquireTimeout is used. If logger is
// nil, a discard logger is used.
func NewExecutor(db *sql.DB, acquireTimeout time.Duration, logger *slog.Logger) *Executor {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{db: db, acquireTimeout: acquireTimeout, logger: logger}
}

// Execute runs sqlText against the workspace derived from exerciseID.
// Statement resolution is scoped to the workspace schema with the shared
// public schema as read-only fallback. The acquired connection is returned
// to the pool exactly once on every exit path.
func (e *Executor) Execute(ctx context.Context, exerciseID, sqlText string) (*core.ExecutionResult, error) {
	namespace := DeriveNamespace(exerciseID)
	if err := validateIdentifier(namespace); err != nil {
		return nil, fmt.Errorf("invalid workspace namespace: %w", err)
	}

	conn, err := e.acquireConn(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	// Scope resolution to the workspace. Reset before the connection goes
	// back to the pool so no later borrower inherits the search path.
	setPath := fmt.Sprintf("SET search_path TO %s, public", quoteIdentifier(namespace))
	if _, err := conn.ExecContext(ctx, setPath); err != nil {
		return nil, translateEngineError(err)
	}
	defer func() { _, _ = conn.ExecContext(ctx, "SET search_path TO DEFAULT") }()

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, translateEngineError(err)
	}
	defer func() { _ = rows.Close() }()

	result, err := collectRows(rows)
	if err != nil {
		return nil, translateEngineError(err)
	}

	e.logger.Debug("executed query",
		slog.String("namespace", namespace),
		slog.Int("rows", result.RowCount))
	return result, nil
}

// acquireConn checks out a dedicated connection, the sole blocking point of
// a request. Waiting is bounded by the acquisition timeout.
func (e *Executor) acquireConn(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, e.acquireTimeout)
	defer cancel()

	conn, err := e.db.Conn(acquireCtx)
	if err != nil {
		if errors.Is(acquireCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &core.PoolExhaustionError{Timeout: e.acquireTimeout}
		}
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}

// collectRows normalizes an engine result: column names in projection
// order, rows in engine order, []byte values decoded to strings.
func collectRows(rows *sql.Rows) (*core.ExecutionResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &core.ExecutionResult{
		Columns:  cols,
		Rows:     out,
		RowCount: len(out),
	}, nil
}

// translateEngineError maps engine-reported failures to QueryError,
// preserving the engine's message, detail, and hint verbatim so the client
// can self-correct. Non-engine failures pass through wrapped.
func translateEngineError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &core.QueryError{
			Message: pgErr.Message,
			Detail:  pgErr.Detail,
			Hint:    pgErr.Hint,
			Code:    pgErr.Code,
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("query execution failed: %w", err)
}
