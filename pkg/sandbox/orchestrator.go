package sandbox

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// Runner is the single entry point invoked by the request layer:
// sanitize, provision idempotently, execute, and normalize or translate
// the error. The ordering is load-bearing: sanitization happens before any
// statement reaches the engine, and provisioning happens before execution
// so a cold workspace is never queried.
type Runner struct {
	checker     Checker
	provisioner *Provisioner
	executor    *Executor
	logger      *slog.Logger

	// Per-namespace locks serialize provision+execute for the same
	// exercise. Without this, a rebuild triggered by one request can drop
	// relations out from under another request's in-flight query.
	// Requests for different exercises stay fully concurrent.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner wires the sandbox components on a shared pooled connection.
// The pool handle is injected rather than global so tests can substitute
// an isolated pool per case.
func NewRunner(db *sql.DB, acquireTimeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		checker:     NewSanitizer(),
		provisioner: NewProvisioner(db, logger),
		executor:    NewExecutor(db, acquireTimeout, logger),
		logger:      logger,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Run executes one student statement against the workspace for an
// exercise, rebuilding the workspace first.
func (r *Runner) Run(ctx context.Context, exerciseID string, specs []core.TableSpec, sqlText string) (*core.ExecutionResult, error) {
	if d := r.checker.Check(sqlText); !d.OK {
		return nil, core.ErrValidation(d.Rule, "%s", d.Reason)
	}

	lock := r.namespaceLock(DeriveNamespace(exerciseID))
	lock.Lock()
	defer lock.Unlock()

	if _, err := r.provisioner.Provision(ctx, exerciseID, specs); err != nil {
		return nil, err
	}
	return r.executor.Execute(ctx, exerciseID, sqlText)
}

// Check exposes the sanitizer so the request layer can gate statements
// before doing any other work.
func (r *Runner) Check(sqlText string) Decision {
	return r.checker.Check(sqlText)
}

// DestroyWorkspace drops the workspace for an exercise. Administrative.
func (r *Runner) DestroyWorkspace(ctx context.Context, exerciseID string) error {
	lock := r.namespaceLock(DeriveNamespace(exerciseID))
	lock.Lock()
	defer lock.Unlock()
	return r.provisioner.Destroy(ctx, exerciseID)
}

func (r *Runner) namespaceLock(namespace string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[namespace]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[namespace] = lock
	}
	return lock
}
