package core

import (
	"fmt"
	"time"
)

// ValidationError indicates the statement sanitizer rejected the input.
// Always client-caused; never retried. Rule names which rule fired.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ProvisioningError indicates the workspace rebuild failed, either from a
// malformed exercise definition or an infrastructure failure. Not retried.
// Surfaced to callers as a generic failure; logged with full detail.
type ProvisioningError struct {
	Message string
	Err     error
}

func (e *ProvisioningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// QueryError indicates the engine rejected the statement itself (syntax
// error, unknown relation, type mismatch, permission denial). Carries the
// engine's message, detail, and hint verbatim so the client can
// self-correct.
type QueryError struct {
	Message string
	Detail  string
	Hint    string
	Code    string
}

func (e *QueryError) Error() string { return e.Message }

// PoolExhaustionError indicates no database connection became available
// within the acquisition timeout. Safe for the caller to retry with
// backoff.
type PoolExhaustionError struct {
	Timeout time.Duration
}

func (e *PoolExhaustionError) Error() string {
	return fmt.Sprintf("no database connection available within %s", e.Timeout)
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(rule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ErrProvisioning creates a ProvisioningError wrapping a cause.
func ErrProvisioning(err error, format string, args ...any) *ProvisioningError {
	return &ProvisioningError{Message: fmt.Sprintf(format, args...), Err: err}
}
