// Package core defines the shared language of the SQLStudio system.
//
// This package contains:
//   - Domain entities (Exercise, TableSpec, ExecutionResult, Progress)
//   - Service interfaces (Store, HintGenerator)
//   - Error kinds returned by the sandbox (ValidationError, QueryError, ...)
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
