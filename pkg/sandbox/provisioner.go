package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

// Provisioner materializes an isolated workspace schema per exercise from
// its TableSpec list. It exclusively owns workspace lifecycle: the executor
// never creates or drops schema objects.
type Provisioner struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProvisioner creates a provisioner on the given pooled connection.
// If logger is nil, a discard logger is used.
func NewProvisioner(db *sql.DB, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provisioner{db: db, logger: logger}
}

// Provision rebuilds the workspace for an exercise from scratch and returns
// its schema name. It is idempotent: provisioning twice with the same id
// and specs yields the same observable workspace contents.
//
// The drop, create, and populate steps run inside one transaction, so a
// failed rebuild rolls back completely and no partial workspace is ever
// visible to readers.
func (p *Provisioner) Provision(ctx context.Context, exerciseID string, specs []core.TableSpec) (string, error) {
	namespace := DeriveNamespace(exerciseID)
	if err := validateIdentifier(namespace); err != nil {
		return "", core.ErrProvisioning(err, "invalid workspace namespace for exercise %s", exerciseID)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", core.ErrProvisioning(err, "failed to begin workspace transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// Rebuild from scratch: cheaper than diffing at this scale, and it
	// eliminates stale columns and leftover rows from a previous version
	// of the exercise.
	quoted := quoteIdentifier(namespace)
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", quoted)); err != nil {
		return "", core.ErrProvisioning(err, "failed to drop workspace schema %s", namespace)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", quoted)); err != nil {
		return "", core.ErrProvisioning(err, "failed to create workspace schema %s", namespace)
	}

	for _, spec := range specs {
		if err := p.createTable(ctx, tx, namespace, spec); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", core.ErrProvisioning(err, "failed to commit workspace %s", namespace)
	}

	p.logger.Debug("provisioned workspace",
		slog.String("namespace", namespace),
		slog.Int("tables", len(specs)))
	return namespace, nil
}

// createTable creates one table in the namespace and seeds its rows.
// Values are always bound as positional parameters in declared column
// order, never interpolated as SQL text.
func (p *Provisioner) createTable(ctx context.Context, tx *sql.Tx, namespace string, spec core.TableSpec) error {
	if err := validateIdentifier(spec.TableName); err != nil {
		return core.ErrProvisioning(err, "invalid table name in exercise definition")
	}
	if len(spec.Columns) == 0 {
		return core.ErrProvisioning(nil, "table %s declares no columns", spec.TableName)
	}

	colDefs := make([]string, len(spec.Columns))
	colNames := make([]string, len(spec.Columns))
	placeholders := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		if err := validateIdentifier(col.Name); err != nil {
			return core.ErrProvisioning(err, "invalid column name in table %s", spec.TableName)
		}
		colDefs[i] = fmt.Sprintf("%s %s", quoteIdentifier(col.Name), MapType(col.Type))
		colNames[i] = quoteIdentifier(col.Name)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	qualified := quoteIdentifier(namespace) + "." + quoteIdentifier(spec.TableName)
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", qualified, strings.Join(colDefs, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return core.ErrProvisioning(err, "failed to create table %s", spec.TableName)
	}

	if len(spec.Rows) == 0 {
		return nil
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified, strings.Join(colNames, ", "), strings.Join(placeholders, ", "))
	for _, row := range spec.Rows {
		args := make([]any, len(spec.Columns))
		for i, col := range spec.Columns {
			args[i] = row[col.Name]
		}
		if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
			return core.ErrProvisioning(err, "failed to insert row into %s", spec.TableName)
		}
	}
	return nil
}

// Destroy drops the workspace schema for an exercise unconditionally.
// Administrative cleanup; not part of the normal request path.
func (p *Provisioner) Destroy(ctx context.Context, exerciseID string) error {
	namespace := DeriveNamespace(exerciseID)
	if err := validateIdentifier(namespace); err != nil {
		return core.ErrProvisioning(err, "invalid workspace namespace for exercise %s", exerciseID)
	}
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", quoteIdentifier(namespace))); err != nil {
		return core.ErrProvisioning(err, "failed to destroy workspace %s", namespace)
	}
	p.logger.Info("destroyed workspace", slog.String("namespace", namespace))
	return nil
}
