package sandbox

import (
	"fmt"
	"regexp"
)

// NamespacePrefix is the fixed prefix of every workspace schema. Client SQL
// cannot name a schema under this prefix directly because exercise ids are
// never client-authored, and the prefix itself is reserved for the sandbox.
//
// The convention must be preserved bit-for-bit: any reimplementation that
// shares a database with existing workspaces derives the same schema name
// for the same exercise id.
const NamespacePrefix = "workspace_"

// namespaceSuffixLen bounds schema name length regardless of id length.
const namespaceSuffixLen = 8

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DeriveNamespace maps an exercise id to its workspace schema name. The
// mapping is a pure function: the same id always yields the same namespace.
func DeriveNamespace(exerciseID string) string {
	suffix := exerciseID
	if len(suffix) > namespaceSuffixLen {
		suffix = suffix[len(suffix)-namespaceSuffixLen:]
	}
	return NamespacePrefix + suffix
}

// validateIdentifier enforces the identifier allow-list for every schema,
// table, and column name interpolated into DDL. Exercise content is
// operator-authored, but names still never pass through unvalidated.
func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: must match %s", name, identifierPattern)
	}
	return nil
}

// quoteIdentifier double-quotes a previously validated identifier.
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}
