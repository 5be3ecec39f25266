// Package sandbox implements the sandboxed workspace and query-execution
// subsystem: a read-only SQL admission filter, a workspace provisioner that
// materializes an isolated schema per exercise, and a query executor that
// runs one statement scoped to exactly that schema.
package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxStatementLength is the hard cap on submitted SQL text.
const MaxStatementLength = 5000

// Rule identifiers reported in rejection decisions.
const (
	RuleEmpty      = "empty"
	RuleTooLong    = "too long"
	RuleBlockedOp  = "blocked operation"
	RuleComment    = "comment not allowed"
	RuleSelectOnly = "only SELECT allowed"
)

// Decision is the outcome of checking one statement.
type Decision struct {
	OK     bool
	Rule   string
	Reason string
}

// Checker is the admission filter for untrusted SQL. It is deliberately a
// narrow interface so the pattern-based implementation can later be swapped
// for a real read-only-subset parser without touching callers.
type Checker interface {
	Check(text string) Decision
}

// blockedKeywords are statement-mutation verbs rejected when they appear at
// the start of the trimmed text or immediately after a statement separator.
var blockedKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "TRUNCATE",
	"CREATE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
}

var (
	blockedPatterns []*regexp.Regexp
	selectPattern   = regexp.MustCompile(`(?i)^\s*SELECT\s`)
	withPattern     = regexp.MustCompile(`(?i)^\s*WITH\s`)
)

func init() {
	for _, kw := range blockedKeywords {
		blockedPatterns = append(blockedPatterns,
			regexp.MustCompile(`(?i)^\s*`+kw+`\s`),
			regexp.MustCompile(`(?i);\s*`+kw+`\s`),
		)
	}
}

// Sanitizer is the pattern-based Checker. It is an
// allow-list-by-structure, deny-list-by-pattern filter, not a parser: it
// over-rejects (for example, legal statements containing comments) rather
// than risk admitting a hidden mutating statement. Execution must still run
// under a database role with no write privileges as defense in depth.
type Sanitizer struct{}

// NewSanitizer creates the statement sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Check applies the admission rules in order; the first match wins.
// It performs no I/O and never touches the database.
func (s *Sanitizer) Check(text string) Decision {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return reject(RuleEmpty, "SQL query cannot be empty")
	}
	if len(trimmed) > MaxStatementLength {
		return reject(RuleTooLong, fmt.Sprintf("SQL query is too long (max %d characters)", MaxStatementLength))
	}

	for _, p := range blockedPatterns {
		if p.MatchString(trimmed) {
			return reject(RuleBlockedOp,
				"query blocked: only SELECT statements are allowed in the sandbox; "+
					"DROP, DELETE, UPDATE, INSERT, and other modification operations are not permitted")
		}
	}

	if strings.Contains(trimmed, "--") || strings.Contains(trimmed, "/*") {
		return reject(RuleComment, "SQL comments are not allowed in the sandbox")
	}

	if !selectPattern.MatchString(trimmed) && !withPattern.MatchString(trimmed) {
		return reject(RuleSelectOnly, "only SELECT queries are allowed; please write a SELECT statement")
	}

	return Decision{OK: true}
}

func reject(rule, reason string) Decision {
	return Decision{OK: false, Rule: rule, Reason: reason}
}

var _ Checker = (*Sanitizer)(nil)
