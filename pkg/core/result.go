package core

// ExecutionResult is the normalized tabular result of one sandboxed query.
// Columns preserve the statement's projection order; Rows preserve the
// engine's result order. No re-sorting happens anywhere in the pipeline.
type ExecutionResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}
