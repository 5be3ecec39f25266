package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "SQLStudio v"+Version)
}

func TestRootCommandMetadata(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "sqlstudio", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[strings.Fields(sub.Use)[0]] = true
	}
	for _, want := range []string{"serve", "seed", "destroy", "query", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestQueryCommandRequiresExercise(t *testing.T) {
	cmd := newQueryCommand()
	assert.NotNil(t, cmd.Flags().Lookup("exercise"))
	assert.NotNil(t, cmd.Flags().Lookup("format"))
}

func resultFixture() *core.ExecutionResult {
	return &core.ExecutionResult{
		Columns: []string{"id", "name"},
		Rows: []map[string]any{
			{"id": 1, "name": "Alice Johnson"},
			{"id": 2, "name": nil},
		},
		RowCount: 2,
	}
}

func TestRenderTable(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, resultFixture(), "table"))

	out := buf.String()
	assert.Contains(t, out, "Alice Johnson")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderTableEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, &core.ExecutionResult{Columns: []string{"id"}}, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, resultFixture(), "json"))

	assert.Contains(t, buf.String(), `"rowCount": 2`)
	assert.Contains(t, buf.String(), `"columns"`)
}

func TestRenderCSV(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, &core.ExecutionResult{
		Columns:  []string{"name", "note"},
		Rows:     []map[string]any{{"name": "a,b", "note": `say "hi"`}},
		RowCount: 1,
	}, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "name,note", lines[0])
	assert.Equal(t, `"a,b","say ""hi"""`, lines[1])
}

func TestRenderMarkdown(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, renderResult(buf, resultFixture(), "md"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| id | name |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "hello", formatValue("hello"))
}
