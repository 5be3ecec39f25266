package hint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlstudio-labs/sqlstudio/pkg/core"
)

func TestBuildPrompt(t *testing.T) {
	tables := []core.TableSpec{
		{
			TableName: "employees",
			Columns: []core.Column{
				{Name: "id", Type: "INTEGER"},
				{Name: "name", Type: "VARCHAR"},
			},
		},
		{
			TableName: "departments",
			Columns: []core.Column{
				{Name: "id", Type: "INTEGER"},
			},
		},
	}

	prompt := buildPrompt("List all employees", "SELECT * FROM employee", tables)

	assert.Contains(t, prompt, `"List all employees"`)
	assert.Contains(t, prompt, `Table "employees": id (INTEGER), name (VARCHAR)`)
	assert.Contains(t, prompt, `Table "departments": id (INTEGER)`)
	assert.Contains(t, prompt, "```sql\nSELECT * FROM employee\n```")
	assert.Contains(t, prompt, "HINTS only")
	assert.Contains(t, prompt, "2-4 sentences")
}

func TestBuildPromptEmptyAttempt(t *testing.T) {
	prompt := buildPrompt("Count the rows", "", nil)

	assert.Contains(t, prompt, "(The student has not written any query yet)")
	assert.False(t, strings.Contains(prompt, "```sql"))
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{APIKey: "sk-test"}.Enabled())
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "sk-test"}, nil)

	assert.NotNil(t, c.client)
	assert.NotNil(t, c.logger)
	assert.NotEmpty(t, c.model)
}
