package sandbox

import "strings"

// typeMap translates the logical column type vocabulary used in exercise
// definitions to PostgreSQL column types.
var typeMap = map[string]string{
	"INTEGER":   "INTEGER",
	"INT":       "INTEGER",
	"TEXT":      "TEXT",
	"VARCHAR":   "VARCHAR(255)",
	"REAL":      "REAL",
	"FLOAT":     "REAL",
	"BOOLEAN":   "BOOLEAN",
	"BOOL":      "BOOLEAN",
	"DATE":      "DATE",
	"TIMESTAMP": "TIMESTAMP",
	"NUMERIC":   "NUMERIC",
	"DECIMAL":   "DECIMAL",
	"SERIAL":    "INTEGER",
	"BIGINT":    "BIGINT",
}

// MapType maps a logical column type to the engine type clause. The mapping
// is total: unrecognized types degrade to TEXT storage instead of failing
// provisioning.
func MapType(logical string) string {
	if t, ok := typeMap[strings.ToUpper(strings.TrimSpace(logical))]; ok {
		return t
	}
	return "TEXT"
}
