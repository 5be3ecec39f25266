package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveNamespace(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{
			name: "long hex id uses last 8 chars",
			id:   "665f1a2b3c4d5e6f7a8b9c0d",
			want: "workspace_7a8b9c0d",
		},
		{
			name: "uuid id uses last 8 chars",
			id:   "9f0c2d71-40a4-4b7e-9a64-1f2e3d4c5b6a",
			want: "workspace_3d4c5b6a",
		},
		{
			name: "short id used whole",
			id:   "abc123",
			want: "workspace_abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveNamespace(tt.id))
		})
	}
}

func TestDeriveNamespaceIsPure(t *testing.T) {
	id := "665f1a2b3c4d5e6f7a8b9c0d"
	assert.Equal(t, DeriveNamespace(id), DeriveNamespace(id))
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ident   string
		wantErr bool
	}{
		{"plain lowercase", "employees", false},
		{"with underscore and digits", "order_items_2", false},
		{"leading underscore", "_tmp", false},
		{"workspace schema", "workspace_7a8b9c0d", false},
		{"empty", "", true},
		{"leading digit", "1users", true},
		{"embedded quote", `emp"; DROP SCHEMA public`, true},
		{"hyphen", "order-items", true},
		{"space", "order items", true},
		{"semicolon", "users;", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateIdentifier(tt.ident)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"employees"`, quoteIdentifier("employees"))
}
