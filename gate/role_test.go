package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-crm/gate"
	"github.com/diewo77/go-crm/internal/apperrors"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed []string
		ok      bool
	}{
		{"exact match", "commercial", []string{"commercial"}, true},
		{"one of many", "gestion", []string{"commercial", "gestion"}, true},
		{"case insensitive", "Gestion", []string{"gestion"}, true},
		{"trimmed", "  support ", []string{"support"}, true},
		{"allowed side normalized", "support", []string{" SUPPORT"}, true},
		{"not a member", "support", []string{"commercial", "gestion"}, false},
		{"empty role", "", []string{"commercial"}, false},
		{"no allowed roles", "gestion", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.RequireRole(tt.role, tt.allowed...)
			if tt.ok {
				assert.NoError(t, err)
				assert.True(t, gate.HasRole(tt.role, tt.allowed...))
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
			assert.False(t, gate.HasRole(tt.role, tt.allowed...))
		})
	}
}

func TestRequireRole_Message(t *testing.T) {
	err := gate.RequireRole("support", "commercial", "gestion")
	require.Error(t, err)
	assert.Equal(t, "access denied, required role(s): commercial or gestion", err.Error())
}
