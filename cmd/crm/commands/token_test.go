package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/apperrors"
	"github.com/diewo77/go-crm/internal/models"
)

func TestTokenStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".crm_token")
	store := NewTokenStore(path)

	session := &auth.Session{
		Token:     "header.payload.sig",
		ExpiresAt: time.Date(2026, 6, 4, 15, 0, 0, 0, time.UTC),
		Identity:  auth.Identity{ID: 3, Email: "carl@epic.co", Role: models.RoleCommercial},
	}
	require.NoError(t, store.Save(session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, session.Identity, got.Identity)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
}

func TestTokenStore_LoadMissing(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), ".crm_token"))
	_, err := store.Load()
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidToken))
}

func TestTokenStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".crm_token")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	_, err := NewTokenStore(path).Load()
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidToken))
}

func TestTokenStore_SaveRejectsEmptySession(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), ".crm_token"))
	assert.Error(t, store.Save(&auth.Session{}))
}

func TestTokenStore_ClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".crm_token")
	store := NewTokenStore(path)
	require.NoError(t, store.Save(&auth.Session{Token: "t"}))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTokenStore_SaveTightensExistingFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".crm_token")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, os.Chmod(path, 0o644))

	require.NoError(t, NewTokenStore(path).Save(&auth.Session{Token: "t"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
