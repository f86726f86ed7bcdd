package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diewo77/go-crm/auth"
	"github.com/diewo77/go-crm/internal/apperrors"
)

// TokenStore keeps the session of the last login in a file readable only by
// its owner.
type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

func (s *TokenStore) Path() string { return s.path }

// Save writes the session, replacing any previous one.
func (s *TokenStore) Save(session *auth.Session) error {
	if !session.Active() {
		return errors.New("refusing to store an empty session")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("restrict token file: %w", err)
	}
	return nil
}

// Load returns the stored session, or an InvalidToken error when there is
// none.
func (s *TokenStore) Load() (*auth.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.New(apperrors.CodeInvalidToken, "not logged in, run \"crm login\" first")
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var session auth.Session
	if err := json.Unmarshal(data, &session); err != nil || !session.Active() {
		return nil, apperrors.New(apperrors.CodeInvalidToken, "token file is corrupt, run \"crm login\" again")
	}
	return &session, nil
}

// Clear removes the token file. A missing file is not an error.
func (s *TokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
