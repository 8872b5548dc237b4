package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
)

type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store persists the token pair under the config dir across restarts.
type Store struct {
	dir string
}

// NewStore creates a token store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string { return filepath.Join(s.dir, "token.json") }

// Save writes the token pair with owner-only permissions.
func (s *Store) Save(t model.Tokens) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(s.path(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
	})
}

// Load reads the persisted token pair. A stale expiry hint does not reject the
// token: expiry is discovered reactively on the first 401.
func (s *Store) Load() (model.Tokens, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return model.Tokens{}, errs.ErrNotAuthenticated
		}
		return model.Tokens{}, fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return model.Tokens{}, fmt.Errorf("parse token file: %w", err)
	}
	if tf.AccessToken == "" {
		return model.Tokens{}, errs.ErrNotAuthenticated
	}
	return model.Tokens{
		AccessToken:  tf.AccessToken,
		RefreshToken: tf.RefreshToken,
		ExpiresAt:    tf.ExpiresAt,
	}, nil
}

// Clear removes the persisted tokens. Missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
