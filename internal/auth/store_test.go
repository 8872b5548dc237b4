package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "atharva"))
}

func Test_store_SaveLoad(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Load(); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("Load on empty store: err=%v, want ErrNotAuthenticated", err)
	}

	want := model.Tokens{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second),
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Fatalf("Load=%+v, want %+v", got, want)
	}
}

func Test_store_LoadExpiredHintStillRestores(t *testing.T) {
	s := newTestStore(t)

	// Expiry is handled reactively on 401; a stale hint must not reject the token.
	stale := model.Tokens{AccessToken: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := s.Save(stale); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load expired hint: %v", err)
	}
	if got.AccessToken != "old" {
		t.Fatalf("AccessToken=%q, want old", got.AccessToken)
	}
}

func Test_store_ClearIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear on empty store: %v", err)
	}
	if err := s.Save(model.Tokens{AccessToken: "acc"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("Load after Clear: err=%v, want ErrNotAuthenticated", err)
	}
}
