package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/atharva-labs/atharva-cli/internal/api"
	"github.com/atharva-labs/atharva-cli/internal/errs"
)

type fakeGateway struct {
	api.Gateway

	loginPair *api.TokenPair
	loginErr  error
	loginCalls int

	registerErr   error
	registerCalls int
}

func (f *fakeGateway) Login(_ context.Context, _ api.LoginRequest) (*api.TokenPair, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginPair, nil
}

func (f *fakeGateway) Register(_ context.Context, _ api.RegisterRequest) error {
	f.registerCalls++
	return f.registerErr
}

func newTestManager(t *testing.T, gw api.Gateway) *Manager {
	t.Helper()
	m := NewManager(NewStore(filepath.Join(t.TempDir(), "atharva")), nil)
	m.Bind(gw)
	return m
}

func TestManager_LoginPersistsTokens(t *testing.T) {
	gw := &fakeGateway{loginPair: &api.TokenPair{Access: "acc", Refresh: "ref"}}
	m := newTestManager(t, gw)

	if m.Authenticated() {
		t.Fatalf("authenticated before login")
	}
	if err := m.Login(context.Background(), "alice", "pwd"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !m.Authenticated() {
		t.Fatalf("not authenticated after login")
	}
	if got := m.AccessToken(); got != "acc" {
		t.Fatalf("AccessToken=%q, want acc", got)
	}

	// A second manager over the same store restores the identity from disk.
	m2 := NewManager(m.store, nil)
	if !m2.Restore() {
		t.Fatalf("Restore failed after login")
	}
	if got := m2.AccessToken(); got != "acc" {
		t.Fatalf("restored AccessToken=%q, want acc", got)
	}
}

func TestManager_LoginEmptyCredentials(t *testing.T) {
	gw := &fakeGateway{}
	m := newTestManager(t, gw)

	if err := m.Login(context.Background(), "", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation", err)
	}
	if gw.loginCalls != 0 {
		t.Fatalf("login dispatched despite empty credentials")
	}
}

func TestManager_LoginFailureLeavesUnauthenticated(t *testing.T) {
	gw := &fakeGateway{loginErr: &api.APIError{Status: 401, Message: "bad credentials"}}
	m := newTestManager(t, gw)

	err := m.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("err=%v, want ErrUnauthorized", err)
	}
	if m.Authenticated() || m.AccessToken() != "" {
		t.Fatalf("identity established on failed login")
	}
}

func TestManager_RegisterValidation(t *testing.T) {
	gw := &fakeGateway{}
	m := newTestManager(t, gw)

	cases := []struct {
		name    string
		profile RegisterProfile
	}{
		{"missing email", RegisterProfile{Username: "alice", Password: "longenough", ConfirmPassword: "longenough"}},
		{"bad email", RegisterProfile{Username: "alice", Email: "nope", Password: "longenough", ConfirmPassword: "longenough"}},
		{"short password", RegisterProfile{Username: "alice", Email: "a@b.io", Password: "short", ConfirmPassword: "short"}},
		{"confirmation mismatch", RegisterProfile{Username: "alice", Email: "a@b.io", Password: "longenough", ConfirmPassword: "different"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := m.Register(context.Background(), tc.profile); !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("err=%v, want ErrValidation", err)
			}
		})
	}
	if gw.registerCalls != 0 {
		t.Fatalf("invalid profiles were dispatched: %d calls", gw.registerCalls)
	}

	ok := RegisterProfile{Username: "alice", Email: "a@b.io", Password: "longenough", ConfirmPassword: "longenough"}
	if err := m.Register(context.Background(), ok); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if gw.registerCalls != 1 {
		t.Fatalf("registerCalls=%d, want 1", gw.registerCalls)
	}
	if m.Authenticated() {
		t.Fatalf("register must not auto-authenticate")
	}
}

func TestManager_LogoutIdempotent(t *testing.T) {
	gw := &fakeGateway{loginPair: &api.TokenPair{Access: "acc"}}
	m := newTestManager(t, gw)

	if err := m.Login(context.Background(), "alice", "pwd"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if m.Authenticated() || m.AccessToken() != "" {
		t.Fatalf("identity survived logout")
	}
	if _, err := m.store.Load(); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("tokens survived logout: %v", err)
	}
}

func TestManager_ForceLogout(t *testing.T) {
	gw := &fakeGateway{loginPair: &api.TokenPair{Access: "acc"}}
	m := newTestManager(t, gw)

	expired := 0
	m.OnSessionExpired(func() { expired++ })

	if err := m.Login(context.Background(), "alice", "pwd"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	m.ForceLogout()

	if m.Authenticated() || m.AccessToken() != "" {
		t.Fatalf("identity survived forced logout")
	}
	if _, err := m.store.Load(); !errors.Is(err, errs.ErrNotAuthenticated) {
		t.Fatalf("persisted tokens survived forced logout: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired callbacks=%d, want 1", expired)
	}
}
