// Package auth owns the credential lifecycle: login, registration, logout,
// token persistence across restarts, and the global reaction to 401.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/atharva-labs/atharva-cli/internal/api"
	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
)

// RegisterProfile is the new-account form, validated before dispatch.
type RegisterProfile struct {
	Username        string `validate:"required,min=3,max=150"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// Manager is the auth session manager. It implements api.TokenSource so the
// gateway reads the credential at dispatch time, and its ForceLogout is the
// gateway's 401 hook. Safe for concurrent use.
type Manager struct {
	store    *Store
	log      *zap.Logger
	validate *validator.Validate

	mu            sync.Mutex
	gw            api.Gateway
	tokens        model.Tokens
	authenticated bool
	onExpired     []func()
}

// NewManager constructs a Manager over the given token store.
func NewManager(store *Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:    store,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Bind attaches the gateway after construction. The gateway itself is built
// with this manager as its token source, so wiring is necessarily two-step.
func (m *Manager) Bind(gw api.Gateway) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gw = gw
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.AccessToken
}

// Authenticated reports whether an identity is established.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// ExpiresAt returns the access token expiry hint, zero when unknown.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.ExpiresAt
}

// OnSessionExpired registers a callback fired when a 401 forces logout.
func (m *Manager) OnSessionExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = append(m.onExpired, fn)
}

// Restore optimistically re-establishes the identity from disk without
// revalidating against the backend; a stale token surfaces on the first 401.
func (m *Manager) Restore() bool {
	t, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, errs.ErrNotAuthenticated) {
			m.log.Warn("token restore failed", zap.Error(err))
		}
		return false
	}
	m.mu.Lock()
	m.tokens = t
	m.authenticated = true
	m.mu.Unlock()
	return true
}

// Login exchanges credentials, persists the token pair, and establishes
// the authenticated identity.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: empty username/password", errs.ErrValidation)
	}
	gw := m.gateway()
	if gw == nil {
		return errors.New("auth: no gateway bound")
	}

	pair, err := gw.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	t := model.Tokens{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresAt:    tokenExpiry(pair.Access),
	}
	if err := m.store.Save(t); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}

	m.mu.Lock()
	m.tokens = t
	m.authenticated = true
	m.mu.Unlock()
	m.log.Info("authenticated", zap.String("username", username))
	return nil
}

// Register validates the profile locally and creates the account.
// It does not authenticate.
func (m *Manager) Register(ctx context.Context, p RegisterProfile) error {
	if err := m.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: field %s fails %s", errs.ErrValidation, f.Field(), f.Tag())
		}
		return fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	gw := m.gateway()
	if gw == nil {
		return errors.New("auth: no gateway bound")
	}
	if err := gw.Register(ctx, api.RegisterRequest{
		Username:        p.Username,
		Email:           p.Email,
		Password:        p.Password,
		ConfirmPassword: p.ConfirmPassword,
	}); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout clears persisted tokens and the in-memory identity. Idempotent.
func (m *Manager) Logout() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	m.mu.Lock()
	m.tokens = model.Tokens{}
	m.authenticated = false
	m.mu.Unlock()
	return nil
}

// ForceLogout is the global 401 reaction: clear persisted tokens, drop the
// identity, and notify listeners so the UI returns to the unauthenticated
// entry point. Invalidation is atomic with respect to AccessToken reads.
func (m *Manager) ForceLogout() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clearing tokens on 401", zap.Error(err))
	}
	m.mu.Lock()
	wasAuthenticated := m.authenticated
	m.tokens = model.Tokens{}
	m.authenticated = false
	listeners := append([]func(){}, m.onExpired...)
	m.mu.Unlock()

	if wasAuthenticated {
		m.log.Info("session expired, forced logout")
	}
	for _, fn := range listeners {
		fn()
	}
}

func (m *Manager) gateway() api.Gateway {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gw
}

// tokenExpiry parses the exp claim without validating the signature; the hint
// is for diagnostics only, authorization stays reactive.
func tokenExpiry(access string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(access, &claims,
		func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Time{}
}
