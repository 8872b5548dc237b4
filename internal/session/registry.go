// Package session manages the writing-session list and the active selection.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atharva-labs/atharva-cli/internal/api"
	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
)

// Registry is CRUD over writing sessions with an optimistic in-memory list.
// List ordering is backend-determined; Create prepends locally instead of
// re-fetching. Safe for concurrent use.
type Registry struct {
	gw  api.Gateway
	log *zap.Logger

	mu       sync.Mutex
	sessions []model.WritingSession
	activeID int64 // 0 = none
}

// NewRegistry constructs a Registry over the gateway.
func NewRegistry(gw api.Gateway, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{gw: gw, log: log}
}

// List fetches all sessions owned by the authenticated identity and replaces
// the in-memory list with the backend's ordering.
func (r *Registry) List(ctx context.Context) ([]model.WritingSession, error) {
	sessions, err := r.gw.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	r.mu.Lock()
	r.sessions = sessions
	r.mu.Unlock()
	return r.Sessions(), nil
}

// Sessions returns a copy of the in-memory list.
func (r *Registry) Sessions() []model.WritingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.WritingSession, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Create requires a non-empty title; blank input dispatches nothing. On
// success the new session is prepended to the list and becomes active.
func (r *Registry) Create(ctx context.Context, title string) (*model.WritingSession, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("session title: %w", errs.ErrBlankInput)
	}
	created, err := r.gw.CreateSession(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	r.mu.Lock()
	r.sessions = append([]model.WritingSession{*created}, r.sessions...)
	r.activeID = created.ID
	r.mu.Unlock()

	r.log.Info("session created", zap.Int64("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// Delete removes a session. The in-memory list is only mutated on success;
// a failure leaves it unchanged and surfaces the error.
func (r *Registry) Delete(ctx context.Context, id int64) error {
	if err := r.gw.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}

	r.mu.Lock()
	kept := r.sessions[:0]
	for _, s := range r.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	if r.activeID == id {
		r.activeID = 0
	}
	r.mu.Unlock()
	return nil
}

// Activate marks a listed session as the active one for workspace entry.
func (r *Registry) Activate(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			r.activeID = id
			return nil
		}
	}
	return fmt.Errorf("session %d: %w", id, errs.ErrNotFound)
}

// ActiveID returns the id threaded into the workspace, 0 when none.
func (r *Registry) ActiveID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}
