// Package writer is the workspace state machine. It turns user input and mode
// selections into backend requests, holds the active session's paragraph
// stream, and reconciles optimistic input state with server truth.
package writer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/atharva-labs/atharva-cli/internal/api"
	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
)

// State is the workspace lifecycle phase.
type State int

const (
	// StateIdle means no active session has been supplied.
	StateIdle State = iota
	// StateLoading means the paragraph stream is being fetched.
	StateLoading
	// StateReady means the stream is loaded and input is enabled.
	StateReady
	// StateSubmitting means a generate/enhance request is in flight.
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Orchestrator drives the generate/enhance request cycle for one workspace
// instance. Submissions are strictly serialized: a new submission is rejected
// while one is in flight. Safe for concurrent use.
type Orchestrator struct {
	gw  api.Gateway
	log *zap.Logger

	mu         sync.Mutex
	state      State
	sessionID  int64
	input      string
	paragraphs []model.Paragraph
	opts       model.RequestOptions
}

// NewOrchestrator constructs an idle workspace.
func NewOrchestrator(gw api.Gateway, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		gw:    gw,
		log:   log,
		state: StateIdle,
		opts:  model.DefaultOptions(),
	}
}

// Start enters the workspace for the given session. It fails fast without a
// session id; the caller redirects to session selection. On success the full
// paragraph stream is loaded and input is enabled.
func (o *Orchestrator) Start(ctx context.Context, sessionID int64) error {
	if sessionID == 0 {
		return errs.ErrNoSession
	}

	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return errs.ErrSubmissionInFlight
	}
	o.state = StateLoading
	o.sessionID = sessionID
	o.mu.Unlock()

	paragraphs, err := o.gw.ListParagraphs(ctx, sessionID)
	if err != nil {
		o.mu.Lock()
		o.state = StateIdle
		o.sessionID = 0
		o.mu.Unlock()
		return fmt.Errorf("load paragraph stream: %w", err)
	}

	o.mu.Lock()
	o.paragraphs = paragraphs
	o.state = StateReady
	o.mu.Unlock()
	o.log.Info("workspace ready", zap.Int64("session", sessionID), zap.Int("paragraphs", len(paragraphs)))
	return nil
}

// Submit dispatches a generate/enhance request for userText. Blank input and
// an in-flight submission are rejected before anything is sent. The input
// field is cleared optimistically; on failure it is restored exactly and the
// stream is left untouched. On success the displayed stream is replaced by a
// full re-fetch so it always reflects backend state.
func (o *Orchestrator) Submit(ctx context.Context, userText string) error {
	if strings.TrimSpace(userText) == "" {
		return errs.ErrBlankInput
	}

	o.mu.Lock()
	switch o.state {
	case StateSubmitting:
		o.mu.Unlock()
		return errs.ErrSubmissionInFlight
	case StateReady:
	default:
		o.mu.Unlock()
		return errs.ErrNoSession
	}
	o.state = StateSubmitting
	o.input = "" // optimistic clear
	sessionID := o.sessionID
	req := buildWriterRequest(sessionID, userText, o.opts)
	o.mu.Unlock()

	requestID := newRequestID()
	o.log.Debug("submitting",
		zap.Int64("session", sessionID),
		zap.String("mode", req.Mode),
		zap.String("request_id", requestID),
	)

	// The /writer/ response body is not consumed for the new paragraph;
	// the stream is re-fetched from the backend's source of truth.
	if _, err := o.gw.Writer(ctx, requestID, req); err != nil {
		o.rollback(userText)
		return fmt.Errorf("writer request: %w", err)
	}

	paragraphs, err := o.gw.ListParagraphs(ctx, sessionID)
	if err != nil {
		o.rollback(userText)
		return fmt.Errorf("refresh paragraph stream: %w", err)
	}

	o.mu.Lock()
	o.paragraphs = paragraphs
	o.state = StateReady
	o.mu.Unlock()
	return nil
}

// rollback restores the pre-submission input and returns to Ready, leaving
// the paragraph stream untouched.
func (o *Orchestrator) rollback(userText string) {
	o.mu.Lock()
	o.input = userText
	o.state = StateReady
	o.mu.Unlock()
}

// Refresh re-fetches the paragraph stream without submitting.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	if o.state != StateReady {
		o.mu.Unlock()
		return errs.ErrNoSession
	}
	sessionID := o.sessionID
	o.mu.Unlock()

	paragraphs, err := o.gw.ListParagraphs(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("refresh paragraph stream: %w", err)
	}
	o.mu.Lock()
	o.paragraphs = paragraphs
	o.mu.Unlock()
	return nil
}

// SetMode switches Generate <-> Enhance. Rejected while a submission is in
// flight. Switching resets mode-specific fields to their defaults and keeps
// tone and language.
func (o *Orchestrator) SetMode(m model.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: unknown mode %q", errs.ErrValidation, m)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return errs.ErrSubmissionInFlight
	}
	if o.opts.Mode == m {
		return nil
	}
	o.opts.Mode = m
	o.opts.Genre = model.DefaultGenre
	o.opts.TargetWords = model.DefaultTargetWords
	o.opts.Level = model.DefaultLevel
	return nil
}

// SetTone updates the shared tone option.
func (o *Orchestrator) SetTone(tone string) error {
	return o.setOption(func(opts *model.RequestOptions) { opts.Tone = tone })
}

// SetLanguage updates the shared language option.
func (o *Orchestrator) SetLanguage(lang string) error {
	return o.setOption(func(opts *model.RequestOptions) { opts.Language = lang })
}

// SetGenre updates the Generate-only genre option.
func (o *Orchestrator) SetGenre(genre string) error {
	return o.setOption(func(opts *model.RequestOptions) { opts.Genre = genre })
}

// SetLevel updates the Enhance-only intensity option.
func (o *Orchestrator) SetLevel(level string) error {
	return o.setOption(func(opts *model.RequestOptions) { opts.Level = level })
}

// SetTargetWords updates the Generate-only word target.
func (o *Orchestrator) SetTargetWords(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: target words must be positive", errs.ErrValidation)
	}
	return o.setOption(func(opts *model.RequestOptions) { opts.TargetWords = n })
}

func (o *Orchestrator) setOption(apply func(*model.RequestOptions)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return errs.ErrSubmissionInFlight
	}
	apply(&o.opts)
	return nil
}

// SetInput stores the draft input text. Rejected while submitting.
func (o *Orchestrator) SetInput(text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return errs.ErrSubmissionInFlight
	}
	o.input = text
	return nil
}

// Input returns the current draft input text.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// State returns the current lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID returns the active session id, 0 when idle.
func (o *Orchestrator) SessionID() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Options returns a copy of the current request configuration.
func (o *Orchestrator) Options() model.RequestOptions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opts
}

// Paragraphs returns a copy of the displayed paragraph stream.
func (o *Orchestrator) Paragraphs() []model.Paragraph {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.Paragraph, len(o.paragraphs))
	copy(out, o.paragraphs)
	return out
}

// buildWriterRequest shapes the payload for the active mode. Fields irrelevant
// to the mode are omitted, not defaulted in.
func buildWriterRequest(sessionID int64, userText string, opts model.RequestOptions) api.WriterRequest {
	req := api.WriterRequest{
		SessionID: sessionID,
		UserInput: userText,
		Mode:      string(opts.Mode),
		Tone:      opts.Tone,
		Language:  opts.Language,
	}
	switch opts.Mode {
	case model.ModeGenerate:
		req.Genre = opts.Genre
		req.TargetWords = opts.TargetWords
	case model.ModeEnhance:
		req.Level = opts.Level
	}
	return req
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
