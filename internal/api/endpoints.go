package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atharva-labs/atharva-cli/internal/model"
)

// Gateway mirrors the backend's REST surface, one operation per endpoint.
// Services accept this interface; *Client is the production implementation.
type Gateway interface {
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Register(ctx context.Context, req RegisterRequest) error
	ListSessions(ctx context.Context) ([]model.WritingSession, error)
	CreateSession(ctx context.Context, title string) (*model.WritingSession, error)
	DeleteSession(ctx context.Context, id int64) error
	ListParagraphs(ctx context.Context, sessionID int64) ([]model.Paragraph, error)
	CreateParagraph(ctx context.Context, sessionID int64, content string) (*model.Paragraph, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Writer(ctx context.Context, requestID string, req WriterRequest) (*WriterResult, error)
	Enhance(ctx context.Context, paragraphID int64) (*EnhanceResult, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

var _ Gateway = (*Client)(nil)

// LoginRequest carries credentials for token exchange.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the login success payload.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest carries the new-account profile.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// GenerateRequest is the standalone one-shot generation payload.
type GenerateRequest struct {
	SessionID int64  `json:"session_id"`
	Prompt    string `json:"prompt"`
	Genre     string `json:"genre"`
	Tone      string `json:"tone"`
	Length    string `json:"length"`
}

// GenerateResult is the standalone generation response.
type GenerateResult struct {
	GeneratedText string `json:"generated_text"`
}

// WriterRequest is the workspace generate/enhance payload. Fields irrelevant
// to the active mode are omitted, not defaulted into the payload.
type WriterRequest struct {
	SessionID   int64  `json:"session_id"`
	UserInput   string `json:"user_input"`
	Mode        string `json:"mode"`
	Tone        string `json:"tone"`
	Language    string `json:"language"`
	Level       string `json:"level,omitempty"`        // Enhance only
	Genre       string `json:"genre,omitempty"`        // Generate only
	TargetWords int    `json:"target_words,omitempty"` // Generate only
}

// WriterResult is the /writer/ response body. The workspace does not consume
// it for the new paragraph; server truth is re-fetched from the stream.
type WriterResult struct {
	Mode         string `json:"mode"`
	EnhancedText string `json:"enhanced_text,omitempty"`
	Emotion      string `json:"emotion,omitempty"`
}

// EnhanceResult is the ML analysis payload for an existing paragraph.
type EnhanceResult struct {
	Mode              string   `json:"mode"`
	EnhancedText      string   `json:"enhanced_text"`
	Emotion           string   `json:"emotion"`
	DriftScore        *float64 `json:"drift_score"`
	ConsistencyScore  *float64 `json:"consistency_score"`
	ReadabilityBefore *float64 `json:"readability_before"`
	ReadabilityAfter  *float64 `json:"readability_after"`
	Explanation       string   `json:"explanation"`
}

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var out TokenPair
	if err := c.do(ctx, http.MethodPost, "/login/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not authenticate.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register/", nil, req, nil)
}

// ListSessions returns the caller's writing sessions in backend order.
func (c *Client) ListSessions(ctx context.Context) ([]model.WritingSession, error) {
	var out []model.WritingSession
	if err := c.do(ctx, http.MethodGet, "/session/list/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSession creates a named writing session.
func (c *Client) CreateSession(ctx context.Context, title string) (*model.WritingSession, error) {
	body := struct {
		Title string `json:"title"`
	}{Title: title}
	var out model.WritingSession
	if err := c.do(ctx, http.MethodPost, "/session/create/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession removes a writing session and its paragraph stream.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/session/delete/%d/", id), nil, nil, nil)
}

// ListParagraphs returns the full ordered paragraph stream of a session.
func (c *Client) ListParagraphs(ctx context.Context, sessionID int64) ([]model.Paragraph, error) {
	var out []model.Paragraph
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/paragraph/list/%d/", sessionID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateParagraph appends raw content to a session without AI processing.
func (c *Client) CreateParagraph(ctx context.Context, sessionID int64, content string) (*model.Paragraph, error) {
	body := struct {
		Session int64  `json:"session"`
		Content string `json:"content"`
	}{Session: sessionID, Content: content}
	var out model.Paragraph
	if err := c.do(ctx, http.MethodPost, "/paragraph/create/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate runs the standalone one-shot generation flow.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	var out GenerateResult
	if err := c.do(ctx, http.MethodPost, "/generate/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Writer dispatches a workspace generate/enhance request. requestID is the
// client-generated correlation id attached as X-Request-ID.
func (c *Client) Writer(ctx context.Context, requestID string, req WriterRequest) (*WriterResult, error) {
	var hdr map[string]string
	if requestID != "" {
		hdr = map[string]string{"X-Request-ID": requestID}
	}
	var out WriterResult
	if err := c.do(ctx, http.MethodPost, "/writer/", hdr, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Enhance triggers ML analysis of an existing paragraph.
func (c *Client) Enhance(ctx context.Context, paragraphID int64) (*EnhanceResult, error) {
	body := struct {
		ParagraphID int64 `json:"paragraph_id"`
	}{ParagraphID: paragraphID}
	var out EnhanceResult
	if err := c.do(ctx, http.MethodPost, "/enhance/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the caller's usage counters.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.do(ctx, http.MethodGet, "/stats/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
