// Package model defines domain entities shared by the API client and services.
package model

import (
	"fmt"
	"time"
)

// Tokens collects issued access/refresh tokens. The refresh token is persisted
// but never exchanged by this client; expiry is handled reactively on 401.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry hint (diagnostics only)
}

// WritingSession is the addressable unit of work. It owns an ordered,
// append-only stream of paragraphs; the client never mutates it beyond
// create and delete.
type WritingSession struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// LastActive reports the most recent activity timestamp for display.
func (s WritingSession) LastActive() time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

// Paragraph is one unit of AI-produced or AI-enhanced text with backend-computed
// quality scores. Scores are nullable on the wire; the client never fabricates them.
type Paragraph struct {
	ID               int64     `json:"id"`
	SessionID        int64     `json:"session"`
	Content          string    `json:"content"`
	DriftScore       *float64  `json:"drift_score"`
	ConsistencyScore *float64  `json:"consistency_score"`
	Emotion          string    `json:"emotion"`
	CreatedAt        time.Time `json:"created_at"`
}

// DriftDisplay renders the drift score, defaulting to "0.00" when absent.
func (p Paragraph) DriftDisplay() string { return scoreDisplay(p.DriftScore) }

// ConsistencyDisplay renders the consistency score, defaulting to "0.00" when absent.
func (p Paragraph) ConsistencyDisplay() string { return scoreDisplay(p.ConsistencyScore) }

// EmotionDisplay renders the emotion label, defaulting to "Neutral" when absent.
func (p Paragraph) EmotionDisplay() string {
	if p.Emotion == "" {
		return "Neutral"
	}
	return p.Emotion
}

// DriftRatio returns the drift score clamped to [0,1] for meter rendering.
func (p Paragraph) DriftRatio() float64 { return scoreRatio(p.DriftScore) }

// ConsistencyRatio returns the consistency score clamped to [0,1] for meter rendering.
func (p Paragraph) ConsistencyRatio() float64 { return scoreRatio(p.ConsistencyScore) }

func scoreDisplay(v *float64) string {
	if v == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", *v)
}

func scoreRatio(v *float64) float64 {
	if v == nil {
		return 0
	}
	switch {
	case *v < 0:
		return 0
	case *v > 1:
		return 1
	}
	return *v
}

// Mode selects the top-level request type of the workspace.
type Mode string

const (
	// ModeGenerate produces new text from a prompt.
	ModeGenerate Mode = "generate"
	// ModeEnhance rewrites supplied text.
	ModeEnhance Mode = "enhance"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeGenerate || m == ModeEnhance }

// RequestOptions is the workspace configuration that fully determines the shape
// of the next writer request. Genre and TargetWords apply to Generate only,
// Level to Enhance only; Tone and Language are shared across modes.
type RequestOptions struct {
	Mode        Mode
	Tone        string
	Language    string
	Genre       string // Generate only
	TargetWords int    // Generate only
	Level       string // Enhance only
}

// Mode-specific defaults restored on every mode switch.
const (
	DefaultTone        = "storyteller"
	DefaultLanguage    = "english"
	DefaultGenre       = "general"
	DefaultTargetWords = 300
	DefaultLevel       = "medium"
)

// DefaultOptions returns the workspace configuration used on entry.
func DefaultOptions() RequestOptions {
	return RequestOptions{
		Mode:        ModeEnhance,
		Tone:        DefaultTone,
		Language:    DefaultLanguage,
		Genre:       DefaultGenre,
		TargetWords: DefaultTargetWords,
		Level:       DefaultLevel,
	}
}

// Option value lists offered by the workspace controls.
var (
	Tones     = []string{"storyteller", "formal", "casual", "technical"}
	Genres    = []string{"general", "sci-fi", "noir", "drama"}
	Levels    = []string{"low", "medium", "high"}
	Languages = []string{"english", "hindi"}
)

// Stats is the backend usage counter payload.
type Stats struct {
	AIOperations    int64 `json:"ai_operations"`
	TotalSessions   int64 `json:"total_sessions"`
	TotalParagraphs int64 `json:"total_paragraphs"`
}
