package model

import (
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }

func TestParagraph_ScoreDisplayDefaults(t *testing.T) {
	t.Parallel()

	p := Paragraph{}
	if got := p.DriftDisplay(); got != "0.00" {
		t.Fatalf("DriftDisplay=%q, want 0.00", got)
	}
	if got := p.ConsistencyDisplay(); got != "0.00" {
		t.Fatalf("ConsistencyDisplay=%q, want 0.00", got)
	}
	if got := p.EmotionDisplay(); got != "Neutral" {
		t.Fatalf("EmotionDisplay=%q, want Neutral", got)
	}

	p = Paragraph{DriftScore: fptr(0.4567), ConsistencyScore: fptr(0.9), Emotion: "joy"}
	if got := p.DriftDisplay(); got != "0.46" {
		t.Fatalf("DriftDisplay=%q, want 0.46", got)
	}
	if got := p.EmotionDisplay(); got != "joy" {
		t.Fatalf("EmotionDisplay=%q, want joy", got)
	}
}

func TestParagraph_RatioClamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   *float64
		want float64
	}{
		{"nil", nil, 0},
		{"negative", fptr(-0.3), 0},
		{"in range", fptr(0.5), 0.5},
		{"above one", fptr(7.2), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Paragraph{DriftScore: tc.in}
			if got := p.DriftRatio(); got != tc.want {
				t.Fatalf("DriftRatio=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestWritingSession_LastActive(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	s := WritingSession{CreatedAt: created}
	if got := s.LastActive(); !got.Equal(created) {
		t.Fatalf("LastActive=%v, want created_at", got)
	}
	s.UpdatedAt = &updated
	if got := s.LastActive(); !got.Equal(updated) {
		t.Fatalf("LastActive=%v, want updated_at", got)
	}
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if opts.Mode != ModeEnhance {
		t.Fatalf("default mode=%q, want enhance", opts.Mode)
	}
	if opts.Tone != DefaultTone || opts.Language != DefaultLanguage {
		t.Fatalf("shared defaults wrong: %+v", opts)
	}
	if opts.Genre != DefaultGenre || opts.TargetWords != DefaultTargetWords || opts.Level != DefaultLevel {
		t.Fatalf("mode defaults wrong: %+v", opts)
	}
}
