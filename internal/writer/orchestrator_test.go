package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atharva-labs/atharva-cli/internal/api"
	"github.com/atharva-labs/atharva-cli/internal/errs"
	"github.com/atharva-labs/atharva-cli/internal/model"
)

type fakeGateway struct {
	api.Gateway

	mu         sync.Mutex
	paragraphs []model.Paragraph
	listErr    error
	listCalls  int

	writerErr   error
	writerCalls int
	lastRequest api.WriterRequest
	lastReqID   string

	// blockWriter, when non-nil, holds Writer until the channel is closed.
	blockWriter chan struct{}
	entered     chan struct{}
}

func (f *fakeGateway) ListParagraphs(context.Context, int64) ([]model.Paragraph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Paragraph, len(f.paragraphs))
	copy(out, f.paragraphs)
	return out, nil
}

func (f *fakeGateway) Writer(_ context.Context, requestID string, req api.WriterRequest) (*api.WriterResult, error) {
	f.mu.Lock()
	f.writerCalls++
	f.lastRequest = req
	f.lastReqID = requestID
	block := f.blockWriter
	entered := f.entered
	err := f.writerErr
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return &api.WriterResult{}, nil
}

func readyOrchestrator(t *testing.T, gw *fakeGateway) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(gw, nil)
	if err := o.Start(context.Background(), 5); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return o
}

func TestOrchestrator_StartRequiresSession(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{}, nil)
	if err := o.Start(context.Background(), 0); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("err=%v, want ErrNoSession", err)
	}
	if o.State() != StateIdle {
		t.Fatalf("state=%v, want idle", o.State())
	}
}

func TestOrchestrator_StartLoadsStream(t *testing.T) {
	gw := &fakeGateway{paragraphs: []model.Paragraph{{ID: 1, Content: "opening line"}}}
	o := readyOrchestrator(t, gw)

	if o.State() != StateReady {
		t.Fatalf("state=%v, want ready", o.State())
	}
	if o.SessionID() != 5 {
		t.Fatalf("SessionID=%d, want 5", o.SessionID())
	}
	got := o.Paragraphs()
	if len(got) != 1 || got[0].Content != "opening line" {
		t.Fatalf("stream=%+v", got)
	}
}

func TestOrchestrator_StartFailureRollsBack(t *testing.T) {
	gw := &fakeGateway{listErr: &api.APIError{Status: 404, Message: "not found"}}
	o := NewOrchestrator(gw, nil)

	if err := o.Start(context.Background(), 5); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
	if o.State() != StateIdle || o.SessionID() != 0 {
		t.Fatalf("state=%v session=%d, want idle/0", o.State(), o.SessionID())
	}
}

func TestOrchestrator_SubmitBlank(t *testing.T) {
	gw := &fakeGateway{}
	o := readyOrchestrator(t, gw)

	for _, in := range []string{"", "   ", "\n\t"} {
		if err := o.Submit(context.Background(), in); !errors.Is(err, errs.ErrBlankInput) {
			t.Fatalf("input %q: err=%v, want ErrBlankInput", in, err)
		}
	}
	if gw.writerCalls != 0 {
		t.Fatalf("blank input was dispatched: %d calls", gw.writerCalls)
	}
}

func TestOrchestrator_SubmitWithoutSession(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{}, nil)
	if err := o.Submit(context.Background(), "text"); !errors.Is(err, errs.ErrNoSession) {
		t.Fatalf("err=%v, want ErrNoSession", err)
	}
}

func TestOrchestrator_SubmitSuccessReplacesStream(t *testing.T) {
	gw := &fakeGateway{paragraphs: []model.Paragraph{{ID: 1, Content: "first"}}}
	o := readyOrchestrator(t, gw)
	if err := o.SetInput("a stormy night"); err != nil {
		t.Fatalf("SetInput: %v", err)
	}

	gw.mu.Lock()
	gw.paragraphs = append(gw.paragraphs, model.Paragraph{ID: 2, Content: "second"})
	gw.mu.Unlock()

	if err := o.Submit(context.Background(), "a stormy night"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.State() != StateReady {
		t.Fatalf("state=%v, want ready", o.State())
	}
	if got := o.Input(); got != "" {
		t.Fatalf("input=%q, want cleared", got)
	}
	got := o.Paragraphs()
	if len(got) != 2 || got[1].ID != 2 {
		t.Fatalf("stream not refreshed: %+v", got)
	}
	if gw.lastReqID == "" {
		t.Fatalf("no request id attached")
	}
}

func TestOrchestrator_SubmitFailureRestoresInput(t *testing.T) {
	gw := &fakeGateway{paragraphs: []model.Paragraph{{ID: 1, Content: "first"}}}
	o := readyOrchestrator(t, gw)
	before := o.Paragraphs()

	gw.writerErr = &api.APIError{Status: 400, Message: "generation failed"}
	const text = "  exact input, spaces kept  "
	err := o.Submit(context.Background(), text)
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation", err)
	}
	if got := o.Input(); got != text {
		t.Fatalf("input=%q, want restored %q", got, text)
	}
	if o.State() != StateReady {
		t.Fatalf("state=%v, want ready", o.State())
	}
	after := o.Paragraphs()
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Fatalf("stream changed on failed submit: %+v", after)
	}
}

func TestOrchestrator_SubmitRefreshFailureRestoresInput(t *testing.T) {
	gw := &fakeGateway{paragraphs: []model.Paragraph{{ID: 1}}}
	o := readyOrchestrator(t, gw)

	gw.mu.Lock()
	gw.listErr = &api.APIError{Status: 500, Message: "backend down"}
	gw.mu.Unlock()

	if err := o.Submit(context.Background(), "text"); err == nil {
		t.Fatalf("expected refresh failure")
	}
	if got := o.Input(); got != "text" {
		t.Fatalf("input=%q, want restored", got)
	}
	if got := o.Paragraphs(); len(got) != 1 {
		t.Fatalf("stream changed on failed refresh: %+v", got)
	}
}

func TestOrchestrator_SubmitSerialized(t *testing.T) {
	gw := &fakeGateway{
		blockWriter: make(chan struct{}),
		entered:     make(chan struct{}),
	}
	o := readyOrchestrator(t, gw)

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background(), "first draft") }()

	select {
	case <-gw.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the gateway")
	}

	if err := o.Submit(context.Background(), "second draft"); !errors.Is(err, errs.ErrSubmissionInFlight) {
		t.Fatalf("err=%v, want ErrSubmissionInFlight", err)
	}
	if err := o.SetMode(model.ModeGenerate); !errors.Is(err, errs.ErrSubmissionInFlight) {
		t.Fatalf("SetMode during submit: err=%v, want ErrSubmissionInFlight", err)
	}
	if err := o.SetTone("formal"); !errors.Is(err, errs.ErrSubmissionInFlight) {
		t.Fatalf("SetTone during submit: err=%v, want ErrSubmissionInFlight", err)
	}

	close(gw.blockWriter)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if gw.writerCalls != 1 {
		t.Fatalf("writerCalls=%d, want 1", gw.writerCalls)
	}
}

func TestOrchestrator_ModeSwitchResetsModeFields(t *testing.T) {
	o := readyOrchestrator(t, &fakeGateway{})

	if err := o.SetTone("formal"); err != nil {
		t.Fatalf("SetTone: %v", err)
	}
	if err := o.SetLanguage("hindi"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	if err := o.SetLevel("high"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}

	if err := o.SetMode(model.ModeGenerate); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	opts := o.Options()
	if opts.Tone != "formal" || opts.Language != "hindi" {
		t.Fatalf("shared options reset: %+v", opts)
	}
	if opts.Genre != model.DefaultGenre || opts.TargetWords != model.DefaultTargetWords || opts.Level != model.DefaultLevel {
		t.Fatalf("mode fields not reset: %+v", opts)
	}
}

func TestOrchestrator_SetModeSameModeNoReset(t *testing.T) {
	o := readyOrchestrator(t, &fakeGateway{})
	if err := o.SetLevel("high"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if err := o.SetMode(model.ModeEnhance); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if opts := o.Options(); opts.Level != "high" {
		t.Fatalf("same-mode switch reset level: %+v", opts)
	}
}

func TestOrchestrator_SetModeInvalid(t *testing.T) {
	o := readyOrchestrator(t, &fakeGateway{})
	if err := o.SetMode(model.Mode("remix")); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation", err)
	}
}

func TestOrchestrator_SetTargetWordsPositive(t *testing.T) {
	o := readyOrchestrator(t, &fakeGateway{})
	for _, n := range []int{0, -10} {
		if err := o.SetTargetWords(n); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("n=%d: err=%v, want ErrValidation", n, err)
		}
	}
	if err := o.SetTargetWords(500); err != nil {
		t.Fatalf("SetTargetWords: %v", err)
	}
	if got := o.Options().TargetWords; got != 500 {
		t.Fatalf("TargetWords=%d, want 500", got)
	}
}

func TestOrchestrator_PayloadShaping(t *testing.T) {
	gw := &fakeGateway{}
	o := readyOrchestrator(t, gw)

	// Enhance carries level, never genre or target words.
	if err := o.Submit(context.Background(), "tighten this"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	req := gw.lastRequest
	if req.Mode != "enhance" || req.Level != model.DefaultLevel {
		t.Fatalf("enhance request=%+v", req)
	}
	if req.Genre != "" || req.TargetWords != 0 {
		t.Fatalf("enhance request carries generate fields: %+v", req)
	}
	if req.SessionID != 5 || req.UserInput != "tighten this" {
		t.Fatalf("request=%+v", req)
	}

	// Generate carries genre and target words, never level.
	if err := o.SetMode(model.ModeGenerate); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if err := o.SetGenre("noir"); err != nil {
		t.Fatalf("SetGenre: %v", err)
	}
	if err := o.Submit(context.Background(), "a locked room"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	req = gw.lastRequest
	if req.Mode != "generate" || req.Genre != "noir" || req.TargetWords != model.DefaultTargetWords {
		t.Fatalf("generate request=%+v", req)
	}
	if req.Level != "" {
		t.Fatalf("generate request carries level: %+v", req)
	}
}

func TestOrchestrator_Refresh(t *testing.T) {
	gw := &fakeGateway{paragraphs: []model.Paragraph{{ID: 1}}}
	o := readyOrchestrator(t, gw)

	gw.mu.Lock()
	gw.paragraphs = append(gw.paragraphs, model.Paragraph{ID: 2})
	gw.mu.Unlock()

	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := o.Paragraphs(); len(got) != 2 {
		t.Fatalf("stream=%+v, want 2 paragraphs", got)
	}
}
