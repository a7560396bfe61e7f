package ask

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/lessonplay/internal/llm"
)

func testQuestion() Question {
	return Question{
		LessonID:  "intro-calculus",
		StepIndex: 1,
		Question:  "Why can't we just plug in x = 2?",
		Context:   `<p>Consider <span class="math">f(x) = \frac{x^2-4}{x-2}</span></p>`,
	}
}

func waitResult(t *testing.T, svc *Service) Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := svc.Consume(); ok {
			return res
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected an answer")
	return Result{}
}

func TestService_Ask(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"answer":"<p>Plugging in gives 0/0.</p>"}`),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	answer, err := svc.Ask(context.Background(), testQuestion())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Markup != "<p>Plugging in gives 0/0.</p>" {
		t.Errorf("unexpected answer %q", answer.Markup)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != AnswerSchema {
		t.Error("expected the answer schema")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"Lesson: intro-calculus", "Step: 2", `\frac{x^2-4}{x-2}`, "plug in x = 2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}

func TestService_EmptyQuestion(t *testing.T) {
	mock := llm.NewMockProvider()
	svc := NewService(mock, DefaultConfig(), nil)

	q := testQuestion()
	q.Question = "   "
	if _, err := svc.Ask(context.Background(), q); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Error("provider should not be called for an empty question")
	}
}

func TestService_ProviderFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("slow down")}})
	svc := NewService(mock, DefaultConfig(), nil)

	_, err := svc.Ask(context.Background(), testQuestion())
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestService_NoProvider(t *testing.T) {
	svc := NewService(nil, DefaultConfig(), nil)
	_, err := svc.Ask(context.Background(), testQuestion())
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestService_RequestConsume(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"answer":"<p>Because the denominator vanishes.</p>"}`),
	})
	svc := NewService(mock, DefaultConfig(), nil)

	if _, ok := svc.Consume(); ok {
		t.Fatal("nothing should be ready before a request")
	}

	svc.Request(t.Context(), testQuestion())
	res := waitResult(t, svc)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !strings.Contains(res.Answer.Markup, "denominator") {
		t.Errorf("unexpected answer %q", res.Answer.Markup)
	}
	if _, ok := svc.Consume(); ok {
		t.Error("slot should be cleared after consumption")
	}
}

func TestService_RequestFailureFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)})
	svc := NewService(mock, DefaultConfig(), nil)

	svc.Request(t.Context(), testQuestion())
	res := waitResult(t, svc)
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	if res.Answer == nil || res.Answer.Markup != FallbackAnswer {
		t.Errorf("expected fallback answer, got %+v", res.Answer)
	}
}

type gatedProvider struct {
	release chan struct{}
	answer  string
}

func (g *gatedProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &llm.Response{Content: json.RawMessage(`{"answer":"` + g.answer + `"}`)}, nil
}

func (g *gatedProvider) ModelID() string { return "gated" }

func TestService_CancelDropsInFlight(t *testing.T) {
	p := &gatedProvider{release: make(chan struct{}), answer: "late"}
	svc := NewService(p, DefaultConfig(), nil)

	svc.Request(t.Context(), testQuestion())
	svc.Cancel()
	close(p.release)

	time.Sleep(50 * time.Millisecond)
	if _, ok := svc.Consume(); ok {
		t.Fatal("cancelled answer must not be delivered")
	}
}
