// Package ask answers learner questions about the step on screen.
package ask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/lessonplay/internal/llm"
	"github.com/abhisek/lessonplay/internal/logger"
)

// FallbackAnswer is shown when a question cannot be answered.
const FallbackAnswer = "I'm sorry, I couldn't process your question. Please try again."

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is required")

// Question is a learner question about one step.
type Question struct {
	LessonID  string
	StepIndex int
	Question  string
	// Context is the step's markup.
	Context string
}

// Answer holds answer markup in the same dialect as step content.
type Answer struct {
	Markup string
}

// Config controls answer generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the generation settings used by the player.
func DefaultConfig() Config {
	return Config{MaxTokens: 1024, Temperature: 0.3}
}

// Service answers questions through an LLM provider. At most one
// asynchronous answer is pending at a time.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger

	mu      sync.Mutex
	gen     uint64
	pending *Answer
	err     error
	ready   bool
}

// NewService creates a question answering service.
func NewService(provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Service{provider: provider, cfg: cfg, log: log.With("component", "ask")}
}

type answerOutput struct {
	Answer string `json:"answer"`
}

// Ask answers q synchronously.
func (s *Service) Ask(ctx context.Context, q Question) (*Answer, error) {
	if strings.TrimSpace(q.Question) == "" {
		return nil, ErrEmptyQuestion
	}
	if s.provider == nil {
		return nil, &llm.ErrProviderUnavailable{}
	}
	ctx = llm.WithPurpose(ctx, "ask")

	req := llm.Request{
		System: askSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAskUserMessage(q)},
		},
		Schema:      AnswerSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	var out answerOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse answer response: %w", err)
	}
	if strings.TrimSpace(out.Answer) == "" {
		return nil, fmt.Errorf("answer question: empty answer")
	}
	return &Answer{Markup: out.Answer}, nil
}

// Request starts answering q in the background. A newer request supersedes
// any answer still pending.
func (s *Service) Request(ctx context.Context, q Question) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.pending, s.err, s.ready = nil, nil, false
	s.mu.Unlock()

	go func() {
		answer, err := s.Ask(ctx, q)
		if err != nil {
			s.log.Warn("question failed", "lesson", q.LessonID, "step", q.StepIndex, "error", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			return
		}
		s.pending = answer
		s.err = err
		s.ready = true
	}()
}

// Result is a finished background request. A failed request carries the
// fallback answer along with its error.
type Result struct {
	Answer *Answer
	Err    error
}

// Consume returns the pending result once it is ready and clears the slot.
func (s *Service) Consume() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Result{}, false
	}
	res := Result{Answer: s.pending, Err: s.err}
	s.pending, s.err, s.ready = nil, nil, false
	if res.Err != nil {
		res.Answer = &Answer{Markup: FallbackAnswer}
	}
	return res, true
}

// Cancel drops any pending or in-flight answer.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.pending, s.err, s.ready = nil, nil, false
}
