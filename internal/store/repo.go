package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// PlaybackEventData captures one sequencer transition.
type PlaybackEventData struct {
	SessionID string
	LessonID  string
	Kind      string
	StepIndex int
	ElapsedMs int64
}

// PlaybackEvent is a stored playback event.
type PlaybackEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	PlaybackEventData
}

// QuestionEventData captures one question asked during playback.
type QuestionEventData struct {
	SessionID    string
	LessonID     string
	StepIndex    int
	Question     string
	Answer       string
	Success      bool
	ErrorMessage string
}

// QuestionEvent is a stored question event.
type QuestionEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	QuestionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendPlaybackEvent records a sequencer transition.
	AppendPlaybackEvent(ctx context.Context, data PlaybackEventData) error
	// AppendQuestionEvent records a question and its outcome.
	AppendQuestionEvent(ctx context.Context, data QuestionEventData) error
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryPlaybackEvents returns playback events, newest first. An empty
	// lessonID matches every lesson.
	QueryPlaybackEvents(ctx context.Context, lessonID string, opts QueryOpts) ([]PlaybackEvent, error)
	// QueryQuestionEvents returns question events, newest first.
	QueryQuestionEvents(ctx context.Context, opts QueryOpts) ([]QuestionEvent, error)
	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)
	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)
	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// ProgressRepo remembers where each lesson was left off.
type ProgressRepo interface {
	// SavePosition stores the last shown step of a lesson.
	SavePosition(ctx context.Context, lessonID string, step int) error
	// Position returns the stored step and whether one exists.
	Position(ctx context.Context, lessonID string) (int, bool, error)
}
