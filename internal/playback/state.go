package playback

import (
	"time"

	"github.com/abhisek/lessonplay/internal/lesson"
)

// State is the sequencer's playback state.
type State int

const (
	Idle State = iota
	Paused
	Playing
	PausedForQuestion
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case PausedForQuestion:
		return "paused-for-question"
	default:
		return "idle"
	}
}

// EventKind identifies a sequencer transition.
type EventKind string

const (
	EventLoaded         EventKind = "loaded"
	EventStepChanged    EventKind = "step-changed"
	EventPlay           EventKind = "play"
	EventPause          EventKind = "pause"
	EventEnded          EventKind = "ended"
	EventQuestionOpened EventKind = "question-opened"
	EventQuestionClosed EventKind = "question-closed"
	EventUnloaded       EventKind = "unloaded"
)

// Event describes a transition after it has been applied.
type Event struct {
	Kind     EventKind
	LessonID string
	Index    int
	Elapsed  time.Duration
	At       time.Time
}

// Listener receives events with the sequencer's lock held. It must not call
// back into the sequencer.
type Listener func(Event)

// Animator follows the sequencer. Its methods are called with the sequencer's
// lock held.
type Animator interface {
	// StepChanged reports a new step index and whether playback is running.
	StepChanged(index int, playing bool)
	// PlayingChanged reports a play/pause transition on the same step.
	PlayingChanged(playing bool)
	// Seek reports the elapsed time within the current step.
	Seek(elapsed time.Duration)
}

type nopAnimator struct{}

func (nopAnimator) StepChanged(int, bool) {}
func (nopAnimator) PlayingChanged(bool)   {}
func (nopAnimator) Seek(time.Duration)    {}

// Snapshot is a consistent copy of the sequencer's state.
type Snapshot struct {
	Lesson    *lesson.Lesson
	State     State
	Index     int
	StepCount int
	Elapsed   time.Duration
	Duration  time.Duration
}

// Playing reports whether the snapshot was taken while playing.
func (s Snapshot) Playing() bool { return s.State == Playing }

// Remaining is the time left in the current step.
func (s Snapshot) Remaining() time.Duration { return s.Duration - s.Elapsed }
