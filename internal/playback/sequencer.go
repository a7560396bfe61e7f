// Package playback implements the step sequencer: which step of a lesson is
// shown, whether it is advancing, and how far into it playback is.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/logger"
)

// ErrEmptyLesson is returned when loading a lesson without steps.
var ErrEmptyLesson = errors.New("lesson has no steps")

// DefaultTick is the progress tick period while playing.
const DefaultTick = 100 * time.Millisecond

// Config holds sequencer timings.
type Config struct {
	Tick time.Duration
}

// Sequencer is the playback state machine.
//
// Every transition that changes the step index or the playing flag
// invalidates the scheduler epoch before re-arming the auto-advance and tick
// timers, so at most one of each is ever armed and nothing scheduled before a
// transition fires after it.
type Sequencer struct {
	mu        sync.Mutex
	sched     *clock.Scheduler
	tick      time.Duration
	anim      Animator
	listeners []Listener
	log       *logger.Logger

	lesson *lesson.Lesson
	index  int
	state  State
	// elapsed is authoritative while not playing; while playing the
	// position is segBase plus the time since segStart.
	elapsed  time.Duration
	segStart time.Time
	segBase  time.Duration
	ticks    int
}

// New creates an idle sequencer. A nil animator is allowed.
func New(c clock.Clock, anim Animator, cfg Config, log *logger.Logger) *Sequencer {
	if anim == nil {
		anim = nopAnimator{}
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Sequencer{
		tick: cfg.Tick,
		anim: anim,
		log:  log.With("component", "sequencer"),
	}
	s.sched = clock.NewScheduler(c, &s.mu, 0)
	return s
}

// Subscribe adds a listener. Listeners added later see later events only.
func (s *Sequencer) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load replaces any loaded lesson and shows its first step, paused.
func (s *Sequencer) Load(l *lesson.Lesson) error {
	if l == nil || l.StepCount() == 0 {
		return ErrEmptyLesson
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.Invalidate()
	s.lesson = l
	s.index = 0
	s.elapsed = 0
	s.state = Paused
	s.log.Debug("lesson loaded", "lesson", l.ID, "steps", l.StepCount())
	s.emit(EventLoaded)
	s.anim.StepChanged(0, false)
	return nil
}

// Unload cancels every timer and returns to Idle.
func (s *Sequencer) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	s.sched.Invalidate()
	s.emit(EventUnloaded)
	s.lesson = nil
	s.index = 0
	s.elapsed = 0
	s.state = Idle
}

// Play starts or resumes playback for the remainder of the current step.
// Playing a finished last step replays it.
func (s *Sequencer) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused || s.lesson == nil {
		return
	}
	// Only a finished lesson replays its last step. Any other step
	// scrubbed to its end advances as soon as the timer fires.
	replay := s.index == s.lesson.StepCount()-1 && s.elapsed >= s.duration()
	if replay {
		s.elapsed = 0
	}
	s.state = Playing
	s.rearm()
	s.emit(EventPlay)
	if replay {
		s.anim.Seek(0)
	}
	s.anim.PlayingChanged(true)
}

// Pause stops playback and keeps the elapsed time.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return
	}
	s.elapsed = s.current()
	s.state = Paused
	s.rearm()
	s.emit(EventPause)
	s.anim.PlayingChanged(false)
}

// Next moves to the following step. At the last step it does nothing.
func (s *Sequencer) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle || s.index >= s.lesson.StepCount()-1 {
		return
	}
	s.setIndex(s.index + 1)
}

// Prev moves to the preceding step. At the first step it does nothing.
func (s *Sequencer) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle || s.index == 0 {
		return
	}
	s.setIndex(s.index - 1)
}

// Seek jumps to step index, clamped into range. Seeking to the current step
// restarts it.
func (s *Sequencer) Seek(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	s.setIndex(max(0, min(index, s.lesson.StepCount()-1)))
}

// Scrub moves to elapsed within the current step, clamped into
// [0, duration].
func (s *Sequencer) Scrub(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return
	}
	elapsed = max(0, min(elapsed, s.duration()))
	s.elapsed = elapsed
	s.rearm()
	s.anim.Seek(elapsed)
}

// AskQuestion opens the question overlay, pausing playback.
func (s *Sequencer) AskQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle || s.state == PausedForQuestion {
		return
	}
	wasPlaying := s.state == Playing
	if wasPlaying {
		s.elapsed = s.current()
	}
	s.state = PausedForQuestion
	s.rearm()
	s.emit(EventQuestionOpened)
	if wasPlaying {
		s.anim.PlayingChanged(false)
	}
}

// CloseQuestion closes the overlay. Playback stays paused.
func (s *Sequencer) CloseQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != PausedForQuestion {
		return
	}
	s.state = Paused
	s.emit(EventQuestionClosed)
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current state, step and elapsed time.
func (s *Sequencer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Lesson: s.lesson, State: s.state, Index: s.index}
	if s.lesson != nil {
		snap.StepCount = s.lesson.StepCount()
		snap.Elapsed = s.current()
		snap.Duration = s.duration()
	}
	return snap
}

// Pending returns the number of armed timers.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Pending()
}

// Ticks counts progress ticks delivered so far.
func (s *Sequencer) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Sequencer) setIndex(i int) {
	s.index = i
	s.elapsed = 0
	s.rearm()
	s.log.Debug("step changed", "step", i, "state", s.state)
	s.emit(EventStepChanged)
	s.anim.StepChanged(i, s.state == Playing)
}

func (s *Sequencer) rearm() {
	s.sched.Invalidate()
	if s.state != Playing {
		return
	}
	s.segStart = s.sched.Clock().Now()
	s.segBase = s.elapsed
	// Armed before the ticker so it wins a tie at the step's end.
	s.sched.After(s.duration()-s.elapsed, s.autoAdvance)
	s.sched.Every(s.tick, s.onTick)
}

func (s *Sequencer) autoAdvance() {
	if s.state != Playing {
		return
	}
	if s.index < s.lesson.StepCount()-1 {
		s.setIndex(s.index + 1)
		return
	}
	s.elapsed = s.duration()
	s.state = Paused
	s.rearm()
	s.log.Debug("lesson ended", "lesson", s.lesson.ID)
	s.emit(EventEnded)
	s.anim.PlayingChanged(false)
	s.anim.Seek(s.elapsed)
}

func (s *Sequencer) onTick() {
	s.ticks++
	s.anim.Seek(s.current())
}

func (s *Sequencer) current() time.Duration {
	if s.state != Playing {
		return s.elapsed
	}
	e := s.segBase + s.sched.Clock().Now().Sub(s.segStart)
	return max(0, min(e, s.duration()))
}

func (s *Sequencer) duration() time.Duration {
	if s.lesson == nil {
		return 0
	}
	return s.lesson.Step(s.index).Duration.Std()
}

func (s *Sequencer) emit(kind EventKind) {
	if len(s.listeners) == 0 {
		return
	}
	ev := Event{
		Kind:    kind,
		Index:   s.index,
		Elapsed: s.current(),
		At:      s.sched.Clock().Now(),
	}
	if s.lesson != nil {
		ev.LessonID = s.lesson.ID
	}
	for _, l := range s.listeners {
		l(ev)
	}
}
