package timeline

import (
	"sync"
	"time"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/scene"
)

// DocumentSource returns the rendered document and data of a step. It is
// called with the coordinator's lock held.
type DocumentSource func(index int) (*scene.Document, *lesson.Step)

// Config holds the coordinator's timings.
type Config struct {
	Debounce time.Duration
	Frame    time.Duration
	Stage    StageConfig
}

// DefaultConfig returns the timings the player uses.
func DefaultConfig() Config {
	return Config{
		Debounce: 150 * time.Millisecond,
		Frame:    clock.DefaultFrame,
		Stage:    DefaultStageConfig(),
	}
}

// Coordinator owns the single live timeline of the step on screen.
//
// A step change cancels the live timeline at once and schedules a rebuild
// after Debounce; the build itself waits one more frame so the step's
// document has been rendered. Rapid step changes therefore coalesce into one
// build. Play state changes pause or resume the live timeline without
// rebuilding it.
type Coordinator struct {
	lock   sync.Locker
	sched  *clock.Scheduler
	source DocumentSource
	cfg    Config
	log    *logger.Logger

	tl      *Timeline
	index   int
	playing bool
	builds  int
	// seekPos is the last position the sequencer asked for on this step.
	seekPos time.Duration
	onHook  func(name string, at time.Duration)
}

// NewCoordinator creates a coordinator whose timers run under lock.
func NewCoordinator(c clock.Clock, lock sync.Locker, source DocumentSource, cfg Config, log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Nop()
	}
	def := DefaultConfig()
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.Frame <= 0 {
		cfg.Frame = def.Frame
	}
	return &Coordinator{
		lock:   lock,
		sched:  clock.NewScheduler(c, lock, cfg.Frame),
		source: source,
		cfg:    cfg,
		log:    log.With("component", "timeline-coordinator"),
	}
}

// OnHook registers a receiver for authored Begin/Complete hooks, called with
// the hook name and the timeline position. It runs with the coordinator's
// lock held.
func (c *Coordinator) OnHook(f func(name string, at time.Duration)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onHook = f
}

// StepChanged cancels the live timeline and schedules a build for index.
func (c *Coordinator) StepChanged(index int, playing bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.cancel()
	c.index = index
	c.playing = playing
	c.seekPos = 0
	epoch := c.sched.Epoch()
	c.sched.After(c.cfg.Debounce, func() {
		c.sched.Frame(func() { c.build(index, epoch) })
	})
}

// PlayingChanged pauses or resumes the live timeline. The first play of a
// step built while paused starts from the last seek position.
func (c *Coordinator) PlayingChanged(playing bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.playing = playing
	if c.tl == nil {
		return
	}
	switch {
	case !playing:
		c.tl.Pause()
	case !c.tl.Started():
		c.tl.Play(c.seekPos)
	default:
		c.tl.Resume()
	}
}

// Seek moves the live timeline to elapsed.
func (c *Coordinator) Seek(elapsed time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.seekPos = elapsed
	if c.tl != nil {
		c.tl.Seek(elapsed)
	}
}

// Stop cancels the live timeline and any pending build.
func (c *Coordinator) Stop() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cancel()
}

// Live returns the number of live timelines, 0 or 1.
func (c *Coordinator) Live() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.tl == nil || c.tl.State() == StateCancelled {
		return 0
	}
	return 1
}

// Builds counts completed timeline builds.
func (c *Coordinator) Builds() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.builds
}

// Pending returns the number of armed coordinator timers, frames of the
// live timeline included.
func (c *Coordinator) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.sched.Pending()
}

// Progress reports the live timeline's position, duration and state.
func (c *Coordinator) Progress() (pos, dur time.Duration, state State, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.tl == nil {
		return 0, 0, StateIdle, false
	}
	return c.tl.Position(), c.tl.Duration(), c.tl.State(), true
}

func (c *Coordinator) cancel() {
	if c.tl != nil {
		c.tl.Cancel()
		c.tl = nil
	}
	c.sched.Invalidate()
}

func (c *Coordinator) build(index int, epoch uint64) {
	if epoch != c.sched.Epoch() || index != c.index {
		c.log.Debug("dropping superseded timeline build", "step", index)
		return
	}
	doc, step := c.source(index)
	if doc == nil || !doc.Connected() {
		c.log.Debug("no document for step, skipping timeline", "step", index)
		return
	}

	tl := New(c.sched)
	tl.OnHook = c.hook
	Stage(tl, doc, step, c.cfg.Stage, c.log)
	c.tl = tl
	c.builds++

	if c.playing {
		tl.Play(0)
		return
	}
	// Paused steps show their fully revealed frame until played.
	tl.Seek(tl.Duration())
}

func (c *Coordinator) hook(name string) {
	c.log.Debug("animation hook", "hook", name, "step", c.index)
	if c.onHook != nil && c.tl != nil {
		c.onHook(name, c.tl.Position())
	}
}
