// Package timeline builds and drives per-step reveal animations and keeps
// exactly one of them live for the step on screen.
package timeline

import (
	"sort"
	"time"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/scene"
)

// State is the playback state of a Timeline.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Position places a tween relative to the timeline cursor, which sits at the
// end of the most recently added tween.
type Position struct {
	abs    bool
	offset time.Duration
}

// After places a tween gap after the cursor. A negative gap overlaps the
// previous tween.
func After(gap time.Duration) Position { return Position{offset: gap} }

// At places a tween at an absolute offset.
func At(t time.Duration) Position { return Position{abs: true, offset: t} }

// Timeline is an ordered set of tweens driven by clock frames.
//
// Like clock.Scheduler, every method must be called with the owner's lock
// held, and frame callbacks run under it.
type Timeline struct {
	sched  *clock.Scheduler
	tweens []*Tween
	cursor time.Duration
	dur    time.Duration

	state   State
	started bool
	pos     time.Duration
	// wall time and position at which the current playing segment began
	anchor    time.Time
	anchorPos time.Duration
	frame     *clock.Task

	// OnHook receives Begin/Complete hook names as playback crosses them.
	OnHook func(name string)
	// OnComplete runs once each time playback reaches the end.
	OnComplete func()
}

// New creates an empty timeline driven by sched.
func New(sched *clock.Scheduler) *Timeline {
	return &Timeline{sched: sched}
}

// Add appends tw at pos and moves the cursor to its end.
func (tl *Timeline) Add(tw *Tween, pos Position) *Tween {
	if tl.state == StateCancelled {
		return tw
	}
	start := pos.offset
	if !pos.abs {
		start += tl.cursor
	}
	if start < 0 {
		start = 0
	}
	tw.start = start
	tl.tweens = append(tl.tweens, tw)
	sort.SliceStable(tl.tweens, func(i, j int) bool { return tl.tweens[i].start < tl.tweens[j].start })
	tl.cursor = tw.End()
	if tw.End() > tl.dur {
		tl.dur = tw.End()
	}
	return tw
}

// Set adds a zero-length tween that puts targets into style at offset 0.
func (tl *Timeline) Set(targets []*scene.Element, style scene.Style, props Prop) {
	if len(targets) == 0 {
		return
	}
	cursor := tl.cursor
	tl.Add(&Tween{Targets: targets, To: style, Props: props}, At(0))
	tl.cursor = cursor
}

// Duration is the end offset of the last tween.
func (tl *Timeline) Duration() time.Duration { return tl.dur }

// Position is the last applied offset.
func (tl *Timeline) Position() time.Duration { return tl.pos }

// State reports the playback state.
func (tl *Timeline) State() State { return tl.state }

// Started reports whether Play has been called since the timeline was built.
func (tl *Timeline) Started() bool { return tl.started }

// Len returns the number of tweens.
func (tl *Timeline) Len() int { return len(tl.tweens) }

// Play starts playback at from, clamped into [0, Duration].
func (tl *Timeline) Play(from time.Duration) {
	if tl.state == StateCancelled {
		return
	}
	tl.started = true
	tl.pos = tl.clamp(from)
	tl.apply(tl.pos)
	tl.run()
}

// Pause freezes playback at the current offset.
func (tl *Timeline) Pause() {
	if tl.state != StatePlaying {
		return
	}
	tl.advance()
	tl.frame.Cancel()
	tl.frame = nil
	if tl.state == StatePlaying {
		tl.state = StatePaused
	}
}

// Resume continues a paused timeline from where it stopped.
func (tl *Timeline) Resume() {
	if tl.state != StatePaused {
		return
	}
	tl.run()
}

// Seek moves to elapsed, clamped into [0, Duration], and applies the styles
// for that offset. Seeking never fires hooks. A playing timeline keeps
// playing from the new offset.
func (tl *Timeline) Seek(elapsed time.Duration) {
	if tl.state == StateCancelled {
		return
	}
	tl.pos = tl.clamp(elapsed)
	tl.apply(tl.pos)
	switch tl.state {
	case StatePlaying:
		tl.anchor = tl.sched.Clock().Now()
		tl.anchorPos = tl.pos
	case StateDone:
		if tl.pos < tl.dur {
			tl.state = StatePaused
		}
	}
}

// Cancel stops the timeline for good. Nothing it owns is mutated afterwards.
func (tl *Timeline) Cancel() {
	if tl.state == StateCancelled {
		return
	}
	tl.frame.Cancel()
	tl.frame = nil
	tl.state = StateCancelled
}

func (tl *Timeline) clamp(d time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d > tl.dur:
		return tl.dur
	}
	return d
}

func (tl *Timeline) run() {
	if tl.pos >= tl.dur {
		tl.finish()
		return
	}
	tl.state = StatePlaying
	tl.anchor = tl.sched.Clock().Now()
	tl.anchorPos = tl.pos
	tl.frame = tl.sched.Frame(tl.onFrame)
}

func (tl *Timeline) onFrame() {
	if tl.state != StatePlaying {
		return
	}
	tl.advance()
	if tl.state == StatePlaying {
		tl.frame = tl.sched.Frame(tl.onFrame)
	}
}

// advance moves the position to the wall-clock offset, firing hooks crossed
// on the way.
func (tl *Timeline) advance() {
	next := tl.clamp(tl.anchorPos + tl.sched.Clock().Now().Sub(tl.anchor))
	tl.hooks(tl.pos, next)
	tl.pos = next
	tl.apply(next)
	if next >= tl.dur {
		tl.finish()
	}
}

func (tl *Timeline) finish() {
	tl.frame.Cancel()
	tl.frame = nil
	tl.state = StateDone
	if tl.OnComplete != nil {
		tl.OnComplete()
	}
}

func (tl *Timeline) hooks(from, to time.Duration) {
	if tl.OnHook == nil || to <= from {
		return
	}
	for _, tw := range tl.tweens {
		if tw.Begin != "" && from <= tw.start && tw.start < to {
			tl.OnHook(tw.Begin)
		}
		if end := tw.End(); tw.Complete != "" && from < end && end <= to {
			tl.OnHook(tw.Complete)
		}
	}
}

// apply writes every target's style for offset t. Tweens are applied in start
// order; a tween that has not started yet only writes its From state when no
// earlier tween has written the same property of that target.
func (tl *Timeline) apply(t time.Duration) {
	touched := make(map[*scene.Element]Prop)
	for _, tw := range tl.tweens {
		for i, el := range tw.Targets {
			if !el.Connected() {
				continue
			}
			p, started := tw.progress(i, t)
			if !started && touched[el]&tw.Props != 0 {
				continue
			}
			tw.write(el, tw.from(i), p)
			touched[el] |= tw.Props
		}
	}
}
