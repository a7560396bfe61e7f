package playback

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/lesson"
)

type spyAnimator struct {
	steps   []int
	playing []bool
	seeks   []time.Duration
}

func (a *spyAnimator) StepChanged(index int, playing bool) { a.steps = append(a.steps, index) }
func (a *spyAnimator) PlayingChanged(playing bool) { a.playing = append(a.playing, playing) }
func (a *spyAnimator) Seek(elapsed time.Duration) { a.seeks = append(a.seeks, elapsed) }

func testLesson(durations ...lesson.Millis) *lesson.Lesson {
	l := &lesson.Lesson{ID: "test", Title: "Test"}
	for i, d := range durations {
		l.Steps = append(l.Steps, lesson.Step{ID: string(rune('a' + i)), Title: "Step", Duration: d})
	}
	return l
}

type fixture struct {
	clk    *clock.Fake
	anim   *spyAnimator
	seq    *Sequencer
	events []Event
}

func newFixture(t *testing.T, durations ...lesson.Millis) *fixture {
	t.Helper()
	f := &fixture{clk: clock.NewFake(time.Unix(0, 0)), anim: &spyAnimator{}}
	f.seq = New(f.clk, f.anim, Config{}, nil)
	f.seq.Subscribe(func(ev Event) { f.events = append(f.events, ev) })
	require.NoError(t, f.seq.Load(testLesson(durations...)))
	return f
}

func (f *fixture) count(kind EventKind) int {
	n := 0
	for _, ev := range f.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestLoad(t *testing.T) {
	f := newFixture(t, 1000, 2000)
	snap := f.seq.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 2, snap.StepCount)
	assert.Equal(t, time.Duration(0), snap.Elapsed)
	assert.Equal(t, time.Second, snap.Duration)
	assert.Equal(t, []int{0}, f.anim.steps)
	assert.Equal(t, 0, f.seq.Pending())

	seq := New(f.clk, nil, Config{}, nil)
	assert.ErrorIs(t, seq.Load(nil), ErrEmptyLesson)
	assert.ErrorIs(t, seq.Load(&lesson.Lesson{ID: "empty"}), ErrEmptyLesson)
	assert.Equal(t, Idle, seq.State())
}

func TestIdleIgnoresIntents(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	anim := &spyAnimator{}
	seq := New(clk, anim, Config{}, nil)

	seq.Play()
	seq.Next()
	seq.Prev()
	seq.Seek(3)
	seq.Scrub(time.Second)
	seq.AskQuestion()
	seq.CloseQuestion()

	assert.Equal(t, Idle, seq.State())
	assert.Equal(t, 0, clk.Pending())
	assert.Empty(t, anim.steps)
	assert.Empty(t, anim.seeks)
}

func TestPlayPauseTicks(t *testing.T) {
	f := newFixture(t, 1000)
	f.seq.Play()
	assert.Equal(t, Playing, f.seq.State())
	assert.Equal(t, 2, f.seq.Pending(), "auto-advance and tick")

	f.clk.Advance(250 * time.Millisecond)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, f.anim.seeks)
	assert.Equal(t, 250*time.Millisecond, f.seq.Snapshot().Elapsed)

	f.seq.Pause()
	assert.Equal(t, 0, f.seq.Pending())
	ticks := f.seq.Ticks()
	f.clk.Advance(5 * time.Second)
	assert.Equal(t, ticks, f.seq.Ticks(), "tick after pause")
	assert.Equal(t, 250*time.Millisecond, f.seq.Snapshot().Elapsed)
	assert.Equal(t, []bool{true, false}, f.anim.playing)

	f.seq.Play()
	f.seq.Play()
	assert.Equal(t, 1, f.count(EventPause))
	assert.Equal(t, 2, f.count(EventPlay))
}

func TestNextPrevClampAndReset(t *testing.T) {
	f := newFixture(t, 1000, 1000, 1000)

	f.seq.Prev()
	assert.Equal(t, 0, f.seq.Snapshot().Index)
	assert.Equal(t, 0, f.count(EventStepChanged), "prev at the first step is a no-op")

	f.seq.Play()
	f.clk.Advance(300 * time.Millisecond)
	f.seq.Next()
	snap := f.seq.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, time.Duration(0), snap.Elapsed)
	assert.Equal(t, Playing, snap.State, "navigation keeps the playing flag")

	f.seq.Pause()
	f.seq.Next()
	f.seq.Next()
	f.seq.Next()
	snap = f.seq.Snapshot()
	assert.Equal(t, 2, snap.Index)
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, []int{0, 1, 2}, f.anim.steps)
}

func TestAutoAdvanceFiresOnce(t *testing.T) {
	f := newFixture(t, 1000, 1000)
	f.seq.Play()

	f.clk.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, f.seq.Snapshot().Index)
	f.clk.Advance(time.Millisecond)
	assert.Equal(t, 1, f.seq.Snapshot().Index)
	assert.Equal(t, 1, f.count(EventStepChanged))
	assert.Equal(t, time.Duration(0), f.seq.Snapshot().Elapsed)

	f.clk.Advance(1000 * time.Millisecond)
	snap := f.seq.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, time.Second, snap.Elapsed, "elapsed pinned to the step duration")
	assert.Equal(t, 1, f.count(EventEnded))
	assert.Equal(t, 0, f.seq.Pending())

	f.clk.Advance(10 * time.Second)
	assert.Equal(t, 1, f.count(EventStepChanged))
	assert.Equal(t, 1, f.count(EventEnded))
}

func TestPlayAfterEndReplaysLastStep(t *testing.T) {
	f := newFixture(t, 500)
	f.seq.Play()
	f.clk.Advance(500 * time.Millisecond)
	require.Equal(t, Paused, f.seq.State())

	f.seq.Play()
	snap := f.seq.Snapshot()
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, time.Duration(0), snap.Elapsed)
	f.clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 2, f.count(EventEnded))
}

func TestPlayAtEndOfEarlierStepAdvances(t *testing.T) {
	f := newFixture(t, 1000, 2000)
	f.seq.Scrub(time.Second)
	f.seq.Play()
	assert.Equal(t, time.Second, f.seq.Snapshot().Elapsed, "no replay before the last step")

	f.clk.Advance(10 * time.Millisecond)
	snap := f.seq.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, Playing, snap.State)
	assert.Equal(t, 10*time.Millisecond, snap.Elapsed)
}

func TestRapidNextArmsOneAdvance(t *testing.T) {
	f := newFixture(t, 1000, 1000, 1000, 1000, 1000, 1000, 1000)
	f.seq.Play()
	for i := 0; i < 5; i++ {
		f.seq.Next()
	}
	assert.Equal(t, 5, f.seq.Snapshot().Index)
	assert.Equal(t, 2, f.seq.Pending())
	assert.Equal(t, 2, f.clk.Pending())

	f.clk.Advance(time.Second)
	assert.Equal(t, 6, f.seq.Snapshot().Index)
	assert.Equal(t, 6, f.count(EventStepChanged))
}

func TestQuestionForcesPause(t *testing.T) {
	f := newFixture(t, 2000)
	f.seq.Play()
	f.clk.Advance(300 * time.Millisecond)

	f.seq.AskQuestion()
	assert.Equal(t, PausedForQuestion, f.seq.State())
	assert.Equal(t, 0, f.seq.Pending())

	f.seq.Play()
	assert.Equal(t, PausedForQuestion, f.seq.State(), "play is suppressed while asking")

	f.seq.CloseQuestion()
	snap := f.seq.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.Equal(t, 300*time.Millisecond, snap.Elapsed)
	assert.Equal(t, []bool{true, false}, f.anim.playing)

	f.seq.AskQuestion()
	f.seq.CloseQuestion()
	assert.Equal(t, Paused, f.seq.State())
	assert.Equal(t, 2, f.count(EventQuestionOpened))
	assert.Equal(t, []bool{true, false}, f.anim.playing, "asking while paused reports no play change")
}

func TestScrubClamps(t *testing.T) {
	f := newFixture(t, 1000)

	f.seq.Scrub(-time.Second)
	assert.Equal(t, time.Duration(0), f.seq.Snapshot().Elapsed)
	f.seq.Scrub(time.Hour)
	assert.Equal(t, time.Second, f.seq.Snapshot().Elapsed)
	f.seq.Scrub(400 * time.Millisecond)
	assert.Equal(t, []time.Duration{0, time.Second, 400 * time.Millisecond}, f.anim.seeks)

	f.seq.Play()
	f.clk.Advance(599 * time.Millisecond)
	assert.Equal(t, Playing, f.seq.State())
	f.clk.Advance(time.Millisecond)
	assert.Equal(t, Paused, f.seq.State())
}

func TestSeekStep(t *testing.T) {
	f := newFixture(t, 1000, 1000, 1000)
	f.seq.Seek(7)
	assert.Equal(t, 2, f.seq.Snapshot().Index)
	f.seq.Seek(-1)
	assert.Equal(t, 0, f.seq.Snapshot().Index)

	f.seq.Scrub(500 * time.Millisecond)
	f.seq.Seek(0)
	assert.Equal(t, time.Duration(0), f.seq.Snapshot().Elapsed, "seeking to the current step restarts it")
	assert.Equal(t, []int{0, 2, 0, 0}, f.anim.steps)
}

func TestScenarioResumeForRemainder(t *testing.T) {
	f := newFixture(t, 1000, 2000, 1500)
	f.seq.Play()

	f.clk.Advance(1000 * time.Millisecond)
	snap := f.seq.Snapshot()
	require.Equal(t, 1, snap.Index)
	assert.Equal(t, time.Duration(0), snap.Elapsed)

	f.clk.Advance(500 * time.Millisecond)
	f.seq.Pause()
	snap = f.seq.Snapshot()
	assert.Equal(t, 500*time.Millisecond, snap.Elapsed)
	assert.Equal(t, 1500*time.Millisecond, snap.Remaining())

	f.seq.Play()
	f.clk.Advance(1499 * time.Millisecond)
	assert.Equal(t, 1, f.seq.Snapshot().Index)
	f.clk.Advance(time.Millisecond)
	assert.Equal(t, 2, f.seq.Snapshot().Index)
}

func TestUnloadStopsEverything(t *testing.T) {
	f := newFixture(t, 1000, 1000)
	f.seq.Play()
	f.clk.Advance(450 * time.Millisecond)

	f.seq.Unload()
	assert.Equal(t, Idle, f.seq.State())
	assert.Equal(t, 0, f.clk.Pending())

	ticks, seeks, events := f.seq.Ticks(), len(f.anim.seeks), len(f.events)
	f.clk.Advance(time.Minute)
	assert.Equal(t, ticks, f.seq.Ticks())
	assert.Len(t, f.anim.seeks, seeks)
	assert.Len(t, f.events, events)
	assert.Equal(t, EventUnloaded, f.events[len(f.events)-1].Kind)
	assert.Equal(t, "test", f.events[len(f.events)-1].LessonID)
}

func TestElapsedStaysInBounds(t *testing.T) {
	f := newFixture(t, 700, 1300, 400, 900)
	rng := rand.New(rand.NewSource(7))

	last := f.seq.Snapshot().Index
	for i := 0; i < 2000; i++ {
		switch rng.Intn(5) {
		case 0:
			f.seq.Play()
		case 1:
			f.seq.Pause()
		case 2:
			f.seq.Next()
		case 3:
			f.seq.Prev()
		}
		snap := f.seq.Snapshot()
		if snap.Index != last {
			if snap.Elapsed != 0 {
				t.Fatalf("step %d entered with elapsed %v", snap.Index, snap.Elapsed)
			}
			last = snap.Index
		}

		f.clk.Advance(time.Duration(rng.Intn(400)) * time.Millisecond)
		snap = f.seq.Snapshot()
		if snap.Elapsed < 0 || snap.Elapsed > snap.Duration {
			t.Fatalf("elapsed %v outside [0, %v] at step %d", snap.Elapsed, snap.Duration, snap.Index)
		}
		last = snap.Index
		if f.seq.Pending() > 2 {
			t.Fatalf("%d timers armed", f.seq.Pending())
		}
	}
}
