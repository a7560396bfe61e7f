package timeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/scene"
)

type coordEnv struct {
	mu    sync.Mutex
	clk   *clock.Fake
	docs  map[int]*scene.Document
	step  *lesson.Step
	calls []int
	coord *Coordinator
}

func newCoordEnv(t *testing.T, steps int) *coordEnv {
	t.Helper()
	e := &coordEnv{clk: clock.NewFake(time.Unix(0, 0)), docs: make(map[int]*scene.Document), step: &lesson.Step{}}
	for i := 0; i < steps; i++ {
		doc, err := scene.Parse("Step", stagedMarkup)
		require.NoError(t, err)
		e.docs[i] = doc
	}
	source := func(i int) (*scene.Document, *lesson.Step) {
		e.calls = append(e.calls, i)
		return e.docs[i], e.step
	}
	e.coord = NewCoordinator(e.clk, &e.mu, source, DefaultConfig(), nil)
	return e
}

func (e *coordEnv) settle() {
	e.clk.Advance(DefaultConfig().Debounce + DefaultConfig().Frame)
}

func TestCoordinator_DebouncedFrameDeferredBuild(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, true)

	e.clk.Advance(149 * time.Millisecond)
	assert.Equal(t, 0, e.coord.Builds())
	e.clk.Advance(time.Millisecond)
	assert.Equal(t, 0, e.coord.Builds(), "build waits a frame after the debounce")
	e.clk.Advance(clock.DefaultFrame)
	assert.Equal(t, 1, e.coord.Builds())

	_, _, state, ok := e.coord.Progress()
	require.True(t, ok)
	assert.Equal(t, StatePlaying, state)
}

func TestCoordinator_RapidStepChangesCoalesce(t *testing.T) {
	e := newCoordEnv(t, 5)
	for i := 0; i < 5; i++ {
		e.coord.StepChanged(i, true)
		e.clk.Advance(20 * time.Millisecond)
	}
	e.settle()

	assert.Equal(t, 1, e.coord.Builds())
	assert.Equal(t, []int{4}, e.calls)
	assert.Equal(t, 1, e.coord.Live())
}

func TestCoordinator_StepChangeCancelsLiveTimeline(t *testing.T) {
	e := newCoordEnv(t, 2)
	e.coord.StepChanged(0, true)
	e.settle()
	require.Equal(t, 1, e.coord.Live())

	first := e.docs[0].Query("p")[0]
	e.clk.Advance(400 * time.Millisecond)
	e.coord.StepChanged(1, true)
	assert.Equal(t, 0, e.coord.Live(), "old timeline is cancelled before the debounce elapses")

	frozen := first.Style
	e.settle()
	e.clk.Advance(2 * time.Second)
	assert.Equal(t, frozen, first.Style, "superseded timeline kept animating")
	assert.Equal(t, 1, e.coord.Live())
	assert.Equal(t, 2, e.coord.Builds())
}

func TestCoordinator_PausedBuildShowsFinalFrame(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, false)
	e.settle()

	chart := e.docs[0].OfKind(scene.KindChart)[0]
	assert.Equal(t, scene.Shown, chart.Style)
	pos, dur, state, _ := e.coord.Progress()
	assert.Equal(t, dur, pos)
	assert.Equal(t, StateIdle, state)

	e.coord.PlayingChanged(true)
	_, _, state, _ = e.coord.Progress()
	assert.Equal(t, StatePlaying, state)
	assert.Equal(t, 0.0, chart.Style.Opacity, "first play restarts the reveal")
}

func TestCoordinator_PlayPauseDoesNotRebuild(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, true)
	e.settle()
	e.clk.Advance(100 * time.Millisecond)

	e.coord.PlayingChanged(false)
	pos, _, state, _ := e.coord.Progress()
	assert.Equal(t, StatePaused, state)
	e.clk.Advance(time.Second)
	again, _, _, _ := e.coord.Progress()
	assert.Equal(t, pos, again)

	e.coord.PlayingChanged(true)
	e.clk.Advance(3 * clock.DefaultFrame)
	resumed, _, state, _ := e.coord.Progress()
	assert.Equal(t, StatePlaying, state)
	assert.Equal(t, pos+3*clock.DefaultFrame, resumed)
	assert.Equal(t, 1, e.coord.Builds())
}

func TestCoordinator_PlayBeforeBuildStartsOnBuild(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, false)
	e.clk.Advance(50 * time.Millisecond)
	e.coord.PlayingChanged(true)
	e.clk.Advance(DefaultConfig().Debounce + DefaultConfig().Frame - 50*time.Millisecond)
	require.Equal(t, 1, e.coord.Builds())

	pos, _, state, _ := e.coord.Progress()
	assert.Equal(t, StatePlaying, state)
	assert.Equal(t, time.Duration(0), pos)
}

func TestCoordinator_FirstPlayStartsAtLastSeek(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, false)
	e.coord.Seek(250 * time.Millisecond)
	e.settle()
	pos, dur, _, _ := e.coord.Progress()
	require.Equal(t, dur, pos, "paused build still shows the final frame")

	e.coord.PlayingChanged(true)
	pos, _, state, _ := e.coord.Progress()
	assert.Equal(t, StatePlaying, state)
	assert.Equal(t, 250*time.Millisecond, pos)

	e.coord.StepChanged(0, false)
	e.settle()
	e.coord.PlayingChanged(true)
	pos, _, _, _ = e.coord.Progress()
	assert.Equal(t, time.Duration(0), pos, "a step change forgets the old position")
}

func TestCoordinator_HooksReachReceiver(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.step = &lesson.Step{Animations: []lesson.AnimationSequence{{
		ID:        "pulse",
		StartTime: 300,
		Targets: []lesson.AnimationTarget{
			{Target: ".callout", Properties: map[string]float64{"highlight": 1}, Duration: 200, Begin: "pulse-start", Complete: "pulse-done"},
		},
	}}}
	var got []string
	e.coord.OnHook(func(name string, at time.Duration) {
		got = append(got, name)
		assert.GreaterOrEqual(t, at, time.Duration(0))
	})

	e.coord.StepChanged(0, true)
	e.settle()
	e.clk.Advance(10 * time.Second)

	e.mu.Lock()
	defer e.mu.Unlock()
	assert.Equal(t, []string{"pulse-start", "pulse-done"}, got)
}

func TestCoordinator_SeekClamps(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, false)
	e.settle()

	e.coord.Seek(-5 * time.Second)
	pos, _, _, _ := e.coord.Progress()
	assert.Equal(t, time.Duration(0), pos)

	e.coord.Seek(time.Hour)
	pos, dur, _, _ := e.coord.Progress()
	assert.Equal(t, dur, pos)
}

func TestCoordinator_StopLeavesNothingArmed(t *testing.T) {
	e := newCoordEnv(t, 2)
	e.coord.StepChanged(0, true)
	e.settle()
	e.coord.StepChanged(1, true)

	e.coord.Stop()
	assert.Equal(t, 0, e.coord.Pending())
	assert.Equal(t, 0, e.clk.Pending())
	e.clk.Advance(10 * time.Second)
	assert.Equal(t, 1, e.coord.Builds())
	assert.Equal(t, 0, e.coord.Live())
}

func TestCoordinator_DetachedDocumentIsSkipped(t *testing.T) {
	e := newCoordEnv(t, 1)
	e.coord.StepChanged(0, true)
	e.mu.Lock()
	e.docs[0].Detach()
	e.mu.Unlock()
	e.settle()

	assert.Equal(t, 0, e.coord.Builds())
	assert.Equal(t, 0, e.coord.Live())
}
