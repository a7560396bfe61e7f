// Package player hosts one lesson view: it loads lessons, drives the step
// sequencer, renders each step's document, keeps its reveal timeline in sync
// and answers questions about the step on screen.
package player

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lessonplay/internal/ask"
	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/playback"
	"github.com/abhisek/lessonplay/internal/render"
	"github.com/abhisek/lessonplay/internal/scene"
	"github.com/abhisek/lessonplay/internal/store"
	"github.com/abhisek/lessonplay/internal/timeline"
)

// ErrNoLesson is returned by intents that need a loaded lesson.
var ErrNoLesson = errors.New("no lesson loaded")

// Options wires a Player. Fetcher is required; everything else has a
// usable zero value.
type Options struct {
	Clock     clock.Clock
	Fetcher   lesson.Fetcher
	Math      render.MathRenderer
	Charts    render.ChartRenderer
	Sequencer playback.Config
	Timeline  timeline.Config
	Bridge    render.BridgeConfig
	Ask       *ask.Service
	Events    store.EventRepo
	Progress  store.ProgressRepo
	Log       *logger.Logger
}

// Player is the presentation host for one lesson view.
//
// Locks are taken in the order loader, sequencer, view. The view lock is
// shared by the coordinator and the render bridge; nothing that holds it
// calls into the sequencer.
type Player struct {
	log      *logger.Logger
	loader   *lesson.Loader
	seq      *playback.Sequencer
	coord    *timeline.Coordinator
	bridge   *render.Bridge
	math     render.MathRenderer
	asker    *ask.Service
	progress store.ProgressRepo
	rec      *recorder
	session  string

	view     sync.Mutex
	lesson   *lesson.Lesson
	doc      *scene.Document
	step     *lesson.Step
	index    int
	loading  string
	loadErr  error
	resume   int
	question question
	closed   bool
}

type question struct {
	open    bool
	pending bool
	index   int
	text    string
	answer  *scene.Document
	err     error
}

// New creates a Player with nothing loaded.
func New(opts Options) *Player {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Math == nil {
		opts.Math = render.UnicodeMath{}
	}
	if opts.Bridge.PollInterval <= 0 && opts.Bridge.NewCanvas == nil {
		opts.Bridge = render.DefaultBridgeConfig()
	}

	p := &Player{
		log:      opts.Log.With("component", "player"),
		loader:   lesson.NewLoader(opts.Fetcher, opts.Log),
		math:     opts.Math,
		asker:    opts.Ask,
		progress: opts.Progress,
		session:  uuid.NewString(),
		resume:   -1,
	}
	p.rec = newRecorder(opts.Events, opts.Progress, p.session, opts.Log)
	p.coord = timeline.NewCoordinator(opts.Clock, &p.view, p.document, opts.Timeline, opts.Log)
	p.coord.OnHook(p.hookFired)
	p.bridge = render.NewBridge(opts.Clock, &p.view, opts.Math, opts.Charts, opts.Bridge, opts.Log)
	p.seq = playback.New(opts.Clock, (*animator)(p), opts.Sequencer, opts.Log)
	p.seq.Subscribe(p.rec.playback)
	return p
}

// Session returns the id events of this player are recorded under.
func (p *Player) Session() string { return p.session }

// Open fetches lesson id in the background and shows it once it arrives,
// replacing whatever is loaded. A newer Open supersedes this one.
func (p *Player) Open(ctx context.Context, id string) {
	p.OpenAt(ctx, id, -1)
}

// OpenAt is Open, starting at step when step is not negative.
func (p *Player) OpenAt(ctx context.Context, id string, step int) {
	p.view.Lock()
	if p.closed {
		p.view.Unlock()
		return
	}
	p.loading = id
	p.loadErr = nil
	p.view.Unlock()

	p.loader.Load(ctx, id, func(l *lesson.Lesson, err error) {
		p.apply(ctx, id, l, err, step)
	})
}

// Wait blocks until background lesson loads have finished.
func (p *Player) Wait() {
	p.loader.Wait()
}

func (p *Player) apply(ctx context.Context, id string, l *lesson.Lesson, err error, step int) {
	p.teardown()

	if err == nil && l.StepCount() == 0 {
		err = playback.ErrEmptyLesson
	}

	resume := -1
	if err == nil && p.progress != nil {
		if at, ok, perr := p.progress.Position(ctx, l.ID); perr != nil {
			p.log.Warn("load resume position failed", "lesson", l.ID, "err", perr)
		} else if ok && at > 0 && at < l.StepCount() {
			resume = at
		}
	}

	p.view.Lock()
	if p.closed {
		p.view.Unlock()
		return
	}
	p.loading = ""
	p.loadErr = err
	p.resume = resume
	if err != nil {
		p.lesson = nil
		p.view.Unlock()
		return
	}
	p.lesson = l
	p.view.Unlock()

	if err := p.seq.Load(l); err != nil {
		p.log.Error("load lesson into sequencer", "lesson", id, "err", err)
		return
	}
	if step >= 0 {
		p.seq.Seek(step)
	}
}

// teardown destroys the current view state.
func (p *Player) teardown() {
	p.seq.Unload()
	p.coord.Stop()
	p.bridge.Reset()
	if p.asker != nil {
		p.asker.Cancel()
	}

	p.view.Lock()
	defer p.view.Unlock()
	if p.doc != nil {
		p.doc.Detach()
	}
	p.doc, p.step, p.lesson = nil, nil, nil
	p.question = question{}
}

// Close cancels every timer, timeline, poll loop and pending load. Nothing
// fires afterwards.
func (p *Player) Close() {
	p.loader.Cancel()
	p.teardown()

	p.view.Lock()
	p.closed = true
	p.loading = ""
	p.view.Unlock()

	p.rec.Close()
}

// Pending counts armed timers across the sequencer, the coordinator and the
// render bridge.
func (p *Player) Pending() int {
	return p.seq.Pending() + p.coord.Pending() + p.bridge.Pending()
}

// LiveTimelines returns the number of live reveal timelines, 0 or 1.
func (p *Player) LiveTimelines() int { return p.coord.Live() }

// TimelineBuilds counts reveal timelines built so far.
func (p *Player) TimelineBuilds() int { return p.coord.Builds() }

// Charts returns the anchors of live charts.
func (p *Player) Charts() []string { return p.bridge.Live() }

// State returns the sequencer state.
func (p *Player) State() playback.State { return p.seq.State() }

// Play starts or resumes playback.
func (p *Player) Play() { p.seq.Play() }

// Pause pauses playback.
func (p *Player) Pause() { p.seq.Pause() }

// Toggle flips between playing and paused.
func (p *Player) Toggle() {
	if p.seq.State() == playback.Playing {
		p.seq.Pause()
		return
	}
	p.seq.Play()
}

// Next shows the following step.
func (p *Player) Next() { p.seq.Next() }

// Prev shows the preceding step.
func (p *Player) Prev() { p.seq.Prev() }

// Seek jumps to step index.
func (p *Player) Seek(index int) { p.seq.Seek(index) }

// Scrub moves within the current step.
func (p *Player) Scrub(elapsed time.Duration) { p.seq.Scrub(elapsed) }

// Resume jumps to the remembered step, if there is one.
func (p *Player) Resume() bool {
	p.view.Lock()
	at := p.resume
	p.resume = -1
	p.view.Unlock()
	if at < 0 {
		return false
	}
	p.seq.Seek(at)
	return true
}

// Ask pauses playback and asks text about the step on screen. The answer
// shows up in a later Snapshot.
func (p *Player) Ask(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ask.ErrEmptyQuestion
	}
	snap := p.seq.Snapshot()
	if snap.State == playback.Idle {
		return ErrNoLesson
	}
	p.seq.AskQuestion()

	p.view.Lock()
	q := ask.Question{LessonID: snap.Lesson.ID, StepIndex: snap.Index, Question: text}
	if p.step != nil && p.index == snap.Index {
		q.Context = p.step.Content
	}
	p.question = question{open: true, pending: true, index: snap.Index, text: text}
	if p.asker == nil {
		p.answered(ask.Result{
			Answer: &ask.Answer{Markup: ask.FallbackAnswer},
			Err:    errors.New("question answering is not configured"),
		})
	}
	p.view.Unlock()

	if p.asker != nil {
		p.asker.Request(ctx, q)
	}
	return nil
}

// CloseQuestion dismisses the question overlay. Playback stays paused.
func (p *Player) CloseQuestion() {
	if p.asker != nil {
		p.asker.Cancel()
	}
	p.seq.CloseQuestion()
	p.view.Lock()
	p.question = question{}
	p.view.Unlock()
}

// answered stores a finished answer. Called with the view lock held.
func (p *Player) answered(res ask.Result) {
	q := &p.question
	q.pending = false
	q.err = res.Err
	markup := ask.FallbackAnswer
	if res.Answer != nil {
		markup = res.Answer.Markup
	}
	if !strings.HasPrefix(strings.TrimSpace(markup), "<") {
		markup = "<p>" + markup + "</p>"
	}
	doc, err := scene.Parse("", markup)
	if err != nil {
		doc, _ = scene.Parse("", "<p>"+ask.FallbackAnswer+"</p>")
	}
	render.Typeset(p.math, doc, p.log)
	q.answer = doc

	data := store.QuestionEventData{StepIndex: q.index, Question: q.text, Success: res.Err == nil}
	if p.lesson != nil {
		data.LessonID = p.lesson.ID
	}
	if res.Err != nil {
		data.ErrorMessage = res.Err.Error()
	} else {
		data.Answer = markup
	}
	p.rec.question(data)
}

// animator is the Player as seen by the sequencer.
type animator Player

// StepChanged swaps in the new step's document, renders it and schedules
// its reveal timeline.
func (a *animator) StepChanged(index int, playing bool) {
	p := (*Player)(a)
	p.view.Lock()
	if p.doc != nil {
		p.doc.Detach()
	}
	p.doc, p.step, p.index = nil, nil, index
	if p.lesson != nil && index < p.lesson.StepCount() {
		step := p.lesson.Step(index)
		doc, err := scene.Parse(step.Title, step.Content)
		if err != nil {
			p.log.Warn("step markup unusable", "step", step.ID, "err", err)
		} else {
			p.doc, p.step = doc, step
		}
	}
	doc, step := p.doc, p.step
	p.view.Unlock()

	p.bridge.RenderStep(doc, step)
	p.coord.StepChanged(index, playing)
}

func (a *animator) PlayingChanged(playing bool) {
	a.coord.PlayingChanged(playing)
}

func (a *animator) Seek(elapsed time.Duration) {
	a.coord.Seek(elapsed)
}

// document is the coordinator's DocumentSource. It runs with the view lock
// held.
// hookFired records an authored animation hook. The coordinator calls it
// with the view lock held.
func (p *Player) hookFired(name string, at time.Duration) {
	if p.lesson == nil {
		return
	}
	p.rec.hook(p.lesson.ID, p.index, at, name)
}

func (p *Player) document(index int) (*scene.Document, *lesson.Step) {
	if index != p.index {
		return nil, nil
	}
	return p.doc, p.step
}
