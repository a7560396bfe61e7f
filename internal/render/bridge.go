package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/scene"
)

// BridgeConfig sizes chart canvases and sets the readiness poll interval.
type BridgeConfig struct {
	PollInterval time.Duration
	ChartWidth   int
	ChartHeight  int
	// NewCanvas overrides how chart canvases are created. The default makes
	// TextCanvases of ChartWidth×ChartHeight.
	NewCanvas func(anchor string) Canvas
}

// DefaultBridgeConfig returns the settings the player uses.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		PollInterval: 100 * time.Millisecond,
		ChartWidth:   64,
		ChartHeight:  14,
	}
}

// Bridge injects typeset math and drawn charts into a step document.
//
// Math is rendered synchronously, one element at a time; a failing element
// keeps its source text and the rest of the step still renders. Charts wait
// for the chart renderer to report ready, then are created exactly once per
// RenderStep. There is at most one live chart per anchor.
type Bridge struct {
	lock   sync.Locker
	sched  *clock.Scheduler
	math   MathRenderer
	charts ChartRenderer
	cfg    BridgeConfig
	log    *logger.Logger

	handles map[string]ChartHandle
	poll    *clock.Task
	passes  int
}

// NewBridge creates a Bridge whose timers run under lock.
func NewBridge(c clock.Clock, lock sync.Locker, m MathRenderer, charts ChartRenderer, cfg BridgeConfig, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultBridgeConfig().PollInterval
	}
	if cfg.NewCanvas == nil {
		w, h := cfg.ChartWidth, cfg.ChartHeight
		cfg.NewCanvas = func(anchor string) Canvas { return NewTextCanvas(anchor, w, h) }
	}
	return &Bridge{
		lock:    lock,
		sched:   clock.NewScheduler(c, lock, 0),
		math:    m,
		charts:  charts,
		cfg:     cfg,
		log:     log.With("component", "render-bridge"),
		handles: make(map[string]ChartHandle),
	}
}

// RenderStep resets the bridge and renders doc, the container of step.
func (b *Bridge) RenderStep(doc *scene.Document, step *lesson.Step) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.reset()
	if doc == nil || step == nil {
		return
	}
	b.renderMath(doc)
	if len(step.Charts) == 0 || b.charts == nil {
		return
	}
	if b.charts.Ready() {
		b.createCharts(doc, step)
		return
	}
	b.log.Debug("chart renderer not ready, polling", "step", step.ID)
	b.poll = b.sched.Every(b.cfg.PollInterval, func() {
		if !b.charts.Ready() {
			return
		}
		b.poll.Cancel()
		b.poll = nil
		b.createCharts(doc, step)
	})
}

// Reset cancels a pending readiness poll and destroys every live chart.
func (b *Bridge) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.reset()
}

func (b *Bridge) reset() {
	b.sched.Invalidate()
	b.poll = nil
	for anchor, h := range b.handles {
		b.destroy(anchor, h)
	}
}

// Live returns the anchors that currently have a chart.
func (b *Bridge) Live() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	out := make([]string, 0, len(b.handles))
	for anchor := range b.handles {
		out = append(out, anchor)
	}
	return out
}

// Passes counts chart creation passes, one per rendered step with charts.
func (b *Bridge) Passes() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.passes
}

// Pending returns the number of armed bridge timers.
func (b *Bridge) Pending() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.sched.Pending()
}

// Polling reports whether a readiness poll is pending.
func (b *Bridge) Polling() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.poll.Live()
}

func (b *Bridge) renderMath(doc *scene.Document) {
	Typeset(b.math, doc, b.log)
}

// Typeset renders every math element of doc through m. A failing element
// keeps its source text and is logged; the others still render.
func Typeset(m MathRenderer, doc *scene.Document, log *logger.Logger) {
	if m == nil || doc == nil {
		return
	}
	for _, el := range doc.OfKind(scene.KindMath) {
		out, err := renderOne(m, el)
		if err != nil && log != nil {
			log.Warn("math render failed", "src", el.Text, "err", err)
		}
		el.Rendered = out
	}
}

func renderOne(m MathRenderer, el *scene.Element) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = el.Text, fmt.Errorf("%w: panic: %v", ErrMalformed, r)
		}
	}()
	return m.RenderMath(el.Text, el.Display)
}

func (b *Bridge) createCharts(doc *scene.Document, step *lesson.Step) {
	if !doc.Connected() {
		b.log.Debug("document detached before charts were ready", "step", step.ID)
		return
	}
	b.passes++
	for _, spec := range step.Charts {
		el := doc.ByCanvas(spec.ID)
		if el == nil {
			b.log.Warn("chart anchor missing from step markup", "chart", spec.ID, "step", step.ID)
			continue
		}
		if old, ok := b.handles[spec.ID]; ok {
			b.destroy(spec.ID, old)
		}
		canvas := b.cfg.NewCanvas(spec.ID)
		h, err := b.createOne(canvas, spec)
		if err != nil {
			b.log.Error("chart render failed", "chart", spec.ID, "err", err)
			el.Rendered = "[chart unavailable]"
			continue
		}
		b.handles[spec.ID] = h
		if s, ok := canvas.(fmt.Stringer); ok {
			el.Rendered = s.String()
		}
	}
}

func (b *Bridge) createOne(canvas Canvas, spec lesson.ChartSpec) (h ChartHandle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("chart %q: panic: %v", spec.ID, r)
		}
	}()
	return b.charts.CreateChart(canvas, spec)
}

func (b *Bridge) destroy(anchor string, h ChartHandle) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("chart destroy failed", "chart", anchor, "panic", r)
		}
	}()
	delete(b.handles, anchor)
	h.Destroy()
}
