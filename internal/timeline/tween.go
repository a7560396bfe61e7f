package timeline

import (
	"time"

	"github.com/abhisek/lessonplay/internal/scene"
)

// Prop selects which style fields a tween writes.
type Prop uint8

const (
	PropOpacity Prop = 1 << iota
	PropOffsetY
	PropScale
	PropHighlight

	PropAll = PropOpacity | PropOffsetY | PropScale | PropHighlight
)

// Tween interpolates the style of its targets from From to To. Target i
// starts Stagger*i after the tween's start offset.
type Tween struct {
	Targets  []*scene.Element
	From, To scene.Style
	// FromEach, when set, overrides From per target.
	FromEach []scene.Style
	Props    Prop
	Duration time.Duration
	Stagger  time.Duration
	Ease     Easing

	// Begin and Complete name hooks reported while the timeline plays.
	Begin, Complete string

	start time.Duration
}

// Start returns the tween's offset in its timeline.
func (tw *Tween) Start() time.Duration { return tw.start }

// End returns the offset at which the last target finishes.
func (tw *Tween) End() time.Duration {
	n := len(tw.Targets)
	if n == 0 {
		return tw.start + tw.Duration
	}
	return tw.start + time.Duration(n-1)*tw.Stagger + tw.Duration
}

func (tw *Tween) targetStart(i int) time.Duration {
	return tw.start + time.Duration(i)*tw.Stagger
}

// progress returns eased progress of target i at timeline time t, and false
// when the target has not started yet.
func (tw *Tween) progress(i int, t time.Duration) (float64, bool) {
	local := t - tw.targetStart(i)
	if local < 0 {
		return 0, false
	}
	if tw.Duration <= 0 || local >= tw.Duration {
		return 1, true
	}
	p := float64(local) / float64(tw.Duration)
	ease := tw.Ease
	if ease == nil {
		ease = Power2Out
	}
	return ease(p), true
}

func (tw *Tween) from(i int) scene.Style {
	if i < len(tw.FromEach) {
		return tw.FromEach[i]
	}
	return tw.From
}

func (tw *Tween) write(el *scene.Element, from scene.Style, p float64) {
	if tw.Props&PropOpacity != 0 {
		el.Style.Opacity = clamp01(lerp(from.Opacity, tw.To.Opacity, p))
	}
	if tw.Props&PropOffsetY != 0 {
		el.Style.OffsetY = lerp(from.OffsetY, tw.To.OffsetY, p)
	}
	if tw.Props&PropScale != 0 {
		el.Style.Scale = lerp(from.Scale, tw.To.Scale, p)
	}
	if tw.Props&PropHighlight != 0 {
		el.Style.Highlight = clamp01(lerp(from.Highlight, tw.To.Highlight, p))
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
