package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/scene"
)

// StageConfig tunes the staged reveal.
type StageConfig struct {
	// SpanCap bounds how long the stagger of one stage may spread out,
	// however many elements the stage animates.
	SpanCap time.Duration
}

// DefaultStageConfig returns the reveal settings the player uses.
func DefaultStageConfig() StageConfig {
	return StageConfig{SpanCap: 1500 * time.Millisecond}
}

var (
	hiddenTitle = scene.Style{Opacity: 0, OffsetY: 20, Scale: 1}
	hiddenMath  = scene.Style{Opacity: 0, OffsetY: 20, Scale: 1, Highlight: 1}
	shownMath   = scene.Style{Opacity: 1, Scale: 1, Highlight: 1}
	hiddenChart = scene.Style{Opacity: 0, OffsetY: 20, Scale: 0.85}
)

// Stage fills tl with the staged reveal of doc: title characters, then body
// text, then math with a highlight that fades out, then charts. Author
// animation sequences declared on the step are added at their start times.
func Stage(tl *Timeline, doc *scene.Document, step *lesson.Step, cfg StageConfig, log *logger.Logger) {
	if cfg.SpanCap <= 0 {
		cfg.SpanCap = DefaultStageConfig().SpanCap
	}
	if log == nil {
		log = logger.Nop()
	}

	var chars []*scene.Element
	if title := doc.Title(); title.Connected() && title.Content() != "" {
		chars = doc.SplitChars(title)
	}
	text := doc.Query("p, li, h3, h4, h5, h6")
	math := doc.OfKind(scene.KindMath)
	charts := doc.OfKind(scene.KindChart)

	tl.Set(math, hiddenMath, PropAll)
	tl.Set(charts, hiddenChart, PropAll)

	if len(chars) > 0 {
		tl.Add(&Tween{
			Targets:  chars,
			From:     hiddenTitle,
			To:       scene.Shown,
			Props:    PropOpacity | PropOffsetY,
			Duration: 30 * time.Millisecond,
			Stagger:  stagger(20*time.Millisecond, len(chars), cfg.SpanCap),
			Ease:     Power1Out,
		}, At(0))
	}
	if len(text) > 0 {
		tl.Add(&Tween{
			Targets:  text,
			From:     scene.Hidden,
			To:       scene.Shown,
			Props:    PropOpacity | PropOffsetY,
			Duration: 600 * time.Millisecond,
			Stagger:  stagger(150*time.Millisecond, len(text), cfg.SpanCap),
			Ease:     Power2Out,
		}, After(200*time.Millisecond))
	}
	var decay *Tween
	var mathEnd time.Duration
	if len(math) > 0 {
		reveal := tl.Add(&Tween{
			Targets:  math,
			From:     hiddenMath,
			To:       shownMath,
			Props:    PropAll,
			Duration: 800 * time.Millisecond,
			Stagger:  stagger(300*time.Millisecond, len(math), cfg.SpanCap),
			Ease:     Power2Out,
		}, After(200*time.Millisecond))
		mathEnd = reveal.End()
		decay = &Tween{
			Targets:  math,
			From:     scene.Style{Highlight: 1},
			To:       scene.Style{Highlight: 0},
			Props:    PropHighlight,
			Duration: 1500 * time.Millisecond,
			Stagger:  stagger(200*time.Millisecond, len(math), cfg.SpanCap),
			Ease:     Power1Out,
		}
	}
	if len(charts) > 0 {
		tl.Add(&Tween{
			Targets:  charts,
			From:     hiddenChart,
			To:       scene.Shown,
			Props:    PropAll,
			Duration: time.Second,
			Stagger:  stagger(300*time.Millisecond, len(charts), cfg.SpanCap),
			Ease:     BackOut(1.7),
		}, After(500*time.Millisecond))
	}
	if decay != nil {
		tl.Add(decay, At(mathEnd))
	}

	addSequences(tl, doc, step, log)
}

// stagger spaces n targets base apart unless that would spread them over
// more than span.
func stagger(base time.Duration, n int, span time.Duration) time.Duration {
	if n <= 1 {
		return base
	}
	return min(base, span/time.Duration(n-1))
}

type authored struct {
	tween *Tween
	at    time.Duration
}

func addSequences(tl *Timeline, doc *scene.Document, step *lesson.Step, log *logger.Logger) {
	if step == nil {
		return
	}
	var pending []authored
	for _, seq := range step.Animations {
		for _, target := range seq.Targets {
			els := doc.Query(target.Target)
			if len(els) == 0 {
				log.Debug("animation target matched nothing", "sequence", seq.ID, "target", target.Target)
				continue
			}
			to, props := styleFromProperties(target.Properties)
			if props == 0 {
				log.Debug("animation has no supported properties", "sequence", seq.ID, "target", target.Target)
				continue
			}
			dur := target.Duration
			if dur <= 0 {
				dur = seq.Duration
			}
			if dur <= 0 {
				dur = 500
			}
			pending = append(pending, authored{
				tween: &Tween{
					Targets:  els,
					To:       to,
					Props:    props,
					Duration: dur.Std(),
					Ease:     EasingByName(target.Easing),
					Begin:    target.Begin,
					Complete: target.Complete,
				},
				at: (seq.StartTime + target.Delay).Std(),
			})
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at < pending[j].at })

	// Authored tweens animate from whatever state the timeline has reached at
	// their start, so capture it before adding each one.
	for _, a := range pending {
		tl.apply(a.at)
		a.tween.FromEach = make([]scene.Style, len(a.tween.Targets))
		for i, el := range a.tween.Targets {
			a.tween.FromEach[i] = el.Style
		}
		cursor := tl.cursor
		tl.Add(a.tween, At(a.at))
		tl.cursor = cursor
	}
	tl.apply(0)
}

// styleFromProperties maps authored property names onto a target style.
func styleFromProperties(props map[string]float64) (scene.Style, Prop) {
	var st scene.Style
	var mask Prop
	for name, v := range props {
		switch strings.ToLower(name) {
		case "opacity", "autoalpha":
			st.Opacity, mask = v, mask|PropOpacity
		case "y", "offsety", "translatey":
			st.OffsetY, mask = v, mask|PropOffsetY
		case "scale":
			st.Scale, mask = v, mask|PropScale
		case "highlight", "backgroundopacity":
			st.Highlight, mask = v, mask|PropHighlight
		}
	}
	return st, mask
}
