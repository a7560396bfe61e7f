package timeline

import (
	"testing"
	"time"

	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/scene"
)

const stagedMarkup = `
<p>Consider the function:</p>
<div class="math display-math">f(x) = x^2</div>
<p class="callout">Watch it.</p>
<div class="chart-container"><canvas id="c1"></canvas></div>`

func stagedDoc(t *testing.T, markup string) *scene.Document {
	t.Helper()
	doc, err := scene.Parse("Limits", markup)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestStage_OrderAndInitialState(t *testing.T) {
	e := newEnv()
	doc := stagedDoc(t, stagedMarkup)
	tl := New(e.sched)
	Stage(tl, doc, &lesson.Step{}, DefaultStageConfig(), nil)

	chars := doc.Title().Children
	text := doc.Query("p")
	math := doc.OfKind(scene.KindMath)
	chart := doc.OfKind(scene.KindChart)[0]

	for _, el := range append(append(append(chars, text...), math...), chart) {
		if el.Style.Opacity != 0 {
			t.Errorf("%s %q visible before the reveal: %+v", el.Kind, el.Text, el.Style)
		}
	}
	if math[0].Style.Highlight != 1 {
		t.Errorf("math should start highlighted")
	}

	// title: 6 chars, 20ms stagger, 30ms each -> ends at 130ms
	// text: starts at 330ms, 2 paragraphs 150ms apart, 600ms -> ends at 1080ms
	// math: starts at 1280ms, ends at 2080ms
	// charts: start at 2580ms
	e.do(func() { tl.Seek(130 * time.Millisecond) })
	if chars[5].Style.Opacity != 1 || text[0].Style.Opacity != 0 {
		t.Errorf("at 130ms title should be in and text hidden: %v %v", chars[5].Style, text[0].Style)
	}
	e.do(func() { tl.Seek(1080 * time.Millisecond) })
	if text[1].Style.Opacity != 1 || math[0].Style.Opacity != 0 {
		t.Errorf("at 1080ms text should be in and math hidden")
	}
	e.do(func() { tl.Seek(2080 * time.Millisecond) })
	if math[0].Style.Opacity != 1 || math[0].Style.Highlight != 1 || chart.Style.Opacity != 0 {
		t.Errorf("at 2080ms math should be in and still highlighted, chart hidden: %+v %+v", math[0].Style, chart.Style)
	}
	e.do(func() { tl.Seek(tl.Duration()) })
	if chart.Style != scene.Shown || math[0].Style.Highlight != 0 {
		t.Errorf("at end: chart %+v math %+v", chart.Style, math[0].Style)
	}
	if tl.Duration() != 3580*time.Millisecond {
		t.Errorf("duration = %v, want 3.58s", tl.Duration())
	}
}

func TestStage_StaggerIsCapped(t *testing.T) {
	var markup string
	for i := 0; i < 40; i++ {
		markup += "<p>line</p>"
	}
	e := newEnv()
	doc := stagedDoc(t, markup)
	tl := New(e.sched)
	Stage(tl, doc, &lesson.Step{}, StageConfig{SpanCap: 780 * time.Millisecond}, nil)

	// 40 paragraphs at a 150ms base would spread over 5.85s; the cap keeps
	// the spread at 780ms (20ms apart).
	var text *Tween
	for _, tw := range tl.tweens {
		if len(tw.Targets) == 40 {
			text = tw
		}
	}
	if text == nil {
		t.Fatal("text stage not found")
	}
	if text.Stagger != 20*time.Millisecond {
		t.Errorf("stagger = %v, want 20ms", text.Stagger)
	}
	if spread := text.End() - text.Start() - text.Duration; spread != 780*time.Millisecond {
		t.Errorf("spread = %v", spread)
	}
}

func TestStage_AuthoredSequences(t *testing.T) {
	e := newEnv()
	doc := stagedDoc(t, stagedMarkup)
	step := &lesson.Step{Animations: []lesson.AnimationSequence{{
		ID:        "pulse",
		StartTime: 3000,
		Targets: []lesson.AnimationTarget{
			{Target: ".callout", Properties: map[string]float64{"highlight": 1}, Duration: 400, Easing: "linear", Begin: "b", Complete: "c"},
			{Target: ".nothing", Properties: map[string]float64{"opacity": 1}},
			{Target: "p", Properties: map[string]float64{"rotate": 90}},
		},
	}}}
	tl := New(e.sched)
	Stage(tl, doc, step, DefaultStageConfig(), nil)

	callout := doc.Query(".callout")[0]
	e.do(func() { tl.Seek(3200 * time.Millisecond) })
	if callout.Style.Highlight != 0.5 || callout.Style.Opacity != 1 {
		t.Errorf("callout at 3.2s = %+v, want half highlight and fully visible", callout.Style)
	}
	if tl.Duration() != 3580*time.Millisecond {
		t.Errorf("duration = %v", tl.Duration())
	}
}

func TestStage_EmptyDocument(t *testing.T) {
	e := newEnv()
	doc := stagedDoc(t, "")
	doc.Title().Text = ""
	tl := New(e.sched)
	Stage(tl, doc, nil, DefaultStageConfig(), nil)
	if tl.Duration() != 0 || tl.Len() != 0 {
		t.Errorf("empty document produced %d tweens over %v", tl.Len(), tl.Duration())
	}
}
