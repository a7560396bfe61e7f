package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "end":
		return tea.KeyPressMsg{Code: tea.KeyEnd}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

type chosen string

func entries(titles ...string) []Entry {
	out := make([]Entry, len(titles))
	for i, title := range titles {
		out[i] = Entry{Title: title, Choose: func() tea.Cmd {
			return func() tea.Msg { return chosen(title) }
		}}
	}
	return out
}

func current(t *testing.T, p Picker) string {
	t.Helper()
	e, ok := p.Current()
	if !ok {
		t.Fatal("picker has no current entry")
	}
	return e.Title
}

func TestPicker_SkipsOffAndWraps(t *testing.T) {
	es := entries("limits", "history", "quit")
	es[1].Off = true
	p := NewPicker(es)

	p, _ = p.Update(key("down"))
	if got := current(t, p); got != "quit" {
		t.Errorf("down from limits = %q, want quit", got)
	}
	p, _ = p.Update(key("down"))
	if got := current(t, p); got != "limits" {
		t.Errorf("down from quit = %q, want limits", got)
	}
	p, _ = p.Update(key("up"))
	if got := current(t, p); got != "quit" {
		t.Errorf("up from limits = %q, want quit", got)
	}
}

func TestPicker_FirstEntryOff(t *testing.T) {
	es := entries("a", "b")
	es[0].Off = true
	if got := current(t, NewPicker(es)); got != "b" {
		t.Errorf("initial entry = %q, want b", got)
	}

	es[1].Off = true
	p := NewPicker(es)
	if _, ok := p.Current(); ok {
		t.Error("expected no current entry when all are off")
	}
	if _, cmd := p.Update(key("enter")); cmd != nil {
		t.Error("enter on an empty picker returned a command")
	}
}

func TestPicker_Choose(t *testing.T) {
	p := NewPicker(entries("a", "b", "c"))

	p, cmd := p.Update(key("end"))
	if cmd != nil || current(t, p) != "c" {
		t.Fatalf("end moved to %q", current(t, p))
	}
	_, cmd = p.Update(key("enter"))
	if cmd == nil || cmd() != chosen("c") {
		t.Error("enter did not choose c")
	}

	p, cmd = p.Update(key("2"))
	if cmd == nil || cmd() != chosen("b") {
		t.Error("2 did not choose b")
	}
	if current(t, p) != "b" {
		t.Error("digit did not move the cursor")
	}
	if _, cmd = p.Update(key("7")); cmd != nil {
		t.Error("digit past the end chose something")
	}
}

func TestPicker_ViewShowsMetaForCurrentOnly(t *testing.T) {
	es := entries("Limits", "Derivatives")
	es[0].Meta = "4 steps, 20s"
	es[1].Meta = "6 steps, 30s"
	view := NewPicker(es).View()
	if !strings.Contains(view, "4 steps") || strings.Contains(view, "6 steps") {
		t.Errorf("unexpected view:\n%s", view)
	}
	if !strings.Contains(view, "▸ 1. Limits") {
		t.Errorf("cursor row missing:\n%s", view)
	}
}

func TestStepTrack_Lesson(t *testing.T) {
	tests := []struct {
		track StepTrack
		want  float64
	}{
		{StepTrack{Steps: 4, Current: 0, Percent: 0}, 0},
		{StepTrack{Steps: 4, Current: 1, Percent: 50}, 0.375},
		{StepTrack{Steps: 4, Current: 3, Percent: 100}, 1},
		{StepTrack{Steps: 4, Current: 3, Percent: 250}, 1},
		{StepTrack{Steps: 0}, 0},
	}
	for _, tt := range tests {
		if got := tt.track.Lesson(); got != tt.want {
			t.Errorf("%+v: Lesson() = %v, want %v", tt.track, got, tt.want)
		}
	}
}

func TestStepTrack_View(t *testing.T) {
	t.Run("segments", func(t *testing.T) {
		v := StepTrack{Steps: 4, Current: 1, Percent: 50, Width: 60}.View()
		if lipgloss.Width(v) > 60 {
			t.Errorf("width %d exceeds 60", lipgloss.Width(v))
		}
		if strings.Count(v, " ") < 3 || !strings.HasSuffix(strings.TrimSpace(stripped(v)), "2/4") {
			t.Errorf("unexpected track %q", stripped(v))
		}
	})
	t.Run("collapses when narrow", func(t *testing.T) {
		v := stripped(StepTrack{Steps: 30, Current: 15, Percent: 0, Width: 40}.View())
		bar := strings.TrimSuffix(v, "  16/30")
		if strings.Contains(bar, " ") {
			t.Errorf("expected one continuous bar, got %q", v)
		}
		if n := strings.Count(bar, "━"); n == 0 || n >= len([]rune(bar)) {
			t.Errorf("collapsed bar fill = %d of %d", n, len([]rune(bar)))
		}
	})
}

// stripped drops ANSI styling.
func stripped(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestAskBox_SubmitAndRecall(t *testing.T) {
	a := NewAskBox("Ask...", 200)
	a.Open()
	for _, r := range "  why zero?  " {
		a, _ = a.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if got := a.Submit(); got != "why zero?" {
		t.Fatalf("Submit = %q", got)
	}

	a.Open()
	if got := a.Submit(); got != "" {
		t.Errorf("blank Submit = %q", got)
	}
	a, _ = a.Update(key("up"))
	if got := a.Submit(); got != "why zero?" {
		t.Errorf("recalled Submit = %q", got)
	}

	a.Open()
	a, _ = a.Update(key("up"))
	a, _ = a.Update(key("down"))
	if got := a.Submit(); got != "" {
		t.Errorf("down past the newest should clear the prompt, got %q", got)
	}
}
