package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/router"
	"github.com/abhisek/lessonplay/internal/screen"
	"github.com/abhisek/lessonplay/internal/store"
)

func seededRepo(t *testing.T) store.EventRepo {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	repo := st.EventRepo()
	ctx := context.Background()

	for _, e := range []store.PlaybackEventData{
		{SessionID: "s1", LessonID: "intro-calculus", Kind: "loaded"},
		{SessionID: "s1", LessonID: "intro-calculus", Kind: "play"},
		{SessionID: "s1", LessonID: "intro-calculus", Kind: "step-changed", StepIndex: 1},
		{SessionID: "s2", LessonID: "limits-drill", Kind: "loaded"},
		{SessionID: "s2", LessonID: "limits-drill", Kind: "play"},
		{SessionID: "s2", LessonID: "limits-drill", Kind: "pause"},
		{SessionID: "s2", LessonID: "limits-drill", Kind: "play"},
	} {
		if err := repo.AppendPlaybackEvent(ctx, e); err != nil {
			t.Fatalf("AppendPlaybackEvent: %v", err)
		}
	}
	if err := repo.AppendQuestionEvent(ctx, store.QuestionEventData{
		SessionID: "s2", LessonID: "limits-drill", Question: "why six?", Success: true,
	}); err != nil {
		t.Fatalf("AppendQuestionEvent: %v", err)
	}
	return repo
}

type replayScreen struct {
	lesson string
	step   int
}

func (r *replayScreen) Init() tea.Cmd                           { return nil }
func (r *replayScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return r, nil }
func (r *replayScreen) View(int, int) string                    { return "" }
func (r *replayScreen) Title() string                           { return r.lesson }

func loaded(t *testing.T, play func(string, int) screen.Screen) *HistoryScreen {
	t.Helper()
	s := New(seededRepo(t), play)
	s.Update(s.Init()())
	return s
}

func TestHistoryScreen_View(t *testing.T) {
	s := loaded(t, nil)

	view := s.View(120, 30)
	if !strings.Contains(view, "limits-drill") || !strings.Contains(view, "intro-calculus") {
		t.Errorf("expected both lessons in view:\n%s", view)
	}
	if got := s.Status(); got != "2 sessions · 1 question" {
		t.Errorf("Status = %q", got)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 30), "why six?") {
		t.Error("expected questions after opening the session")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if strings.Contains(s.View(120, 30), "why six?") {
		t.Error("expected a second Enter to fold the questions")
	}
}

func TestHistoryScreen_PlayAgain(t *testing.T) {
	s := loaded(t, func(id string, step int) screen.Screen {
		return &replayScreen{lesson: id, step: step}
	})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'p', Text: "p"})
	if cmd == nil {
		t.Fatal("expected a command for p")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	r := msg.Screen.(*replayScreen)
	if r.lesson != "intro-calculus" || r.step != 1 {
		t.Errorf("replay opened %s at step %d, want intro-calculus at 1", r.lesson, r.step)
	}
}

func TestHistoryScreen_PlayAgainOff(t *testing.T) {
	s := loaded(t, nil)
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'p', Text: "p"}); cmd != nil {
		t.Error("p without a player factory returned a command")
	}
	for _, h := range s.KeyHints() {
		if h.Key == "p" {
			t.Error("p hint shown without a player factory")
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	s := New(st.EventRepo(), nil)
	s.Update(s.Init()())
	if !strings.Contains(s.View(80, 24), "Nothing played yet") {
		t.Error("expected empty state message")
	}
	if s.Status() != "" {
		t.Errorf("Status = %q, want empty", s.Status())
	}
}
