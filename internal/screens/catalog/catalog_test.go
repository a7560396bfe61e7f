package catalog

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/router"
	"github.com/abhisek/lessonplay/internal/screen"
)

type stubScreen struct{ id string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.id }
func (s *stubScreen) Title() string                           { return s.id }

func testLessons(t *testing.T) []*lesson.Lesson {
	t.Helper()
	c, err := lesson.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c.List()
}

func TestCatalogScreen_View(t *testing.T) {
	s := New(testLessons(t), func(id string) screen.Screen { return &stubScreen{id} }, nil)
	view := s.View(100, 30)
	for _, want := range []string{"Limits Drill", "History", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestCatalogScreen_EnterOpensLesson(t *testing.T) {
	lessons := testLessons(t)
	s := New(lessons, func(id string) screen.Screen { return &stubScreen{id} }, nil)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != lessons[1].ID {
		t.Errorf("opened %q, want %q", push.Screen.Title(), lessons[1].ID)
	}
}

func TestCatalogScreen_HistoryDisabledWithoutStore(t *testing.T) {
	lessons := testLessons(t)
	s := New(lessons, func(id string) screen.Screen { return &stubScreen{id} }, nil)

	for range lessons {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	if got, _ := s.picker.Current(); got.Title != "Quit" {
		t.Errorf("selected %q, want Quit (History is off)", got.Title)
	}
}

func TestCatalogScreen_DigitOpensHistory(t *testing.T) {
	lessons := testLessons(t)
	s := New(lessons, func(id string) screen.Screen { return &stubScreen{id} },
		func() screen.Screen { return &stubScreen{"history"} })

	digit := rune('1' + len(lessons))
	_, cmd := s.Update(tea.KeyPressMsg{Code: digit, Text: string(digit)})
	if cmd == nil {
		t.Fatal("expected a command for the History digit")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok || push.Screen.Title() != "history" {
		t.Errorf("expected History to open, got %#v", cmd())
	}
}
