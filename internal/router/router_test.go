package router

import (
	"slices"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/screen"
)

type fakeScreen struct {
	title   string
	started int
	closed  int
	got     []tea.Msg
}

func (s *fakeScreen) Init() tea.Cmd {
	s.started++
	return nil
}

func (s *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *fakeScreen) View(int, int) string { return s.title }
func (s *fakeScreen) Title() string        { return s.title }
func (s *fakeScreen) Close()               { s.closed++ }

// stack builds a router holding the named screens, root first.
func stack(names ...string) (*Router, []*fakeScreen) {
	screens := make([]*fakeScreen, len(names))
	for i, n := range names {
		screens[i] = &fakeScreen{title: n}
	}
	r := New(screens[0])
	for _, s := range screens[1:] {
		r.Open(s)
	}
	return r, screens
}

func TestNavigation(t *testing.T) {
	replacement := &fakeScreen{title: "History"}
	tests := []struct {
		name       string
		msg        tea.Msg
		wantTrail  []string
		wantClosed []int
	}{
		{"pop", PopScreenMsg{}, []string{"Lessons", "Limits"}, []int{0, 0, 1}},
		{"home", HomeMsg{}, []string{"Lessons"}, []int{0, 1, 1}},
		{"replace", ReplaceScreenMsg{Screen: replacement}, []string{"Lessons", "Limits", "History"}, []int{0, 0, 1}},
		{"push", PushScreenMsg{Screen: replacement}, []string{"Lessons", "Limits", "Derivatives", "History"}, []int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacement.started = 0
			r, screens := stack("Lessons", "Limits", "Derivatives")
			r.Update(tt.msg)

			if got := r.Trail(); !slices.Equal(got, tt.wantTrail) {
				t.Errorf("trail = %v, want %v", got, tt.wantTrail)
			}
			for i, s := range screens {
				if s.closed != tt.wantClosed[i] {
					t.Errorf("%s closed %d times, want %d", s.title, s.closed, tt.wantClosed[i])
				}
			}
			if r.Active() == replacement && replacement.started != 1 {
				t.Errorf("opened screen started %d times, want 1", replacement.started)
			}
		})
	}
}

func TestRootStays(t *testing.T) {
	r, screens := stack("Lessons")
	r.Update(PopScreenMsg{})
	r.Update(HomeMsg{})

	if r.Depth() != 1 || screens[0].closed != 0 {
		t.Errorf("depth %d, root closed %d times", r.Depth(), screens[0].closed)
	}
}

func TestUpdateGoesToActiveScreen(t *testing.T) {
	r, screens := stack("Lessons", "Limits")
	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})

	if len(screens[0].got) != 0 {
		t.Error("root screen received a message while covered")
	}
	if len(screens[1].got) != 1 {
		t.Errorf("active screen got %d messages, want 1", len(screens[1].got))
	}
	if got := r.View(80, 24); got != "Limits" {
		t.Errorf("View = %q", got)
	}
}

func TestCommandsCarryMessages(t *testing.T) {
	s := &fakeScreen{title: "x"}
	if msg, ok := Push(s)().(PushScreenMsg); !ok || msg.Screen != s {
		t.Error("Push did not produce PushScreenMsg")
	}
	if _, ok := Pop()().(PopScreenMsg); !ok {
		t.Error("Pop did not produce PopScreenMsg")
	}
	if msg, ok := Replace(s)().(ReplaceScreenMsg); !ok || msg.Screen != s {
		t.Error("Replace did not produce ReplaceScreenMsg")
	}
	if _, ok := Home()().(HomeMsg); !ok {
		t.Error("Home did not produce HomeMsg")
	}
}

func TestCloseAll(t *testing.T) {
	r, screens := stack("Lessons", "Limits", "History")
	r.Close()
	for _, s := range screens {
		if s.closed != 1 {
			t.Errorf("%s closed %d times, want 1", s.title, s.closed)
		}
	}
}
