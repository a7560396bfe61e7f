// Package history is the screen listing past playback sessions.
package history

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonplay/internal/router"
	"github.com/abhisek/lessonplay/internal/screen"
	"github.com/abhisek/lessonplay/internal/store"
	"github.com/abhisek/lessonplay/internal/ui/layout"
	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// eventLimit bounds how many playback events are grouped into sessions.
const eventLimit = 500

type loadedMsg struct {
	sessions []store.SessionSummary
	err      error
}

// HistoryScreen lists recent sessions newest first. Enter shows a
// session's questions and p plays its lesson again from the step it
// reached.
type HistoryScreen struct {
	repo     store.EventRepo
	play     func(lessonID string, step int) screen.Screen
	sessions []store.SessionSummary
	cursor   int
	open     int
	state    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.StatusProvider = (*HistoryScreen)(nil)

// New creates the screen. play builds the player screen used by p; nil
// turns replay off.
func New(repo store.EventRepo, play func(lessonID string, step int) screen.Screen) *HistoryScreen {
	return &HistoryScreen{repo: repo, play: play, open: -1, state: "Loading history..."}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		sessions, err := store.SessionSummaries(context.Background(), repo, eventLimit)
		return loadedMsg{sessions: sessions, err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

// Status counts the questions across the listed sessions.
func (s *HistoryScreen) Status() string {
	asked, failed := 0, 0
	for _, sess := range s.sessions {
		for _, q := range sess.Questions {
			asked++
			if !q.Success {
				failed++
			}
		}
	}
	if len(s.sessions) == 0 {
		return ""
	}
	status := plural(len(s.sessions), "session") + " · " + plural(asked, "question")
	if failed > 0 {
		status += fmt.Sprintf(" (%d failed)", failed)
	}
	return status
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Questions"},
	}
	if s.play != nil {
		hints = append(hints, layout.KeyHint{Key: "p", Description: "Play again"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.sessions = msg.sessions
		switch {
		case msg.err != nil:
			s.state = "Could not read history: " + msg.err.Error()
		case len(msg.sessions) == 0:
			s.state = "Nothing played yet. Open a lesson!"
		default:
			s.state = ""
		}
	case tea.KeyMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(key string) tea.Cmd {
	switch key {
	case "esc", "q":
		return router.Pop()
	case "up", "k":
		s.cursor = max(0, s.cursor-1)
	case "down", "j":
		s.cursor = max(0, min(len(s.sessions)-1, s.cursor+1))
	case "enter", "space":
		if s.open == s.cursor {
			s.open = -1
		} else {
			s.open = s.cursor
		}
	case "p":
		if s.play == nil || len(s.sessions) == 0 {
			return nil
		}
		sess := s.sessions[s.cursor]
		return router.Replace(s.play(sess.LessonID, sess.LastStep))
	}
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.state != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render("\n\n" + theme.Hint.Render(s.state))
	}

	var rows []string
	cursorRow := 0
	for i, sess := range s.sessions {
		if i == s.cursor {
			cursorRow = len(rows)
		}
		rows = append(rows, s.row(i, sess))
		if i == s.open {
			rows = append(rows, questionRows(sess)...)
		}
	}

	// Keep the cursor on screen.
	visible := max(1, height-2)
	first := 0
	if cursorRow >= visible {
		first = cursorRow - visible + 1
	}
	rows = rows[first:min(len(rows), first+visible)]

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

func (s *HistoryScreen) row(i int, sess store.SessionSummary) string {
	mark, style := "  ", theme.Unselected
	if i == s.cursor {
		mark, style = "▸ ", theme.Selected
	}
	return style.Render(fmt.Sprintf("%s%-12s  %-20s  %6s  step %-3d  %s",
		mark,
		sess.Started.Local().Format("Jan 02 15:04"),
		sess.LessonID,
		sess.Duration().Round(time.Second),
		sess.LastStep+1,
		plural(len(sess.Questions), "question"),
	))
}

func questionRows(sess store.SessionSummary) []string {
	if len(sess.Questions) == 0 {
		return []string{theme.Hint.Render("      no questions in this session")}
	}
	out := make([]string, 0, len(sess.Questions))
	for _, q := range sess.Questions {
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		if !q.Success {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
		out = append(out, "      "+mark+theme.Muted.Render(fmt.Sprintf(" step %d  %s", q.StepIndex+1, q.Question)))
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

