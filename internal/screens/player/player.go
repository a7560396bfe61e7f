// Package player is the lesson playback screen.
package player

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	lp "github.com/abhisek/lessonplay/internal/player"
	"github.com/abhisek/lessonplay/internal/playback"
	"github.com/abhisek/lessonplay/internal/router"
	"github.com/abhisek/lessonplay/internal/screen"
	"github.com/abhisek/lessonplay/internal/ui/components"
	"github.com/abhisek/lessonplay/internal/ui/layout"
	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// repaint is how often the screen re-reads the player while it is open.
const repaint = 50 * time.Millisecond

// scrubStep is how far [ and ] move within a step.
const scrubStep = time.Second

// frameMsg asks for a repaint.
type frameMsg time.Time

// PlayerScreen shows one lesson and forwards keys to the player.
type PlayerScreen struct {
	player   *lp.Player
	lessonID string
	fromStep int
	palette  theme.Palette
	asking   bool
	input    components.AskBox
	notice   string
	closed   bool
}

var _ screen.Screen = (*PlayerScreen)(nil)
var _ screen.KeyHintProvider = (*PlayerScreen)(nil)
var _ screen.StatusProvider = (*PlayerScreen)(nil)
var _ screen.Closer = (*PlayerScreen)(nil)

// New creates a PlayerScreen that opens lessonID at fromStep, or at the
// first step when fromStep is negative. The screen owns p and closes it.
func New(p *lp.Player, lessonID string, fromStep int, palette theme.Palette) *PlayerScreen {
	return &PlayerScreen{
		player:   p,
		lessonID: lessonID,
		fromStep: fromStep,
		palette:  palette,
		input:    components.NewAskBox("Ask about this step...", 200),
	}
}

func (s *PlayerScreen) Init() tea.Cmd {
	s.player.OpenAt(context.Background(), s.lessonID, s.fromStep)
	return frameCmd()
}

func frameCmd() tea.Cmd {
	return tea.Tick(repaint, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (s *PlayerScreen) Title() string {
	return s.player.Snapshot(0).LessonTitle
}

// Status shows the playback state in the header.
func (s *PlayerScreen) Status() string {
	switch s.player.State() {
	case playback.Playing:
		return "▶ playing"
	case playback.Paused:
		return "⏸ paused"
	case playback.PausedForQuestion:
		return "? question"
	default:
		return ""
	}
}

func (s *PlayerScreen) KeyHints() []layout.KeyHint {
	if s.asking {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Ask"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	if s.player.State() == playback.PausedForQuestion {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Close answer"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Play/Pause"},
		{Key: "←→", Description: "Step"},
		{Key: "1-9", Description: "Jump"},
		{Key: "?", Description: "Ask"},
		{Key: "m", Description: "Palette"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PlayerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if s.closed {
			return s, nil
		}
		return s, frameCmd()

	case tea.KeyMsg:
		if s.asking {
			return s.handleAskKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.asking {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PlayerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	s.notice = ""
	key := msg.String()

	if s.player.State() == playback.PausedForQuestion {
		if key == "esc" || key == "q" {
			s.player.CloseQuestion()
		}
		return s, nil
	}

	switch key {
	case "esc", "q":
		return s, router.Pop()
	case "space", " ":
		s.player.Toggle()
	case "left", "h":
		s.player.Prev()
	case "right", "l":
		s.player.Next()
	case "[":
		snap := s.player.Snapshot(0)
		s.player.Scrub(snap.Elapsed - scrubStep)
	case "]":
		snap := s.player.Snapshot(0)
		s.player.Scrub(snap.Elapsed + scrubStep)
	case "r":
		if !s.player.Resume() {
			s.notice = "Nothing to resume."
		}
	case "m":
		s.palette = theme.Next(s.palette)
	case "?":
		if s.player.State() == playback.Idle {
			return s, nil
		}
		s.asking = true
		return s, s.input.Open()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			s.player.Seek(int(key[0] - '1'))
		}
	}
	return s, nil
}

func (s *PlayerScreen) handleAskKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.asking = false
		return s, nil
	case "enter":
		text := s.input.Submit()
		if text == "" {
			return s, nil
		}
		s.asking = false
		if err := s.player.Ask(context.Background(), text); err != nil {
			s.notice = fmt.Sprintf("Could not ask: %v", err)
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// Close stops the player; nothing it scheduled fires afterwards.
func (s *PlayerScreen) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.player.Close()
}
