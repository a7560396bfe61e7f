// Package app hosts the Bubble Tea program: a stack of screens inside the
// layout frame.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/player"
	"github.com/abhisek/lessonplay/internal/router"
	"github.com/abhisek/lessonplay/internal/screen"
	"github.com/abhisek/lessonplay/internal/screens/catalog"
	"github.com/abhisek/lessonplay/internal/screens/history"
	playerscreen "github.com/abhisek/lessonplay/internal/screens/player"
	"github.com/abhisek/lessonplay/internal/store"
	"github.com/abhisek/lessonplay/internal/ui/layout"
	"github.com/abhisek/lessonplay/internal/ui/theme"
)

type Options struct {
	Lessons []*lesson.Lesson
	// NewPlayer creates a fresh player for each opened lesson.
	NewPlayer func() *player.Player
	// EventRepo backs the history screen; nil hides it.
	EventRepo store.EventRepo
	// Palette is the one lessons open in. The zero value means theme.Paper.
	Palette theme.Palette

	// StartLesson, when set, opens straight into that lesson at StartStep.
	StartLesson string
	StartStep   int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  screen.Screen
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	if opts.Palette.Name == "" {
		opts.Palette = theme.Paper
	}
	play := func(id string, step int) screen.Screen {
		return playerscreen.New(opts.NewPlayer(), id, step, opts.Palette)
	}

	var hist func() screen.Screen
	if opts.EventRepo != nil {
		hist = func() screen.Screen { return history.New(opts.EventRepo, play) }
	}
	open := func(id string) screen.Screen { return play(id, -1) }

	m := AppModel{router: router.New(catalog.New(opts.Lessons, open, hist))}
	if opts.StartLesson != "" {
		m.start = play(opts.StartLesson, opts.StartStep)
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	if m.start != nil {
		return m.router.Open(m.start)
	}
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.router.Close()
			return m, tea.Quit
		}
	}
	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}

	active := m.router.Active()
	frame := layout.Frame{
		Trail:  m.router.Trail(),
		Status: screen.StatusOf(active),
		Hints:  screen.HintsOf(active),
		Width:  m.width,
		Height: m.height,
	}
	v.SetContent(frame.Render(m.router.View))
	return v
}

// Run blocks until the program exits. Every screen is closed on the way
// out.
func Run(opts Options) error {
	m := newAppModel(opts)
	defer m.router.Close()

	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
