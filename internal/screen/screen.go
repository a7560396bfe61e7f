// Package screen defines what the router stacks. A screen may also
// implement any of the optional interfaces below.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/ui/layout"
)

type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the body; the frame draws the header and footer.
	View(width, height int) string
	// Title is the screen's breadcrumb.
	Title() string
}

type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider puts a short status on the right of the header.
type StatusProvider interface {
	Status() string
}

// Closer is implemented by screens that own timers or background work. The
// router closes a screen when it leaves the stack.
type Closer interface {
	Close()
}

// DefaultHints is shown for screens without their own.
var DefaultHints = []layout.KeyHint{
	{Key: "Esc", Description: "Back"},
	{Key: "Ctrl+C", Description: "Quit"},
}

// HintsOf returns s's key hints or DefaultHints.
func HintsOf(s Screen) []layout.KeyHint {
	if hp, ok := s.(KeyHintProvider); ok {
		return hp.KeyHints()
	}
	return DefaultHints
}

// StatusOf returns s's status, or "" when it has none.
func StatusOf(s Screen) string {
	if sp, ok := s.(StatusProvider); ok {
		return sp.Status()
	}
	return ""
}

// Close closes s if it is a Closer.
func Close(s Screen) {
	if c, ok := s.(Closer); ok {
		c.Close()
	}
}
