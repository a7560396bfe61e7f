// Package catalog is the lesson picker shown at start.
package catalog

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/router"
	"github.com/abhisek/lessonplay/internal/screen"
	"github.com/abhisek/lessonplay/internal/ui/components"
	"github.com/abhisek/lessonplay/internal/ui/layout"
	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// CatalogScreen lists the available lessons.
type CatalogScreen struct {
	picker  components.Picker
	lessons int
}

var _ screen.Screen = (*CatalogScreen)(nil)
var _ screen.KeyHintProvider = (*CatalogScreen)(nil)

// New creates a CatalogScreen. open builds the player screen for a lesson;
// history may be nil when no event store is available.
func New(lessons []*lesson.Lesson, open func(id string) screen.Screen, history func() screen.Screen) *CatalogScreen {
	entries := make([]components.Entry, 0, len(lessons)+2)
	for _, l := range lessons {
		id := l.ID
		entries = append(entries, components.Entry{
			Title:  l.Title,
			Meta:   describe(l),
			Choose: func() tea.Cmd { return router.Push(open(id)) },
		})
	}
	entries = append(entries,
		components.Entry{
			Title:  "History",
			Meta:   "Past sessions and the questions asked in them",
			Off:    history == nil,
			Choose: func() tea.Cmd { return router.Push(history()) },
		},
		components.Entry{
			Title:  "Quit",
			Choose: func() tea.Cmd { return tea.Quit },
		},
	)
	return &CatalogScreen{picker: components.NewPicker(entries), lessons: len(lessons)}
}

func describe(l *lesson.Lesson) string {
	total := l.TotalDuration().Std().Round(time.Second)
	steps := fmt.Sprintf("%d steps, %s", l.StepCount(), total)
	if l.Description == "" {
		return steps
	}
	return l.Description + " (" + steps + ")"
}

func (c *CatalogScreen) Init() tea.Cmd {
	return nil
}

func (c *CatalogScreen) Title() string {
	return "Lessons"
}

func (c *CatalogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "1-9", Description: "Pick"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (c *CatalogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	c.picker, cmd = c.picker.Update(msg)
	return c, cmd
}

func (c *CatalogScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Pick a lesson"))
	b.WriteString("\n")
	if c.lessons == 0 {
		b.WriteString(theme.Subtitle.Width(width).Render("No lessons found. Add YAML lessons to your lesson directory."))
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(min(width, 72)).Render(c.picker.View())))
	return b.String()
}
