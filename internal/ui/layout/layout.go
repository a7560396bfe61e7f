// Package layout draws the frame around every screen: a header with the
// breadcrumb trail and a footer with key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// Below this size the frame is replaced by a resize message.
const (
	MinWidth  = 60
	MinHeight = 20
)

// Compact terminals drop decoration before content.
const (
	compactWidth  = 100
	compactHeight = 30
)

const crumbSep = " › "

// KeyHint is one entry in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < compactWidth }
func IsCompactHeight(height int) bool { return height < compactHeight }

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// Frame is one rendered screen with its chrome.
type Frame struct {
	// Trail is the screen titles from the bottom of the stack to the top.
	Trail  []string
	Status string
	Hints  []KeyHint
	Width  int
	Height int
}

// Render lays out the header, the body and the footer. body is called
// with the space left between them.
func (f Frame) Render(body func(width, height int) string) string {
	if IsTooSmall(f.Width, f.Height) {
		return tooSmall(f.Width, f.Height)
	}
	header := f.header()
	footer := f.footer()
	h := max(0, f.Height-lipgloss.Height(header)-lipgloss.Height(footer))
	content := lipgloss.NewStyle().Width(f.Width).Height(h).MaxHeight(h).Render(body(f.Width, h))
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// header shows the app name, the breadcrumb trail and the status. Crumbs
// are dropped from the front until the line fits.
func (f Frame) header() string {
	inner := max(0, f.Width-4)
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" lessonplay")
	status := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)
	room := inner - lipgloss.Width(name) - lipgloss.Width(status) - 2

	trail := f.Trail
	crumbs := strings.Join(trail, crumbSep)
	for len(trail) > 1 && lipgloss.Width(crumbs) > room {
		trail = trail[1:]
		crumbs = "…" + crumbSep + strings.Join(trail, crumbSep)
	}
	if len(trail) > 0 {
		crumbs = crumbSep + runewidth.Truncate(crumbs, max(1, room-lipgloss.Width(crumbSep)), "…")
	}
	left := name + theme.Muted.Render(crumbs)
	gap := max(1, inner-lipgloss.Width(left)-lipgloss.Width(status))
	return bar(f.Width).Render(left + strings.Repeat(" ", gap) + status)
}

// footer lists as many hints as fit on one line.
func (f Frame) footer() string {
	room := max(0, f.Width-6)
	var b strings.Builder
	used := 0
	for i, h := range f.Hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " +
			theme.Muted.Render(h.Description)
		w := lipgloss.Width(part)
		if i > 0 {
			w += 3
		}
		if used+w > room {
			break
		}
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(part)
		used += w
	}
	return bar(f.Width).Render(" " + b.String())
}

func tooSmall(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Make the terminal at least %d×%d\n(now %d×%d)", MinWidth, MinHeight, width, height))
}
