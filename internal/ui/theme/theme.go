// Package theme holds the colors shared by the screens and the palettes a
// lesson can be played in.
package theme

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
)

// Chrome colors, used for everything around the lesson itself.
var (
	Primary   = lipgloss.Color("#6366F1")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title      = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle   = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Hint       = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	ErrorText  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Muted      = lipgloss.NewStyle().Foreground(TextDim)
)

// Palette colors step content. Faint is for content still fading in. A nil
// Bg leaves the terminal background alone.
type Palette struct {
	Name      string
	Title     color.Color
	Text      color.Color
	Faint     color.Color
	Math      color.Color
	Chart     color.Color
	Highlight color.Color
	Bg        color.Color
}

var (
	// Paper follows the chrome colors on the terminal's own background.
	Paper = Palette{
		Name:      "paper",
		Title:     Primary,
		Text:      Text,
		Faint:     Border,
		Math:      Secondary,
		Chart:     lipgloss.Color("#A5B4FC"),
		Highlight: Accent,
	}

	// Manim is the black lecture look with its blue, yellow and red.
	Manim = Palette{
		Name:      "manim",
		Title:     lipgloss.Color("#58C4DD"),
		Text:      lipgloss.Color("#ECE7E2"),
		Faint:     lipgloss.Color("#444444"),
		Math:      lipgloss.Color("#FFFF00"),
		Chart:     lipgloss.Color("#83C167"),
		Highlight: lipgloss.Color("#FC6255"),
		Bg:        lipgloss.Color("#000000"),
	}

	// Chalk is a green board with chalk colors.
	Chalk = Palette{
		Name:      "chalk",
		Title:     lipgloss.Color("#FFFDF5"),
		Text:      lipgloss.Color("#E8E6DC"),
		Faint:     lipgloss.Color("#4F6B5A"),
		Math:      lipgloss.Color("#F7E98E"),
		Chart:     lipgloss.Color("#9AD1F5"),
		Highlight: lipgloss.Color("#F4A6B8"),
		Bg:        lipgloss.Color("#24392D"),
	}
)

// Palettes is the order the player cycles through.
var Palettes = []Palette{Paper, Manim, Chalk}

// Lookup finds a palette by name, ignoring case.
func Lookup(name string) (Palette, bool) {
	for _, p := range Palettes {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Palette{}, false
}

// Next returns the palette after p, wrapping around. Unknown palettes go
// back to the first.
func Next(p Palette) Palette {
	for i, q := range Palettes {
		if q.Name == p.Name {
			return Palettes[(i+1)%len(Palettes)]
		}
	}
	return Palettes[0]
}

// Names lists the palette names for help text and errors.
func Names() []string {
	out := make([]string, len(Palettes))
	for i, p := range Palettes {
		out[i] = p.Name
	}
	return out
}
