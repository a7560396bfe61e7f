// Package components holds the widgets the screens share.
package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// Entry is one row of a Picker.
type Entry struct {
	Title string
	// Meta is shown under the title while the entry has the cursor.
	Meta string
	// Choose runs on Enter. A nil Choose makes the entry inert.
	Choose func() tea.Cmd
	Off    bool
}

// Picker is a vertical list with a cursor that skips entries that are Off
// and wraps at both ends. Digits 1 to 9 choose an entry directly.
type Picker struct {
	entries []Entry
	cursor  int
}

func NewPicker(entries []Entry) Picker {
	p := Picker{entries: entries, cursor: -1}
	p.move(1)
	return p
}

// Current returns the entry under the cursor, or false when every entry is
// off.
func (p Picker) Current() (Entry, bool) {
	if p.cursor < 0 {
		return Entry{}, false
	}
	return p.entries[p.cursor], true
}

// move steps the cursor by dir until it lands on an enabled entry.
func (p *Picker) move(dir int) {
	n := len(p.entries)
	for i := 1; i <= n; i++ {
		next := ((p.cursor+dir*i)%n + n) % n
		if !p.entries[next].Off {
			p.cursor = next
			return
		}
	}
	p.cursor = -1
}

func (p Picker) choose(i int) tea.Cmd {
	if i < 0 || i >= len(p.entries) {
		return nil
	}
	e := p.entries[i]
	if e.Off || e.Choose == nil {
		return nil
	}
	return e.Choose()
}

func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || p.cursor < 0 {
		return p, nil
	}
	switch k := key.String(); k {
	case "up", "k":
		p.move(-1)
	case "down", "j", "tab":
		p.move(1)
	case "home", "g":
		p.cursor = -1
		p.move(1)
	case "end", "G":
		p.cursor = 0
		p.move(-1)
	case "enter":
		return p, p.choose(p.cursor)
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			i := int(k[0] - '1')
			if i < len(p.entries) && !p.entries[i].Off {
				p.cursor = i
				return p, p.choose(i)
			}
		}
	}
	return p, nil
}

func (p Picker) View() string {
	var b strings.Builder
	for i, e := range p.entries {
		num := "   "
		if i < 9 {
			num = string(rune('1'+i)) + ". "
		}
		switch {
		case i == p.cursor:
			b.WriteString(theme.Selected.Render("▸ " + num + e.Title))
			if e.Meta != "" {
				b.WriteString("\n")
				b.WriteString(theme.Hint.Render("     " + e.Meta))
			}
		case e.Off:
			b.WriteString(theme.Muted.Render("  " + num + e.Title))
		default:
			b.WriteString(theme.Unselected.Render("  " + num + e.Title))
		}
		b.WriteString("\n")
	}
	return b.String()
}
