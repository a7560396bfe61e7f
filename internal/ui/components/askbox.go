package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// AskBox is the one-line question prompt. Up and Down recall questions
// submitted earlier in the session.
type AskBox struct {
	input  textinput.Model
	asked  []string
	recall int
}

func NewAskBox(placeholder string, limit int) AskBox {
	in := textinput.New()
	in.Prompt = "? "
	in.Placeholder = placeholder
	in.CharLimit = limit
	return AskBox{input: in}
}

// Open clears the prompt and focuses it.
func (a *AskBox) Open() tea.Cmd {
	a.input.Reset()
	a.recall = len(a.asked)
	return a.input.Focus()
}

// Submit returns the trimmed question and remembers it. Blank input
// returns "" and leaves the prompt as it is.
func (a *AskBox) Submit() string {
	q := strings.TrimSpace(a.input.Value())
	if q == "" {
		return ""
	}
	if n := len(a.asked); n == 0 || a.asked[n-1] != q {
		a.asked = append(a.asked, q)
	}
	a.input.Reset()
	a.input.Blur()
	return q
}

func (a AskBox) Update(msg tea.Msg) (AskBox, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && len(a.asked) > 0 {
		switch key.String() {
		case "up":
			a.recall = max(0, a.recall-1)
			a.show()
			return a, nil
		case "down":
			a.recall = min(len(a.asked), a.recall+1)
			a.show()
			return a, nil
		}
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// show puts the recalled question in the prompt. Past the newest entry the
// prompt is blank again.
func (a *AskBox) show() {
	if a.recall >= len(a.asked) {
		a.input.Reset()
		return
	}
	a.input.SetValue(a.asked[a.recall])
	a.input.CursorEnd()
}

func (a AskBox) View() string {
	return a.input.View()
}
