package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// minSegment is the narrowest a step segment may get before the track
// collapses into a single bar for the whole lesson.
const minSegment = 3

// StepTrack shows lesson progress with one segment per step. Steps before
// Current are full, Current fills by Percent and later steps are empty.
type StepTrack struct {
	Steps   int
	Current int
	// Percent is how much of the current step has played, 0 to 100.
	Percent float64
	Width   int
}

// Lesson returns the share of the whole lesson played, 0 to 1.
func (t StepTrack) Lesson() float64 {
	if t.Steps <= 0 {
		return 0
	}
	pct := min(max(t.Percent, 0), 100)
	return min(1, (float64(t.Current)+pct/100)/float64(t.Steps))
}

func (t StepTrack) View() string {
	label := fmt.Sprintf("  %d/%d", min(t.Current+1, t.Steps), t.Steps)
	room := max(minSegment, t.Width-lipgloss.Width(label))

	var bar string
	if seg := (room - (t.Steps - 1)) / max(1, t.Steps); t.Steps > 0 && seg >= minSegment {
		parts := make([]string, t.Steps)
		for i := range parts {
			switch {
			case i < t.Current:
				parts[i] = fill(seg, seg)
			case i == t.Current:
				parts[i] = fill(seg, int(float64(seg)*min(max(t.Percent, 0), 100)/100))
			default:
				parts[i] = fill(seg, 0)
			}
		}
		bar = strings.Join(parts, " ")
	} else {
		bar = fill(room, int(float64(room)*t.Lesson()))
	}
	return bar + theme.Muted.Render(label)
}

func fill(width, done int) string {
	done = min(max(done, 0), width)
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("━", done)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width-done))
}
