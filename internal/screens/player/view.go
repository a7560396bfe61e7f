package player

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	lp "github.com/abhisek/lessonplay/internal/player"
	"github.com/abhisek/lessonplay/internal/playback"
	"github.com/abhisek/lessonplay/internal/scene"
	"github.com/abhisek/lessonplay/internal/ui/components"
	"github.com/abhisek/lessonplay/internal/ui/layout"
	"github.com/abhisek/lessonplay/internal/ui/theme"
)

const sideMargin = 2

func (s *PlayerScreen) View(width, height int) string {
	inner := max(1, width-2*sideMargin)
	snap := s.player.Snapshot(inner)

	switch {
	case snap.Err != nil:
		return renderMessage(width, theme.ErrorText, fmt.Sprintf("Could not load %q: %v", s.lessonID, snap.Err))
	case snap.State == playback.Idle:
		return renderMessage(width, theme.Hint, "Loading lesson...")
	}

	var b strings.Builder
	b.WriteString(s.renderInfo(snap, inner))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	b.WriteString("\n")
	if !layout.IsCompactHeight(height) {
		b.WriteString("\n")
	}

	footer := s.renderFooter(snap, inner)
	bodyHeight := max(1, height-lipgloss.Height(b.String())-lipgloss.Height(footer)-1)

	var body []string
	if snap.Question.Open || s.asking {
		body = s.renderQuestion(snap, inner)
	} else {
		for _, l := range snap.Lines {
			body = append(body, renderLine(l, s.palette))
		}
	}
	if len(body) > bodyHeight {
		body = body[:bodyHeight]
	}
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString(strings.Repeat("\n", bodyHeight-len(body)+1))
	b.WriteString(footer)

	style := lipgloss.NewStyle().Padding(0, sideMargin)
	if s.palette.Bg != nil {
		style = style.Background(s.palette.Bg)
	}
	return style.Render(b.String())
}

func (s *PlayerScreen) renderInfo(snap lp.Snapshot, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("Step %d/%d  %s", snap.Index+1, snap.StepCount, snap.StepTitle))
	right := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s / %s", clockTime(snap.Elapsed), clockTime(snap.Duration)))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 || (layout.IsCompactWidth(width) && gap < 4) {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *PlayerScreen) renderFooter(snap lp.Snapshot, width int) string {
	var b strings.Builder
	track := components.StepTrack{Steps: snap.StepCount, Current: snap.Index, Percent: snap.Progress, Width: width}
	b.WriteString(track.View())
	switch {
	case s.notice != "":
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(s.notice))
	case snap.ResumeStep >= 0 && snap.Index == 0:
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("You stopped at step %d last time. Press r to resume.", snap.ResumeStep+1)))
	}
	return b.String()
}

func (s *PlayerScreen) renderQuestion(snap lp.Snapshot, width int) []string {
	var out []string
	if s.asking {
		out = append(out, theme.Hint.Render("Playback pauses while you ask."), "", s.input.View())
		return out
	}
	q := snap.Question
	out = append(out, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Width(width).Render("Q: "+q.Text), "")
	if q.Pending {
		return append(out, theme.Hint.Render("Thinking..."))
	}
	for _, l := range q.Answer {
		out = append(out, renderLine(l, s.palette))
	}
	if q.Err != nil {
		out = append(out, "", theme.Hint.Render(q.Err.Error()))
	}
	return out
}

func clockTime(d time.Duration) string {
	secs := int(d.Round(100*time.Millisecond) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func renderMessage(width int, style lipgloss.Style, msg string) string {
	return style.Width(width).Align(lipgloss.Center).Render("\n\n" + msg)
}

// renderLine draws a laid-out line, mapping each span's animated style to
// terminal attributes. Content that has not started to fade in keeps its
// width as blank cells so the layout does not jump.
func renderLine(l scene.Line, pal theme.Palette) string {
	var b strings.Builder
	for _, sp := range l.Spans {
		b.WriteString(renderSpan(sp, pal))
	}
	return b.String()
}

func renderSpan(sp scene.Span, pal theme.Palette) string {
	if sp.Style.Opacity < 0.1 {
		return strings.Repeat(" ", lipgloss.Width(sp.Text))
	}
	st := lipgloss.NewStyle()
	switch sp.Kind {
	case scene.KindTitle:
		st = st.Foreground(pal.Title).Bold(true)
	case scene.KindMath:
		st = st.Foreground(pal.Math)
	case scene.KindChart:
		st = st.Foreground(pal.Chart)
	default:
		st = st.Foreground(pal.Text)
	}
	if sp.Style.Opacity < 0.6 {
		st = st.Foreground(pal.Faint)
	}
	if sp.Style.Highlight > 0.3 {
		st = st.Foreground(pal.Highlight).Bold(true)
	}
	return st.Render(sp.Text)
}
