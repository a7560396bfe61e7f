package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonplay/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent playback sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		questions, _ := cmd.Flags().GetBool("questions")

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		sessions, err := store.SessionSummaries(cmd.Context(), e.eventRepo(), limit)
		if err != nil {
			return err
		}
		writeSessions(cmd.OutOrStdout(), sessions, questions)
		return nil
	},
}

func writeSessions(w io.Writer, sessions []store.SessionSummary, questions bool) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No playback recorded yet.")
		return
	}
	t := newTable([]string{"Started", "Lesson", "Length", "Step", "Plays", "Questions"}, 2, 3, 4, 5)
	for _, s := range sessions {
		t.Row(
			s.Started.Local().Format("2006-01-02 15:04"),
			truncate(s.LessonID, 24),
			s.Duration().Round(time.Second).String(),
			strconv.Itoa(s.LastStep+1),
			strconv.Itoa(s.Plays),
			strconv.Itoa(len(s.Questions)),
		)
	}
	fmt.Fprintln(w, t.String())
	if !questions {
		return
	}
	for _, s := range sessions {
		if len(s.Questions) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s, %s\n", s.LessonID, s.Started.Local().Format("2006-01-02 15:04"))
		for _, q := range s.Questions {
			fmt.Fprintf(w, "  %s step %d: %s\n", mark(q.Success), q.StepIndex+1, q.Question)
		}
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 500, "Number of recent events to summarize")
	historyCmd.Flags().BoolP("questions", "q", false, "List the questions asked in each session")
}
