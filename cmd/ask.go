package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/lessonplay/internal/ask"
	"github.com/abhisek/lessonplay/internal/llm"
	"github.com/abhisek/lessonplay/internal/render"
	"github.com/abhisek/lessonplay/internal/scene"
	"github.com/abhisek/lessonplay/internal/store"
)

var askCmd = &cobra.Command{
	Use:   "ask <lesson-id> <step> <question...>",
	Short: "Ask a question about one lesson step without opening the player",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().String("url", "", "Fetch the lesson from this server instead of the local catalog")
	askCmd.Flags().Int("width", 80, "Wrap the answer at this many columns")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	width, _ := cmd.Flags().GetInt("width")

	stepNum, err := strconv.Atoi(args[1])
	if err != nil || stepNum < 1 {
		return fmt.Errorf("invalid step %q: steps are numbered from 1", args[1])
	}
	question := strings.Join(args[2:], " ")

	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	l, err := e.fetcher(cmd).FetchLesson(ctx, args[0])
	if err != nil {
		return err
	}
	step := l.Step(stepNum - 1)
	if step == nil {
		return fmt.Errorf("lesson %q has %d steps", l.ID, l.StepCount())
	}

	provider, err := llm.NewProviderFromEnv(ctx, e.eventRepo(), e.log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	svc := ask.NewService(provider, ask.DefaultConfig(), e.log)

	fmt.Printf("%s, step %d: %s\n\n", l.Title, stepNum, step.Title)

	record := store.QuestionEventData{
		SessionID: uuid.NewString(),
		LessonID:  l.ID,
		StepIndex: stepNum - 1,
		Question:  question,
	}
	answer, askErr := svc.Ask(ctx, ask.Question{
		LessonID:  l.ID,
		StepIndex: stepNum - 1,
		Question:  question,
		Context:   step.Content,
	})
	markup := "<p>" + ask.FallbackAnswer + "</p>"
	if askErr == nil {
		markup = answer.Markup
		record.Answer = markup
		record.Success = true
	} else {
		record.ErrorMessage = askErr.Error()
	}
	if err := e.store.EventRepo().AppendQuestionEvent(ctx, record); err != nil {
		e.log.Warn("record question failed", "err", err)
	}

	doc, err := scene.Parse("", markup)
	if err != nil {
		return fmt.Errorf("parse answer: %w", err)
	}
	render.Typeset(render.UnicodeMath{}, doc, e.log)
	for _, line := range doc.Lines(width) {
		fmt.Println(line.Text())
	}

	if askErr != nil {
		var rl *llm.ErrRateLimit
		if errors.As(askErr, &rl) {
			return fmt.Errorf("rate limited, try again later: %w", askErr)
		}
		return askErr
	}
	return nil
}
