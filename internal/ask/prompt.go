package ask

import (
	"fmt"
	"strings"
)

const askSystemPrompt = `You are a patient math tutor narrating a step-by-step lesson. The learner paused the lesson to ask about the step on screen. Answer in 2-5 short paragraphs, refer back to the step where it helps, and keep notation consistent with the step.`

func buildAskUserMessage(q Question) string {
	var b strings.Builder

	if q.LessonID != "" {
		b.WriteString(fmt.Sprintf("Lesson: %s\n", q.LessonID))
	}
	b.WriteString(fmt.Sprintf("Step: %d\n", q.StepIndex+1))

	b.WriteString("\nStep content:\n")
	if strings.TrimSpace(q.Context) == "" {
		b.WriteString("None\n")
	} else {
		b.WriteString(strings.TrimSpace(q.Context))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\nQuestion: %s\n", strings.TrimSpace(q.Question)))
	b.WriteString(`
Instructions:
1. Answer only what was asked. If the question is unrelated to the lesson, say so briefly.
2. Write math in LaTeX inside the math spans described by the schema.
3. Do not repeat the whole step back to the learner.`)

	return b.String()
}
