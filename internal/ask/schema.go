package ask

import "github.com/abhisek/lessonplay/internal/llm"

// AnswerSchema defines the JSON schema for answers.
var AnswerSchema = &llm.Schema{
	Name:        "step-answer",
	Description: "An answer to a learner's question about one lesson step",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "string",
				"description": "Answer as simple HTML: <p>, <ul>/<ol>/<li>, and math in <span class=\"math\">LaTeX</span> or <div class=\"math display\">LaTeX</div>",
				"minLength":   1,
			},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	},
}
