package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type":        "object",
		"description": "an answer",
		"properties": map[string]any{
			"answer": map[string]any{"type": "string", "minLength": 1},
			"level":  map[string]any{"type": "string", "enum": []any{"intro", "deep"}},
			"steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required":             []any{"answer"},
		"additionalProperties": false,
	}

	s := geminiSchema(def)
	if s.Type != genai.TypeObject || s.Description != "an answer" {
		t.Fatalf("root = %+v", s)
	}
	if len(s.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(s.Properties))
	}
	if got := s.Properties["answer"].Type; got != genai.TypeString {
		t.Errorf("answer type = %v", got)
	}
	if got := s.Properties["level"].Enum; len(got) != 2 || got[1] != "deep" {
		t.Errorf("level enum = %v", got)
	}
	steps := s.Properties["steps"]
	if steps.Type != genai.TypeArray || steps.Items == nil || steps.Items.Type != genai.TypeInteger {
		t.Errorf("steps = %+v", steps)
	}
	if len(s.Required) != 1 || s.Required[0] != "answer" {
		t.Errorf("required = %v", s.Required)
	}
}

func TestGeminiSchema_UnknownTypeIsString(t *testing.T) {
	if got := geminiSchema(map[string]any{"type": "null"}).Type; got != genai.TypeString {
		t.Errorf("type = %v", got)
	}
	if got := stringList([]string{"a", "b"}); len(got) != 2 {
		t.Errorf("stringList = %v", got)
	}
}
