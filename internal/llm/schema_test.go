package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"valid", `{"answer":"<p>yes</p>"}`, true},
		{"extra field allowed", `{"answer":"x","note":1}`, true},
		{"missing required", `{}`, false},
		{"wrong type", `{"answer":3}`, false},
		{"too short", `{"answer":""}`, false},
		{"not json", `answer: yes`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(answerSchema, json.RawMessage(tt.raw))
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				var invalid *ErrInvalidResponse
				if !errors.As(err, &invalid) {
					t.Fatalf("expected ErrInvalidResponse, got %v", err)
				}
				if string(invalid.Content) != tt.raw {
					t.Errorf("content = %q", invalid.Content)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	strict := &Schema{Name: "shared", Definition: map[string]any{
		"type": "object", "required": []any{"a"},
	}}
	loose := &Schema{Name: "shared", Definition: map[string]any{"type": "object"}}

	if err := validateResponse(strict, json.RawMessage(`{}`)); err == nil {
		t.Fatal("strict schema should reject {}")
	}
	if err := validateResponse(loose, json.RawMessage(`{}`)); err != nil {
		t.Fatalf("loose schema should accept {}: %v", err)
	}
}

func TestValidateResponse_BrokenSchema(t *testing.T) {
	bad := &Schema{Name: "broken", Definition: map[string]any{"type": 12}}
	var invalid *ErrInvalidResponse
	if err := validateResponse(bad, json.RawMessage(`{}`)); !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}
