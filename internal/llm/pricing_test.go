package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		in    float64
		ok    bool
	}{
		{"gpt-4o", 2.5, true},
		{"gpt-4o-mini-2024-07-18", 0.15, true},
		{"gpt-4o-2024-08-06", 2.5, true},
		{"claude-haiku-4-5-20251001", 1, true},
		{"claude-sonnet-4-5-20250929", 3, true},
		{"google/gemini-2.5-flash", 0.3, true},
		{"gemini-2.5-flash-lite", 0.1, true},
		{"gpt-4oo", 0, false},
		{"mock", 0, false},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if (c != nil) != tt.ok {
			t.Errorf("%s: found = %v", tt.model, c != nil)
			continue
		}
		if c != nil && c.InputPerMTok != tt.in {
			t.Errorf("%s: input price = %v, want %v", tt.model, c.InputPerMTok, tt.in)
		}
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	if got := c.Cost(2_000_000, 100_000); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("cost = %v", got)
	}
}
