package render

import (
	"errors"
	"testing"
)

func TestUnicodeMath(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`\frac{d}{dx}[c] = 0`, "d/dx[c] = 0"},
		{`\lim_{x \to 2} x^2 = 4`, "lim_(x→2) x² = 4"},
		{`f(x) = \frac{x^2 - 4}{x - 2}`, "f(x) = (x² − 4)/(x − 2)"},
		{`\frac{2^2 - 4}{2 - 2} = \frac{0}{0}`, "(2² − 4)/(2 − 2) = 0/0"},
		{`\frac{d}{dx}[x^n] = nx^{n-1}`, "d/dx[xⁿ] = nxⁿ⁻¹"},
		{`3 \cdot 2x^{2-1} + 2 \cdot 1x^{1-1} + 0`, "3 · 2x²⁻¹ + 2 · 1x¹⁻¹ + 0"},
		{`f'(x) = 6x + 2`, "f′(x) = 6x + 2"},
		{`-5 + x`, "−5 + x"},
		{`x+2 \quad \text{for } x \neq 2`, "x + 2  for x ≠ 2"},
		{`\frac{0}{0}, \frac{\infty}{\infty}, 0 \cdot \infty`, "0/0, ∞/∞, 0 · ∞"},
		{`\lim_{x \to 3^-} g(x)`, "lim_(x→3⁻) g(x)"},
		{`\sqrt{x^2 + 1}`, "√(x² + 1)"},
		{`\alpha + \beta \leq \pi`, "α + β ≤ π"},
		{`a_1 + a_{10}`, "a₁ + a₁₀"},
		{`\left( x \right)`, "(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := UnicodeMath{}.RenderMath(tt.src, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnicodeMath_MalformedFailsSoft(t *testing.T) {
	for _, src := range []string{
		`\frac{1}{`,
		`x^`,
		`}x`,
		`{unclosed`,
		`\text x`,
		`\`,
		`\sqrt[3{x}`,
	} {
		got, err := UnicodeMath{}.RenderMath(src, false)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: err = %v, want ErrMalformed", src, err)
		}
		if got != src {
			t.Errorf("%q: fallback = %q, want the source", src, got)
		}
	}
}
