package timeline

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear leaves progress unchanged.
func Linear(t float64) float64 { return t }

// Power1Out decelerates quadratically.
func Power1Out(t float64) float64 { return 1 - (1-t)*(1-t) }

// Power2Out decelerates cubically. It is the default ease.
func Power2Out(t float64) float64 { return 1 - pow(1-t, 3) }

// InOutCubic accelerates then decelerates.
func InOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// BackOut overshoots the target by an amount controlled by s, then settles.
func BackOut(s float64) Easing {
	return func(t float64) float64 {
		u := t - 1
		return 1 + (s+1)*u*u*u + s*u*u
	}
}

var backPattern = regexp.MustCompile(`^back\.out\(([0-9.]+)\)$`)

// EasingByName resolves an ease name such as "power2.out", "linear",
// "inOutCubic" or "back.out(1.7)". Unknown names fall back to Power2Out.
func EasingByName(name string) Easing {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "linear", "none":
		return Linear
	case "power1.out", "quad.out":
		return Power1Out
	case "", "power2.out", "cubic.out":
		return Power2Out
	case "inoutcubic", "power2.inout", "cubic.inout":
		return InOutCubic
	case "back.out":
		return BackOut(1.7)
	}
	if m := backPattern.FindStringSubmatch(name); m != nil {
		if s, err := strconv.ParseFloat(m[1], 64); err == nil {
			return BackOut(s)
		}
	}
	return Power2Out
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func pow(x float64, n int) float64 {
	return math.Pow(x, float64(n))
}
