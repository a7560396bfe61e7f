package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/lessonplay/internal/lesson"
)

var (
	// ErrNotReady is returned by CreateChart before the renderer has loaded.
	ErrNotReady = errors.New("chart renderer not ready")
	// ErrUnsupportedCanvas is returned when a renderer is handed a canvas it
	// cannot draw on.
	ErrUnsupportedCanvas = errors.New("unsupported canvas")
)

// Canvas is a drawing surface anchored at a chart id in the step markup.
type Canvas interface {
	Anchor() string
}

// ChartHandle is a live chart instance. Destroy releases its canvas.
type ChartHandle interface {
	Destroy()
}

// ChartRenderer draws declarative chart specs onto canvases. Ready reports
// whether the renderer has finished loading; CreateChart fails with
// ErrNotReady before that.
type ChartRenderer interface {
	Ready() bool
	CreateChart(canvas Canvas, spec lesson.ChartSpec) (ChartHandle, error)
}

var palette = []color.NRGBA{
	{75, 192, 192, 255},
	{255, 99, 132, 255},
	{54, 162, 235, 255},
	{255, 206, 86, 255},
	{153, 102, 255, 255},
	{255, 159, 64, 255},
}

// datasetColor resolves a dataset's border (or background) color, falling
// back to the palette.
func datasetColor(ds lesson.Dataset, i int) color.NRGBA {
	for _, s := range []string{ds.BorderColor, ds.BackgroundColor} {
		if c, ok := parseColor(s); ok {
			return c
		}
	}
	return palette[i%len(palette)]
}

// parseColor understands #rgb, #rrggbb, rgb(r, g, b) and rgba(r, g, b, a).
func parseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return color.NRGBA{}, false
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, false
		}
		return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
	case strings.HasPrefix(s, "rgb"):
		open, end := strings.IndexByte(s, '('), strings.IndexByte(s, ')')
		if open < 0 || end < open {
			return color.NRGBA{}, false
		}
		fields := strings.Split(s[open+1:end], ",")
		if len(fields) < 3 {
			return color.NRGBA{}, false
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
			if err != nil || n < 0 || n > 255 {
				return color.NRGBA{}, false
			}
			rgb[i] = uint8(n)
		}
		alpha := uint8(255)
		if len(fields) == 4 {
			a, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
			if err != nil {
				return color.NRGBA{}, false
			}
			alpha = uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
		}
		return color.NRGBA{rgb[0], rgb[1], rgb[2], alpha}, true
	}
	return color.NRGBA{}, false
}

// valueRange returns the min and max over every dataset, widened so that the
// range is never empty.
func valueRange(spec lesson.ChartSpec, fromZero bool) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, ds := range spec.Data.Datasets {
		for _, v := range ds.Data {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if fromZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if hi == lo {
		hi, lo = hi+1, lo-1
	}
	return lo, hi
}

func pointCount(spec lesson.ChartSpec) int {
	n := len(spec.Data.Labels)
	for _, ds := range spec.Data.Datasets {
		if len(ds.Data) > n {
			n = len(ds.Data)
		}
	}
	return n
}

func label(spec lesson.ChartSpec, i int) string {
	if i < len(spec.Data.Labels) {
		return spec.Data.Labels[i]
	}
	return strconv.Itoa(i + 1)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func checkSpec(spec lesson.ChartSpec) error {
	if !spec.Type.Valid() {
		return fmt.Errorf("chart %q: unknown type %q", spec.ID, spec.Type)
	}
	return nil
}
