package render

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/abhisek/lessonplay/internal/lesson"
)

// TextCanvas is a fixed-size grid of terminal cells.
type TextCanvas struct {
	anchor string
	w, h   int
	rows   [][]rune
}

var _ Canvas = (*TextCanvas)(nil)

// NewTextCanvas creates a blank w×h canvas anchored at anchor.
func NewTextCanvas(anchor string, w, h int) *TextCanvas {
	c := &TextCanvas{anchor: anchor, w: max(w, 8), h: max(h, 4)}
	c.clear()
	return c
}

func (c *TextCanvas) Anchor() string { return c.anchor }

// Size returns the canvas size in cells.
func (c *TextCanvas) Size() (w, h int) { return c.w, c.h }

// String returns the drawn rows with trailing blanks trimmed.
func (c *TextCanvas) String() string {
	lines := make([]string, 0, len(c.rows))
	for _, r := range c.rows {
		lines = append(lines, strings.TrimRight(string(r), " "))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func (c *TextCanvas) clear() {
	c.rows = make([][]rune, c.h)
	for i := range c.rows {
		c.rows[i] = []rune(strings.Repeat(" ", c.w))
	}
}

func (c *TextCanvas) set(x, y int, r rune) {
	if y >= 0 && y < c.h && x >= 0 && x < c.w {
		c.rows[y][x] = r
	}
}

// text writes s starting at column x. Wide runes take one cell each, which
// is good enough for the labels charts carry.
func (c *TextCanvas) text(x, y int, s string) {
	for _, r := range s {
		c.set(x, y, r)
		x++
	}
}

// TextCharts draws charts with box and block characters.
type TextCharts struct{}

var _ ChartRenderer = TextCharts{}

func (TextCharts) Ready() bool { return true }

func (TextCharts) CreateChart(canvas Canvas, spec lesson.ChartSpec) (ChartHandle, error) {
	c, ok := canvas.(*TextCanvas)
	if !ok {
		return nil, ErrUnsupportedCanvas
	}
	if err := checkSpec(spec); err != nil {
		return nil, err
	}
	c.clear()
	top := 0
	if title := spec.Title(); title != "" {
		c.text(max(0, (c.w-runewidth.StringWidth(title))/2), 0, title)
		top = 1
	}
	switch spec.Type {
	case lesson.ChartBar:
		drawTextBars(c, spec, top)
	case lesson.ChartPie, lesson.ChartDoughnut:
		drawTextShares(c, spec, top)
	default:
		drawTextPlot(c, spec, top, spec.Type != lesson.ChartScatter)
	}
	return &textHandle{canvas: c}, nil
}

type textHandle struct {
	canvas *TextCanvas
	gone   bool
}

func (h *textHandle) Destroy() {
	if h.gone {
		return
	}
	h.gone = true
	h.canvas.clear()
}

var markers = []rune{'●', '◆', '▲', '■', '○', '◇'}

// drawTextPlot renders line, radar and scatter charts on a value grid with a
// y axis on the left and a legend on the bottom row.
func drawTextPlot(c *TextCanvas, spec lesson.ChartSpec, top int, connect bool) {
	lo, hi := valueRange(spec, false)
	hiLabel, loLabel := formatValue(hi), formatValue(lo)
	axis := max(len(hiLabel), len(loLabel)) + 1
	left := axis + 1
	plotW := c.w - left
	plotH := c.h - top - 2
	if plotW < 2 || plotH < 2 {
		return
	}
	c.text(axis-len(hiLabel)-1, top, hiLabel)
	c.text(axis-len(loLabel)-1, top+plotH-1, loLabel)
	for y := top; y < top+plotH; y++ {
		c.set(axis, y, '│')
	}
	c.set(axis, top+plotH, '└')
	for x := left; x < c.w; x++ {
		c.set(x, top+plotH, '─')
	}

	n := pointCount(spec)
	xAt := func(i int) float64 {
		if n <= 1 {
			return float64(left)
		}
		return float64(left) + float64(i)*float64(plotW-1)/float64(n-1)
	}
	yAt := func(v float64) float64 {
		return float64(top) + (hi-v)/(hi-lo)*float64(plotH-1)
	}

	for d, ds := range spec.Data.Datasets {
		mark := markers[d%len(markers)]
		for i := range ds.Data {
			if connect && i > 0 {
				x0, y0 := xAt(i-1), yAt(ds.Data[i-1])
				x1, y1 := xAt(i), yAt(ds.Data[i])
				steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
				for s := 1; s < steps; s++ {
					t := float64(s) / float64(steps)
					x, y := int(math.Round(x0+(x1-x0)*t)), int(math.Round(y0+(y1-y0)*t))
					if c.rows[clampInt(y, 0, c.h-1)][clampInt(x, 0, c.w-1)] == ' ' {
						c.set(x, y, '·')
					}
				}
			}
		}
		for i, v := range ds.Data {
			c.set(int(math.Round(xAt(i))), int(math.Round(yAt(v))), mark)
		}
	}

	var legend []string
	for d, ds := range spec.Data.Datasets {
		legend = append(legend, string(markers[d%len(markers)])+" "+ds.Label)
	}
	c.text(left, c.h-1, strings.Join(legend, "  "))
}

// drawTextBars renders one horizontal bar per label and dataset.
func drawTextBars(c *TextCanvas, spec lesson.ChartSpec, top int) {
	lo, hi := valueRange(spec, true)
	n := pointCount(spec)
	labelW := 0
	for i := 0; i < n; i++ {
		labelW = max(labelW, runewidth.StringWidth(label(spec, i)))
	}
	barW := c.w - labelW - 10
	if barW < 1 {
		return
	}
	fills := []rune{'█', '▓', '▒', '░'}
	y := top
	for i := 0; i < n; i++ {
		for d, ds := range spec.Data.Datasets {
			if i >= len(ds.Data) || y >= c.h {
				continue
			}
			if d == 0 {
				c.text(0, y, label(spec, i))
			}
			c.set(labelW+1, y, '│')
			v := ds.Data[i]
			length := int(math.Round((v - math.Max(lo, 0)) / (hi - lo) * float64(barW)))
			fill := fills[d%len(fills)]
			for x := 0; x < length; x++ {
				c.set(labelW+2+x, y, fill)
			}
			c.text(labelW+3+max(length, 0), y, formatValue(v))
			y++
		}
	}
}

// drawTextShares renders pie and doughnut charts as labelled share bars.
func drawTextShares(c *TextCanvas, spec lesson.ChartSpec, top int) {
	if len(spec.Data.Datasets) == 0 {
		return
	}
	ds := spec.Data.Datasets[0]
	total := 0.0
	for _, v := range ds.Data {
		total += math.Max(v, 0)
	}
	if total == 0 {
		return
	}
	labelW := 0
	for i := range ds.Data {
		labelW = max(labelW, runewidth.StringWidth(label(spec, i)))
	}
	barW := c.w - labelW - 8
	for i, v := range ds.Data {
		y := top + i
		if y >= c.h || barW < 1 {
			return
		}
		share := math.Max(v, 0) / total
		filled := int(math.Round(share * float64(barW)))
		c.text(0, y, label(spec, i))
		for x := 0; x < barW; x++ {
			r := '░'
			if x < filled {
				r = '█'
			}
			c.set(labelW+1+x, y, r)
		}
		c.text(labelW+2+barW, y, formatValue(math.Round(share*100))+"%")
	}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
