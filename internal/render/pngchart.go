package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/abhisek/lessonplay/internal/lesson"
)

// ImageCanvas is a raster surface for PNG export.
type ImageCanvas struct {
	anchor string
	w, h   int
	dc     *gg.Context
}

var _ Canvas = (*ImageCanvas)(nil)

// NewImageCanvas creates a w×h pixel canvas.
func NewImageCanvas(anchor string, w, h int) *ImageCanvas {
	return &ImageCanvas{anchor: anchor, w: w, h: h}
}

func (c *ImageCanvas) Anchor() string { return c.anchor }

// Image returns the drawn image, or nil when nothing is drawn.
func (c *ImageCanvas) Image() image.Image {
	if c.dc == nil {
		return nil
	}
	return c.dc.Image()
}

// WritePNG encodes the drawn chart.
func (c *ImageCanvas) WritePNG(w io.Writer) error {
	if c.dc == nil {
		return fmt.Errorf("canvas %q: nothing drawn", c.anchor)
	}
	return c.dc.EncodePNG(w)
}

// PNGCharts draws charts with gg. Labels use the built-in 7x13 bitmap face
// unless a TrueType face has been loaded. Faces cache glyphs, so charts are
// drawn one at a time.
type PNGCharts struct {
	mu   sync.Mutex
	face font.Face
}

var _ ChartRenderer = (*PNGCharts)(nil)

// NewPNGCharts creates a renderer using the bitmap face.
func NewPNGCharts() *PNGCharts {
	return &PNGCharts{face: basicfont.Face7x13}
}

// LoadFont replaces the label face with the TrueType font at path.
func (p *PNGCharts) LoadFont(path string, size float64) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font: %w", err)
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.face = truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return nil
}

func (p *PNGCharts) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.face != nil
}

func (p *PNGCharts) CreateChart(canvas Canvas, spec lesson.ChartSpec) (ChartHandle, error) {
	c, ok := canvas.(*ImageCanvas)
	if !ok {
		return nil, ErrUnsupportedCanvas
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.face == nil {
		return nil, ErrNotReady
	}
	if err := checkSpec(spec); err != nil {
		return nil, err
	}

	dc := gg.NewContext(c.w, c.h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(p.face)

	top := 16.0
	if title := spec.Title(); title != "" {
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(title, float64(c.w)/2, 18, 0.5, 0.5)
		top = 36
	}
	switch spec.Type {
	case lesson.ChartPie, lesson.ChartDoughnut:
		drawPNGPie(dc, spec, top, spec.Type == lesson.ChartDoughnut)
	case lesson.ChartRadar:
		drawPNGRadar(dc, spec, top)
	default:
		drawPNGAxes(dc, spec, top)
	}
	c.dc = dc
	return &imageHandle{canvas: c}, nil
}

type imageHandle struct {
	canvas *ImageCanvas
}

func (h *imageHandle) Destroy() {
	h.canvas.dc = nil
}

func drawPNGAxes(dc *gg.Context, spec lesson.ChartSpec, top float64) {
	w, h := float64(dc.Width()), float64(dc.Height())
	left, right, bottom := 56.0, w-16, h-40
	bars := spec.Type == lesson.ChartBar
	lo, hi := valueRange(spec, bars)
	n := pointCount(spec)

	yAt := func(v float64) float64 { return bottom - (v-lo)/(hi-lo)*(bottom-top) }
	slot := (right - left) / math.Max(float64(n), 1)
	xAt := func(i int) float64 {
		if bars || n <= 1 {
			return left + slot*(float64(i)+0.5)
		}
		return left + float64(i)*(right-left)/float64(n-1)
	}

	dc.SetColor(color.NRGBA{220, 220, 220, 255})
	dc.SetLineWidth(1)
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		y := yAt(v)
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
		dc.SetColor(color.NRGBA{90, 90, 90, 255})
		dc.DrawStringAnchored(formatValue(v), left-6, y, 1, 0.35)
		dc.SetColor(color.NRGBA{220, 220, 220, 255})
	}
	dc.SetColor(color.NRGBA{90, 90, 90, 255})
	for i := 0; i < n; i++ {
		dc.DrawStringAnchored(label(spec, i), xAt(i), bottom+14, 0.5, 0.5)
	}

	groups := max(len(spec.Data.Datasets), 1)
	for d, ds := range spec.Data.Datasets {
		col := datasetColor(ds, d)
		width := float64(ds.BorderWidth)
		if width <= 0 {
			width = 2
		}
		dc.SetColor(col)
		switch spec.Type {
		case lesson.ChartBar:
			bw := slot * 0.8 / float64(groups)
			for i, v := range ds.Data {
				x := xAt(i) - slot*0.4 + float64(d)*bw
				y0, y1 := yAt(math.Max(v, 0)), yAt(math.Min(v, 0))
				dc.DrawRectangle(x, y0, bw-2, y1-y0)
				dc.Fill()
			}
		case lesson.ChartScatter:
			for i, v := range ds.Data {
				dc.DrawCircle(xAt(i), yAt(v), 4)
				dc.Fill()
			}
		default:
			dc.SetLineWidth(width)
			for i, v := range ds.Data {
				if i == 0 {
					dc.MoveTo(xAt(i), yAt(v))
				} else {
					dc.LineTo(xAt(i), yAt(v))
				}
			}
			dc.Stroke()
			for i, v := range ds.Data {
				dc.DrawCircle(xAt(i), yAt(v), 3)
				dc.Fill()
			}
		}
	}
	drawPNGLegend(dc, spec)
}

func drawPNGPie(dc *gg.Context, spec lesson.ChartSpec, top float64, hole bool) {
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
	w, h := float64(dc.Width()), float64(dc.Height())
	cx, cy := w/2, top+(h-top-24)/2
	r := math.Min(w, h-top-24)/2 - 8
	angle := -math.Pi / 2
	for i, v := range ds.Data {
		sweep := math.Max(v, 0) / total * 2 * math.Pi
		dc.SetColor(palette[i%len(palette)])
		dc.MoveTo(cx, cy)
		dc.DrawArc(cx, cy, r, angle, angle+sweep)
		dc.ClosePath()
		dc.Fill()
		angle += sweep
	}
	if hole {
		dc.SetColor(color.White)
		dc.DrawCircle(cx, cy, r*0.5)
		dc.Fill()
	}
	x := 12.0
	for i := range ds.Data {
		dc.SetColor(palette[i%len(palette)])
		dc.DrawRectangle(x, h-18, 10, 10)
		dc.Fill()
		dc.SetColor(color.Black)
		text := label(spec, i)
		dc.DrawString(text, x+14, h-9)
		tw, _ := dc.MeasureString(text)
		x += tw + 30
	}
}

func drawPNGRadar(dc *gg.Context, spec lesson.ChartSpec, top float64) {
	n := pointCount(spec)
	if n < 3 {
		drawPNGAxes(dc, spec, top)
		return
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	cx, cy := w/2, top+(h-top-24)/2
	r := math.Min(w, h-top-24)/2 - 24
	_, hi := valueRange(spec, true)
	at := func(i int, v float64) (float64, float64) {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		return cx + math.Cos(a)*r*v/hi, cy + math.Sin(a)*r*v/hi
	}

	dc.SetColor(color.NRGBA{220, 220, 220, 255})
	dc.SetLineWidth(1)
	for i := 0; i < n; i++ {
		x, y := at(i, hi)
		dc.DrawLine(cx, cy, x, y)
		dc.Stroke()
		dc.SetColor(color.NRGBA{90, 90, 90, 255})
		dc.DrawStringAnchored(label(spec, i), x, y, 0.5, 0.5)
		dc.SetColor(color.NRGBA{220, 220, 220, 255})
	}
	for d, ds := range spec.Data.Datasets {
		col := datasetColor(ds, d)
		dc.SetColor(col)
		dc.SetLineWidth(2)
		for i, v := range ds.Data {
			x, y := at(i, math.Max(v, 0))
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		dc.Stroke()
	}
	drawPNGLegend(dc, spec)
}

func drawPNGLegend(dc *gg.Context, spec lesson.ChartSpec) {
	h := float64(dc.Height())
	x := 56.0
	for d, ds := range spec.Data.Datasets {
		if ds.Label == "" {
			continue
		}
		dc.SetColor(datasetColor(ds, d))
		dc.DrawRectangle(x, h-18, 10, 10)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawString(ds.Label, x+14, h-9)
		tw, _ := dc.MeasureString(ds.Label)
		x += tw + 30
	}
}
