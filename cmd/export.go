package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/render"
	"github.com/abhisek/lessonplay/internal/scene"
)

var exportCmd = &cobra.Command{
	Use:   "export <lesson-id>",
	Short: "Write each step as typeset text plus its charts as PNG files",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("out", ".", "Output directory")
	exportCmd.Flags().String("url", "", "Fetch the lesson from this server instead of the local catalog")
	exportCmd.Flags().String("font", "", "TrueType font for chart labels")
	exportCmd.Flags().Float64("font-size", 13, "Chart label size in points")
	exportCmd.Flags().Int("width", 80, "Text width in columns")
	exportCmd.Flags().Int("chart-width", 800, "Chart width in pixels")
	exportCmd.Flags().Int("chart-height", 480, "Chart height in pixels")
}

// exportOptions configures writing one lesson to disk.
type exportOptions struct {
	Dir         string
	Width       int
	ChartWidth  int
	ChartHeight int
	Charts      *render.PNGCharts
	Log         *logger.Logger
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := exportOptions{Charts: render.NewPNGCharts(), Log: e.log}
	opts.Dir, _ = cmd.Flags().GetString("out")
	opts.Width, _ = cmd.Flags().GetInt("width")
	opts.ChartWidth, _ = cmd.Flags().GetInt("chart-width")
	opts.ChartHeight, _ = cmd.Flags().GetInt("chart-height")
	if font, _ := cmd.Flags().GetString("font"); font != "" {
		size, _ := cmd.Flags().GetFloat64("font-size")
		if err := opts.Charts.LoadFont(font, size); err != nil {
			return err
		}
	}

	l, err := e.fetcher(cmd).FetchLesson(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	files, err := exportLesson(cmd.Context(), l, opts)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

// exportLesson writes step-NN.txt for every step and step-NN-<chart>.png
// for every chart, steps in parallel. It returns the written paths in step
// order.
func exportLesson(ctx context.Context, l *lesson.Lesson, opts exportOptions) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	written := make([][]string, l.StepCount())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range l.Steps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files, err := exportStep(l, i, opts)
			written[i] = files
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, files := range written {
		out = append(out, files...)
	}
	return out, nil
}

func exportStep(l *lesson.Lesson, i int, opts exportOptions) ([]string, error) {
	step := l.Step(i)
	prefix := filepath.Join(opts.Dir, fmt.Sprintf("step-%02d", i+1))

	doc, err := scene.Parse(step.Title, step.Content)
	if err != nil {
		return nil, fmt.Errorf("step %d: %w", i+1, err)
	}
	render.Typeset(render.UnicodeMath{}, doc, opts.Log)

	var files []string
	for _, spec := range step.Charts {
		canvas := render.NewImageCanvas(spec.ID, opts.ChartWidth, opts.ChartHeight)
		if _, err := opts.Charts.CreateChart(canvas, spec); err != nil {
			opts.Log.Warn("chart export failed", "chart", spec.ID, "step", step.ID, "err", err)
			if el := doc.ByCanvas(spec.ID); el != nil {
				el.Rendered = "[chart unavailable]"
			}
			continue
		}
		name := prefix + "-" + spec.ID + ".png"
		if err := writePNG(name, canvas); err != nil {
			return files, err
		}
		if el := doc.ByCanvas(spec.ID); el != nil {
			el.Rendered = "[chart: " + filepath.Base(name) + "]"
		}
		files = append(files, name)
	}

	var b strings.Builder
	for _, line := range doc.Lines(opts.Width) {
		b.WriteString(strings.TrimRight(line.Text(), " "))
		b.WriteString("\n")
	}
	name := prefix + ".txt"
	if err := os.WriteFile(name, []byte(b.String()), 0o644); err != nil {
		return files, fmt.Errorf("write %s: %w", name, err)
	}
	return append([]string{name}, files...), nil
}

func writePNG(name string, canvas *render.ImageCanvas) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := canvas.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}
