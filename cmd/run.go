package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/lessonplay/internal/app"
	"github.com/abhisek/lessonplay/internal/player"
	"github.com/abhisek/lessonplay/internal/ui/theme"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI. With a
// lesson id it opens straight into that lesson at step (0-based).
func runApp(cmd *cobra.Command, lessonID string, step int) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	pal := e.cfg.Palette()
	if name, _ := cmd.Flags().GetString("palette"); name != "" {
		p, ok := theme.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown palette %q, want one of %s", name, strings.Join(theme.Names(), ", "))
		}
		pal = p
	}

	fetcher := e.fetcher(cmd)
	asker := e.askService(cmd.Context())

	e.log.Info("starting", "lesson", lessonID, "step", step, "lessons", len(e.catalog.List()))
	return app.Run(app.Options{
		Lessons:     e.catalog.List(),
		NewPlayer:   func() *player.Player { return e.newPlayer(fetcher, asker) },
		EventRepo:   e.eventRepo(),
		Palette:     pal,
		StartLesson: lessonID,
		StartStep:   step,
	})
}
