package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonplay/internal/ask"
	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/config"
	"github.com/abhisek/lessonplay/internal/lesson"
	"github.com/abhisek/lessonplay/internal/llm"
	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/player"
	"github.com/abhisek/lessonplay/internal/render"
	"github.com/abhisek/lessonplay/internal/store"
)

// env is what every command shares: settings, the log, the lesson catalog
// and, when requested, the event store.
type env struct {
	cfg     config.Config
	log     *logger.Logger
	catalog *lesson.Catalog
	store   *store.Store
}

// setup loads configuration and opens the log and catalog. withStore also
// opens the database.
func setup(cmd *cobra.Command, withStore bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("lesson-dir"); dir != "" {
		cfg.Lessons.Dir = dir
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	e := &env{cfg: cfg, log: log}

	e.catalog, err = lesson.NewCatalog(cfg.Lessons.Dir)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load lessons: %w", err)
	}

	if withStore {
		dbPath, err := resolveDBPath(cmd, cfg.DB.Path)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		e.store, err = store.Open(dbPath)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	return e, nil
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	e.log.Sync()
}

func (e *env) eventRepo() store.EventRepo {
	if e.store == nil {
		return nil
	}
	return e.store.EventRepo()
}

// fetcher returns the HTTP fetcher when a lesson URL is configured and the
// catalog otherwise.
func (e *env) fetcher(cmd *cobra.Command) lesson.Fetcher {
	base := e.cfg.Lessons.BaseURL
	if f := cmd.Flags().Lookup("url"); f != nil && f.Value.String() != "" {
		base = f.Value.String()
	}
	if base != "" {
		return lesson.NewHTTPFetcher(base)
	}
	return e.catalog
}

// askService builds the question answerer. Without a configured provider it
// returns nil and the player answers with the fallback message.
func (e *env) askService(ctx context.Context) *ask.Service {
	provider, err := llm.NewProviderFromEnv(ctx, e.eventRepo(), e.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Questions will get a fallback answer.")
		return nil
	}
	return ask.NewService(provider, ask.DefaultConfig(), e.log)
}

// newPlayer wires a player from the loaded settings.
func (e *env) newPlayer(fetcher lesson.Fetcher, asker *ask.Service) *player.Player {
	opts := player.Options{
		Clock:     clock.Real(),
		Fetcher:   fetcher,
		Math:      render.UnicodeMath{},
		Charts:    render.TextCharts{},
		Sequencer: e.cfg.SequencerConfig(),
		Timeline:  e.cfg.TimelineConfig(),
		Bridge:    e.cfg.BridgeConfig(),
		Ask:       asker,
		Log:       e.log,
	}
	if e.store != nil {
		opts.Events = e.store.EventRepo()
		opts.Progress = e.store.ProgressRepo()
	}
	return player.New(opts)
}
