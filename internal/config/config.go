// Package config loads lessonplay settings from defaults, an optional YAML
// file and LESSONPLAY_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/lessonplay/internal/clock"
	"github.com/abhisek/lessonplay/internal/playback"
	"github.com/abhisek/lessonplay/internal/render"
	"github.com/abhisek/lessonplay/internal/timeline"
	"github.com/abhisek/lessonplay/internal/ui/theme"
)

// Version is the only supported config file version.
const Version = 1

type Config struct {
	Version  int      `yaml:"version"`
	Playback Playback `yaml:"playback"`
	Lessons  Lessons  `yaml:"lessons"`
	Log      Log      `yaml:"log"`
	DB       DB       `yaml:"db"`
	UI       UI       `yaml:"ui"`
}

// Playback holds the player's timings.
type Playback struct {
	Tick         time.Duration `yaml:"tick"`
	Debounce     time.Duration `yaml:"debounce"`
	Frame        time.Duration `yaml:"frame"`
	ChartPoll    time.Duration `yaml:"chart_poll"`
	StageSpanCap time.Duration `yaml:"stage_span_cap"`
}

type Lessons struct {
	// Dir holds extra lesson files that override or extend the embedded ones.
	Dir string `yaml:"dir"`
	// BaseURL, when set, fetches lessons over HTTP instead.
	BaseURL string `yaml:"base_url"`
}

type Log struct {
	Mode string `yaml:"mode"`
	Path string `yaml:"path"`
}

type DB struct {
	Path string `yaml:"path"`
}

type UI struct {
	// Palette is the palette lessons open in: paper, manim or chalk.
	Palette string `yaml:"palette"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Version: Version,
		Playback: Playback{
			Tick:         playback.DefaultTick,
			Debounce:     timeline.DefaultConfig().Debounce,
			Frame:        clock.DefaultFrame,
			ChartPoll:    render.DefaultBridgeConfig().PollInterval,
			StageSpanCap: timeline.DefaultStageConfig().SpanCap,
		},
		Log: Log{Mode: "dev"},
		UI:  UI{Palette: theme.Paper.Name},
	}
}

// Load merges defaults, the config file and the environment. A missing file
// is not an error.
func Load() (Config, error) {
	cfg := Default()

	path, explicit := FilePath()
	if path != "" {
		err := cfg.mergeFile(path)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = defaultLogPath()
	}
	return cfg, cfg.Validate()
}

// FilePath returns the config file location and whether it was set
// explicitly through LESSONPLAY_CONFIG.
func FilePath() (string, bool) {
	if p := os.Getenv("LESSONPLAY_CONFIG"); p != "" {
		return p, true
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lessonplay", "config.yaml"), false
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	file := *c
	file.Version = 0
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if file.Version != Version {
		return fmt.Errorf("unsupported config version in %s: %d", path, file.Version)
	}
	*c = file
	return nil
}

func (c *Config) mergeEnv() error {
	strs := map[string]*string{
		"LESSONPLAY_LESSON_DIR": &c.Lessons.Dir,
		"LESSONPLAY_LESSON_URL": &c.Lessons.BaseURL,
		"LESSONPLAY_LOG":        &c.Log.Path,
		"LESSONPLAY_LOG_MODE":   &c.Log.Mode,
		"LESSONPLAY_DB":         &c.DB.Path,
		"LESSONPLAY_PALETTE":    &c.UI.Palette,
	}
	for name, field := range strs {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	durations := map[string]*time.Duration{
		"LESSONPLAY_TICK":       &c.Playback.Tick,
		"LESSONPLAY_DEBOUNCE":   &c.Playback.Debounce,
		"LESSONPLAY_FRAME":      &c.Playback.Frame,
		"LESSONPLAY_CHART_POLL": &c.Playback.ChartPoll,
	}
	for name, field := range durations {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = d
	}
	return nil
}

// Validate rejects non-positive timings and unknown palettes.
func (c Config) Validate() error {
	if _, ok := theme.Lookup(c.UI.Palette); !ok {
		return fmt.Errorf("ui.palette must be one of %s, got %q", strings.Join(theme.Names(), ", "), c.UI.Palette)
	}
	checks := []struct {
		name string
		d    time.Duration
	}{
		{"playback.tick", c.Playback.Tick},
		{"playback.debounce", c.Playback.Debounce},
		{"playback.frame", c.Playback.Frame},
		{"playback.chart_poll", c.Playback.ChartPoll},
		{"playback.stage_span_cap", c.Playback.StageSpanCap},
	}
	for _, ch := range checks {
		if ch.d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", ch.name, ch.d)
		}
	}
	return nil
}

// TimelineConfig returns the coordinator settings.
func (c Config) TimelineConfig() timeline.Config {
	return timeline.Config{
		Debounce: c.Playback.Debounce,
		Frame:    c.Playback.Frame,
		Stage:    timeline.StageConfig{SpanCap: c.Playback.StageSpanCap},
	}
}

// SequencerConfig returns the sequencer settings.
func (c Config) SequencerConfig() playback.Config {
	return playback.Config{Tick: c.Playback.Tick}
}

// BridgeConfig returns the render bridge settings.
func (c Config) BridgeConfig() render.BridgeConfig {
	cfg := render.DefaultBridgeConfig()
	cfg.PollInterval = c.Playback.ChartPoll
	return cfg
}

// Palette returns the configured palette, falling back to paper.
func (c Config) Palette() theme.Palette {
	if p, ok := theme.Lookup(c.UI.Palette); ok {
		return p
	}
	return theme.Paper
}

// defaultLogPath is $XDG_STATE_HOME/lessonplay/lessonplay.log.
func defaultLogPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "lessonplay", "lessonplay.log")
}
