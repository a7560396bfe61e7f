package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/lessonplay/internal/logger"
	"github.com/abhisek/lessonplay/internal/store"
)

// EnvPrefix prefixes lessonplay's own LLM variables.
const EnvPrefix = "LESSONPLAY_"

// Config selects and tunes one provider.
type Config struct {
	// Provider is anthropic, openai, gemini, openrouter or mock.
	Provider string
	// Model is a vendor model ID or one of the vendor's short aliases.
	Model   string
	APIKey  string
	BaseURL string

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
	Retry   RetryConfig
}

type vendor struct {
	name    string
	model   string
	baseURL string
	aliases map[string]string
	open    func(ctx context.Context, cfg Config) (transport, error)
}

// keyVar is the variable the vendor's own tools read, e.g. OPENAI_API_KEY.
func (v vendor) keyVar() string { return strings.ToUpper(v.name) + "_API_KEY" }

// vendors lists the supported vendors in key discovery order.
var vendors = []vendor{
	{
		name:  "gemini",
		model: "gemini-flash",
		aliases: map[string]string{
			"gemini-flash": "gemini-2.5-flash",
			"gemini-pro":   "gemini-2.5-pro",
		},
		open: newGemini,
	},
	{
		name:  "openai",
		model: "gpt-4o-mini",
		open:  newOpenAI,
	},
	{
		name:  "anthropic",
		model: "claude-haiku",
		aliases: map[string]string{
			"claude-haiku":  "claude-haiku-4-5-20251001",
			"claude-sonnet": "claude-sonnet-4-5-20250929",
		},
		open: newAnthropic,
	},
	{
		name:    "openrouter",
		model:   "google/gemini-2.5-flash",
		baseURL: "https://openrouter.ai/api/v1",
		open:    newOpenAI,
	},
}

func findVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// DefaultConfig is the retry and timeout policy used for every vendor.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
	}
}

// ConfigFromEnv reads the provider settings from the environment.
//
// LESSONPLAY_LLM_PROVIDER picks the vendor; without it the first vendor
// with an API key wins (gemini, openai, anthropic, openrouter). The key
// comes from LESSONPLAY_<VENDOR>_API_KEY, then <VENDOR>_API_KEY. The model
// comes from LESSONPLAY_LLM_MODEL, then LESSONPLAY_<VENDOR>_MODEL, then the
// vendor default. LESSONPLAY_<VENDOR>_BASE_URL and LESSONPLAY_LLM_TIMEOUT
// are optional. Provider is empty when nothing is configured.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Provider = os.Getenv(EnvPrefix + "LLM_PROVIDER")
	if cfg.Provider == "" {
		for _, v := range vendors {
			if vendorKey(v) != "" {
				cfg.Provider = v.name
				break
			}
		}
	}
	if d, err := time.ParseDuration(os.Getenv(EnvPrefix + "LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}

	v, ok := findVendor(cfg.Provider)
	if !ok {
		return cfg
	}
	upper := EnvPrefix + strings.ToUpper(v.name)
	cfg.APIKey = vendorKey(v)
	cfg.Model = firstSet(os.Getenv(EnvPrefix+"LLM_MODEL"), os.Getenv(upper+"_MODEL"), v.model)
	cfg.BaseURL = firstSet(os.Getenv(upper+"_BASE_URL"), v.baseURL)
	return cfg
}

func vendorKey(v vendor) string {
	return firstSet(os.Getenv(EnvPrefix+v.keyVar()), os.Getenv(v.keyVar()))
}

func firstSet(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}

// Validate reports an unknown provider or a missing API key.
func (c Config) Validate() error {
	switch c.Provider {
	case "":
		return ErrNotConfigured
	case "mock":
		return nil
	}
	v, ok := findVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("the %s provider needs %s%s or %s", v.name, EnvPrefix, v.keyVar(), v.keyVar())
	}
	return nil
}

// NewProvider builds the configured provider wrapped as
// timeout → retry → logging → vendor. The mock provider is returned bare.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}

	v, _ := findVendor(cfg.Provider)
	model := firstSet(cfg.Model, v.model)
	if id, ok := v.aliases[model]; ok {
		model = id
	}
	t, err := v.open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s provider: %w", v.name, err)
	}

	var p Provider = &client{model: model, t: t}
	p = WithLogging(p, v.name, events, log)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

// NewProviderFromEnv is NewProvider over ConfigFromEnv. It returns
// ErrNotConfigured when the environment names no provider and has no key.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo, log *logger.Logger) (Provider, error) {
	return NewProvider(ctx, ConfigFromEnv(), events, log)
}
