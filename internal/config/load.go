package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts "5s"-style strings or integer nanoseconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if dd, err := time.ParseDuration(s); err == nil {
		d.Duration = dd
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or an int nanoseconds, got %q", s)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func ms(n int) Duration { return Duration{Duration: time.Duration(n) * time.Millisecond} }

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   64 << 10,
			CORSOrigins:       []string{"*"},
		},
		Provider: ProviderConfig{
			Type:    "auto",
			Timeout: Duration{Duration: 60 * time.Second},
			OpenAI:  OpenAIConfig{BaseURL: "https://api.openai.com", Model: "gpt-4o-mini"},
			Gemini:  GeminiConfig{Model: "gemini-2.5-flash"},
		},
		RateLimit: RateLimitConfig{
			Backend:   "memory",
			PerMinute: 10,
			Burst:     5,
			Window:    Duration{Duration: time.Minute},
		},
		Playback: PlaybackConfig{
			NarrationSettle:    ms(500),
			NarrationPause:     ms(250),
			StepAfterNarration: ms(800),
			Step:               ms(400),
			FitDelay:           ms(300),
		},
		Narration: NarrationConfig{
			Mode:    "timed",
			PerWord: ms(350),
			Rate:    1,
			Pitch:   1,
			Volume:  1,
			OutDir:  "narration",
			Model:   "gpt-4o-mini-tts",
			Voice:   "alloy",
		},
		Canvas: CanvasConfig{
			Width:      1280,
			Height:     800,
			Padding:    48,
			Background: "#FFFFFF",
		},
		Telemetry: TelemetryConfig{ServiceName: "chalkboard"},
	}
}

// Load reads the YAML file named by CB_CONFIG_PATH (or ./config/config.yaml
// when present) over the defaults, then applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(os.Getenv("CB_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Env, "LOG_MODE")
	set(&cfg.HTTP.Addr, "CB_HTTP_ADDR")
	set(&cfg.Provider.Type, "CB_PROVIDER")
	set(&cfg.Provider.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&cfg.Provider.OpenAI.BaseURL, "OPENAI_BASE_URL")
	set(&cfg.Provider.OpenAI.Model, "OPENAI_MODEL")
	set(&cfg.Provider.Gemini.APIKey, "GEMINI_API_KEY")
	set(&cfg.Provider.Gemini.Model, "GEMINI_MODEL")
	set(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	set(&cfg.Narration.Mode, "CB_NARRATION")
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.RateLimit.RedisAddr = v
		if strings.TrimSpace(os.Getenv("CB_RATE_LIMIT_BACKEND")) == "" {
			cfg.RateLimit.Backend = "redis"
		}
	}
	set(&cfg.RateLimit.Backend, "CB_RATE_LIMIT_BACKEND")
	if v := strings.TrimSpace(os.Getenv("OTEL_ENABLED")); v != "" {
		cfg.Telemetry.Enabled = parseBool(v)
	}
}

func (cfg *Config) normalize() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 64 << 10
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}

	p := &cfg.Provider
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	switch p.Type {
	case "", "auto":
		switch {
		case p.OpenAI.APIKey != "":
			p.Type = "openai"
		case p.Gemini.APIKey != "":
			p.Type = "gemini"
		default:
			p.Type = "none"
		}
	case "openai":
		if p.OpenAI.APIKey == "" {
			return errors.New("provider openai requires OPENAI_API_KEY")
		}
	case "gemini":
		if p.Gemini.APIKey == "" {
			return errors.New("provider gemini requires GEMINI_API_KEY")
		}
	case "none":
	default:
		return fmt.Errorf("invalid provider.type=%q", p.Type)
	}
	if p.Timeout.Duration < 0 {
		return errors.New("provider.timeout must not be negative")
	}

	rl := &cfg.RateLimit
	rl.Backend = strings.ToLower(strings.TrimSpace(rl.Backend))
	switch rl.Backend {
	case "", "memory":
		rl.Backend = "memory"
	case "redis":
		if strings.TrimSpace(rl.RedisAddr) == "" {
			return errors.New("rate_limit.backend redis requires REDIS_ADDR")
		}
	case "none":
	default:
		return fmt.Errorf("invalid rate_limit.backend=%q", rl.Backend)
	}
	if rl.Backend != "none" && rl.PerMinute <= 0 {
		return errors.New("rate_limit.per_minute must be positive")
	}

	for name, d := range map[string]Duration{
		"narration_settle":     cfg.Playback.NarrationSettle,
		"narration_pause":      cfg.Playback.NarrationPause,
		"step_after_narration": cfg.Playback.StepAfterNarration,
		"step":                 cfg.Playback.Step,
		"fit_delay":            cfg.Playback.FitDelay,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("playback.%s must not be negative", name)
		}
	}

	n := &cfg.Narration
	n.Mode = strings.ToLower(strings.TrimSpace(n.Mode))
	switch n.Mode {
	case "", "timed":
		n.Mode = "timed"
	case "silent", "openai":
	default:
		return fmt.Errorf("invalid narration.mode=%q", n.Mode)
	}
	if n.Rate <= 0 {
		n.Rate = 1
	}

	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return errors.New("canvas width and height must be positive")
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
