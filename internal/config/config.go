package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

type OpenAIConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
}

type GeminiConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type ProviderConfig struct {
	// Type is "openai", "gemini", "none", or "auto" (pick by available keys).
	Type    string       `yaml:"type"`
	Timeout Duration     `yaml:"timeout"`
	OpenAI  OpenAIConfig `yaml:"openai"`
	Gemini  GeminiConfig `yaml:"gemini"`
}

type RateLimitConfig struct {
	// Backend is "memory", "redis", or "none".
	Backend   string   `yaml:"backend"`
	PerMinute int      `yaml:"per_minute"`
	Burst     int      `yaml:"burst"`
	Window    Duration `yaml:"window"`
	RedisAddr string   `yaml:"redis_addr"`
}

type PlaybackConfig struct {
	NarrationSettle    Duration `yaml:"narration_settle"`
	NarrationPause     Duration `yaml:"narration_pause"`
	StepAfterNarration Duration `yaml:"step_after_narration"`
	Step               Duration `yaml:"step"`
	FitDelay           Duration `yaml:"fit_delay"`
}

type NarrationConfig struct {
	// Mode is "silent", "timed", or "openai".
	Mode    string   `yaml:"mode"`
	PerWord Duration `yaml:"per_word"`
	Rate    float64  `yaml:"rate"`
	Pitch   float64  `yaml:"pitch"`
	Volume  float64  `yaml:"volume"`
	OutDir  string   `yaml:"out_dir"`
	Model   string   `yaml:"model"`
	Voice   string   `yaml:"voice"`
}

type CanvasConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Padding    float64 `yaml:"padding"`
	Background string  `yaml:"background"`
	FontPath   string  `yaml:"font_path"`
	MonoPath   string  `yaml:"mono_font_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Provider  ProviderConfig  `yaml:"provider"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Narration NarrationConfig `yaml:"narration"`
	Canvas    CanvasConfig    `yaml:"canvas"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}
