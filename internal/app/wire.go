package app

import (
	"context"
	"fmt"

	"github.com/yungbote/chalkboard/internal/config"
	"github.com/yungbote/chalkboard/internal/generation"
	"github.com/yungbote/chalkboard/internal/llm/gemini"
	"github.com/yungbote/chalkboard/internal/llm/openai"
	"github.com/yungbote/chalkboard/internal/narration"
	"github.com/yungbote/chalkboard/internal/narration/openaitts"
	"github.com/yungbote/chalkboard/internal/platform/logger"
	"github.com/yungbote/chalkboard/internal/playback"
	"github.com/yungbote/chalkboard/internal/ratelimit"
)

// NewProvider returns the configured model provider, or nil when generation
// should always use the built-in diagrams.
func NewProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) (generation.Provider, error) {
	p := cfg.Provider
	switch p.Type {
	case "openai":
		return openai.New(openai.Options{
			BaseURL:     p.OpenAI.BaseURL,
			APIKey:      p.OpenAI.APIKey,
			Model:       p.OpenAI.Model,
			Temperature: p.OpenAI.Temperature,
			Timeout:     p.Timeout.Duration,
		}, log)
	case "gemini":
		return gemini.New(ctx, gemini.Options{
			APIKey:  p.Gemini.APIKey,
			Model:   p.Gemini.Model,
			BaseURL: p.Gemini.BaseURL,
		}, log)
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown provider %q", p.Type)
}

func NewGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) (*generation.Service, error) {
	provider, err := NewProvider(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}
	return generation.NewService(provider, log, generation.Options{Timeout: cfg.Provider.Timeout.Duration}), nil
}

// NewLimiter builds the request limiter. The returned close func releases
// any backing connection.
func NewLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func() error, error) {
	rl := cfg.RateLimit
	noClose := func() error { return nil }
	switch rl.Backend {
	case "memory":
		return ratelimit.NewMemory(rl.PerMinute, rl.Burst, 10*rl.Window.Duration), noClose, nil
	case "redis":
		rdb, err := ratelimit.Dial(ctx, rl.RedisAddr)
		if err != nil {
			return nil, noClose, err
		}
		return ratelimit.NewRedis(rdb, rl.PerMinute, rl.Window.Duration, "chalkboard:ratelimit:"), rdb.Close, nil
	default:
		return ratelimit.Unlimited{}, noClose, nil
	}
}

func Pacing(cfg *config.Config) playback.Pacing {
	p := cfg.Playback
	return playback.Pacing{
		NarrationSettle:    p.NarrationSettle.Duration,
		NarrationPause:     p.NarrationPause.Duration,
		StepAfterNarration: p.StepAfterNarration.Duration,
		Step:               p.Step.Duration,
		FitDelay:           p.FitDelay.Duration,
	}
}

func Voice(cfg *config.Config) narration.Voice {
	n := cfg.Narration
	return narration.Voice{Rate: n.Rate, Pitch: n.Pitch, Volume: n.Volume}
}

// NewSynthesizer returns the speech backend for the configured mode.
func NewSynthesizer(cfg *config.Config, log *logger.Logger) (narration.Synthesizer, error) {
	n := cfg.Narration
	switch n.Mode {
	case "silent":
		return narration.Silent{}, nil
	case "openai":
		return openaitts.New(openaitts.Options{
			BaseURL: cfg.Provider.OpenAI.BaseURL,
			APIKey:  cfg.Provider.OpenAI.APIKey,
			Model:   n.Model,
			Voice:   n.Voice,
			OutDir:  n.OutDir,
			Timeout: cfg.Provider.Timeout.Duration,
		}, log)
	default:
		return narration.NewTimed(n.PerWord.Duration), nil
	}
}
