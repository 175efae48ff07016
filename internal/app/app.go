package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/chalkboard/internal/config"
	"github.com/yungbote/chalkboard/internal/generation"
	"github.com/yungbote/chalkboard/internal/httpapi"
	"github.com/yungbote/chalkboard/internal/observability"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

var Version = "dev"

type App struct {
	Log       *logger.Logger
	Config    *config.Config
	Generator *generation.Service
	Router    *gin.Engine

	server  *http.Server
	closers []func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Config: cfg}

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Env,
		Version:     Version,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRatio: 1,
	})
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	a.Generator, err = NewGenerator(ctx, cfg, log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	limiter, closeLimiter, err := NewLimiter(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init rate limiter: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return closeLimiter() })

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	a.Router = httpapi.NewRouter(httpapi.Deps{
		Log:             log,
		Generator:       a.Generator,
		Limiter:         limiter,
		Pacing:          Pacing(cfg),
		PerWord:         cfg.Narration.PerWord.Duration,
		Voice:           Voice(cfg),
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		ServiceName:     cfg.Telemetry.ServiceName,
	})
	a.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
	}

	log.Info("app initialized",
		"addr", cfg.HTTP.Addr,
		"provider", a.Generator.ProviderName(),
		"rate_limit", cfg.RateLimit.Backend,
		"tracing", cfg.Telemetry.Enabled,
	)
	return a, nil
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	err := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
	defer cancel()
	a.Close(closeCtx)
	return err
}

func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
	a.Log.Sync()
}
