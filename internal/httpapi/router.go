// Package httpapi exposes diagram generation and server-side playback over
// HTTP.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/chalkboard/internal/generation"
	"github.com/yungbote/chalkboard/internal/narration"
	"github.com/yungbote/chalkboard/internal/platform/logger"
	"github.com/yungbote/chalkboard/internal/playback"
	"github.com/yungbote/chalkboard/internal/ratelimit"
)

const SourceHeader = "X-Diagram-Source"

type Generator interface {
	Generate(ctx context.Context, topic string) (generation.Result, error)
}

type Deps struct {
	Log       *logger.Logger
	Generator Generator
	Limiter   ratelimit.Limiter

	// Stream playback settings.
	Pacing  playback.Pacing
	PerWord time.Duration
	Voice   narration.Voice

	MaxRequestBytes int64
	CORSOrigins     []string
	ServiceName     string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Limiter == nil {
		d.Limiter = ratelimit.Unlimited{}
	}
	if d.MaxRequestBytes <= 0 {
		d.MaxRequestBytes = 64 << 10
	}
	if d.ServiceName == "" {
		d.ServiceName = "chalkboard"
	}
	log := d.Log.With("component", "httpapi")
	h := &handlers{deps: d, log: log}

	r := gin.New()
	r.Use(Recover(log))
	r.Use(otelgin.Middleware(d.ServiceName))
	r.Use(TraceContext())
	r.Use(RequestLogger(log))
	r.Use(CORS(d.CORSOrigins))

	r.GET("/healthcheck", h.health)

	api := r.Group("/api")
	api.GET("/topics", h.topics)

	limited := api.Group("", RateLimit(d.Limiter, log))
	limited.POST("/generate", h.generate)
	limited.GET("/playback/stream", h.playbackStream)
	return r
}
