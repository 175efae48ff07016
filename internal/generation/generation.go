// Package generation produces diagram responses for a topic, from a
// generative provider when one is configured and from canned content
// otherwise.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/fallback"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

var ErrTopicRequired = errors.New("topic is required")

// Request is what a provider needs to produce a diagram document.
type Request struct {
	Topic      string
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// Provider returns the raw JSON document produced by a model.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]byte, error)
}

type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

type Result struct {
	Response diagram.Response
	Source   Source
	Issues   []diagram.Issue
	// Cause is why fallback content was served, if it was.
	Cause error
}

type Options struct {
	// Timeout bounds a single provider call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

type Service struct {
	provider Provider
	timeout  time.Duration
	log      *logger.Logger
	tracer   trace.Tracer
}

// NewService wraps provider, which may be nil.
func NewService(provider Provider, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		provider: provider,
		timeout:  opts.Timeout,
		log:      log.With("component", "generation"),
		tracer:   otel.Tracer("github.com/yungbote/chalkboard/internal/generation"),
	}
}

func (s *Service) ProviderName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

// Generate never fails for a non-empty topic: provider errors and unusable
// provider output are answered with fallback content.
func (s *Service) Generate(ctx context.Context, topic string) (Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{}, ErrTopicRequired
	}

	ctx, span := s.tracer.Start(ctx, "generation.generate", trace.WithAttributes(
		attribute.String("provider", s.ProviderName()),
		attribute.Int("topic.length", len(topic)),
	))
	defer span.End()

	res, err := s.fromProvider(ctx, topic)
	if err != nil {
		if s.provider != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "provider failed")
			s.log.Warn("provider failed, serving fallback", "provider", s.provider.Name(), "error", err)
		}
		res = Result{Response: fallback.Generate(topic), Source: SourceFallback, Cause: err}
	}
	span.SetAttributes(
		attribute.String("source", string(res.Source)),
		attribute.Int("instructions", len(res.Response.Instructions)),
	)
	return res, nil
}

var errNoProvider = errors.New("no provider configured")

func (s *Service) fromProvider(ctx context.Context, topic string) (Result, error) {
	if s.provider == nil {
		return Result{}, errNoProvider
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.provider.Generate(ctx, Request{
		Topic:      topic,
		System:     systemPrompt(),
		User:       userPrompt(topic),
		SchemaName: SchemaName,
		Schema:     Schema(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.provider.Name(), err)
	}
	resp, issues, err := diagram.ParseResponse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%s output: %w", s.provider.Name(), err)
	}
	if len(resp.Instructions) == 0 {
		return Result{}, fmt.Errorf("%s output: %w", s.provider.Name(), diagram.ErrNoInstructions)
	}
	if len(issues) > 0 {
		s.log.Info("dropped malformed instructions", "count", len(issues), "first", issues[0].String())
	}
	s.log.Debug("provider responded", "provider", s.provider.Name(), "instructions", len(resp.Instructions), "duration_ms", time.Since(start).Milliseconds())
	return Result{Response: resp, Source: SourceAI, Issues: issues}, nil
}
