// Package orchestrator turns a submitted topic into a played diagram.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/platform/logger"
	"github.com/yungbote/chalkboard/internal/playback"
)

// UserError carries a short message fit for display.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error { return e.Err }

var (
	ErrEmptyTopic = &UserError{Message: "Please enter a topic"}
	ErrInFlight   = errors.New("a submission is already in progress")
)

const (
	msgGenerateFailed = "Failed to generate drawing instructions. Please try again."
	msgNoInstructions = "No drawing instructions were returned."
)

// Source produces diagram responses, usually over HTTP.
type Source interface {
	Generate(ctx context.Context, topic string) (diagram.Response, error)
}

type Player interface {
	Play(ctx context.Context, resp diagram.Response) (playback.Report, error)
	Stop()
}

type Result struct {
	Topic    string
	Response diagram.Response
	Report   playback.Report
}

type Orchestrator struct {
	source Source
	player Player
	canvas canvas.Canvas
	log    *logger.Logger

	mu   sync.Mutex
	busy bool
}

func New(source Source, player Player, c canvas.Canvas, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{source: source, player: player, canvas: c, log: log.With("component", "orchestrator")}
}

// Submit validates topic, fetches a diagram, and plays it. Only one
// submission runs at a time.
func (o *Orchestrator) Submit(ctx context.Context, topic string) (Result, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{}, ErrEmptyTopic
	}
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return Result{}, ErrInFlight
	}
	o.busy = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	res := Result{Topic: topic}
	if err := o.Clear(ctx); err != nil {
		return res, err
	}

	resp, err := o.source.Generate(ctx, topic)
	if err != nil {
		o.log.Error("generate failed", "topic", topic, "error", err)
		return res, &UserError{Message: msgGenerateFailed, Err: err}
	}
	res.Response = resp

	rep, err := o.player.Play(ctx, resp)
	res.Report = rep
	if errors.Is(err, playback.ErrNoInstructions) {
		return res, &UserError{Message: msgNoInstructions, Err: err}
	}
	return res, err
}

// Busy reports whether a submission is running.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Clear stops playback and narration and removes every shape.
func (o *Orchestrator) Clear(ctx context.Context) error {
	o.player.Stop()
	return canvas.Clear(ctx, o.canvas)
}
