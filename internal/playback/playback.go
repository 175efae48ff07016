// Package playback draws a diagram response step by step, speaking each
// step's narration before its shapes appear.
package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

var (
	ErrNoInstructions = errors.New("no instructions returned")
	ErrBusy           = errors.New("playback already in progress")
	ErrStopped        = errors.New("playback stopped")
)

// Interpreter draws one instruction.
type Interpreter interface {
	Apply(ctx context.Context, index int, ins diagram.Instruction) (int, error)
}

// Narrator speaks text; the returned channel closes when speech is over.
type Narrator interface {
	Speak(ctx context.Context, text string) <-chan struct{}
	Cancel()
}

type EventType string

const (
	EventStarted   EventType = "playback.started"
	EventNarration EventType = "narration"
	EventApplied   EventType = "step.applied"
	EventSkipped   EventType = "step.skipped"
	EventFailed    EventType = "step.failed"
	EventFitted    EventType = "playback.fitted"
	EventFinished  EventType = "playback.finished"
)

// Event describes playback progress. Index is -1 for events not tied to a
// step, including the overall narration.
type Event struct {
	Type       EventType
	PlaybackID string
	Index      int
	Kind       diagram.Kind
	Text       string
	Created    int
	Err        error
}

type Report struct {
	PlaybackID string
	Steps      int
	Created    int
	Applied    []int
	Skipped    []int
	Errors     []error
}

type Option func(*Sequencer)

func WithObserver(fn func(Event)) Option {
	return func(s *Sequencer) { s.observe = fn }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Sequencer) {
		if log != nil {
			s.log = log
		}
	}
}

// Sequencer runs one playback at a time against a canvas.
type Sequencer struct {
	canvas   canvas.Canvas
	interp   Interpreter
	narrator Narrator
	pacing   Pacing
	observe  func(Event)
	log      *logger.Logger
	sleep    func(context.Context, time.Duration) error

	mu      sync.Mutex
	running bool
	stop    context.CancelFunc
}

func New(c canvas.Canvas, interp Interpreter, narrator Narrator, pacing Pacing, opts ...Option) *Sequencer {
	s := &Sequencer{
		canvas:   c,
		interp:   interp,
		narrator: narrator,
		pacing:   pacing,
		log:      logger.Nop(),
		sleep:    wait,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("component", "playback")
	return s
}

// Play clears the canvas and plays resp. Step failures are collected in the
// report; the returned error is reserved for failures of the playback itself.
func (s *Sequencer) Play(ctx context.Context, resp diagram.Response) (Report, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return Report{}, ErrBusy
	}
	pctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.stop = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.stop = nil
		s.mu.Unlock()
		cancel()
	}()

	rep := Report{PlaybackID: uuid.NewString(), Steps: len(resp.Instructions)}
	err := s.play(pctx, resp, &rep)
	if err != nil && pctx.Err() != nil && ctx.Err() == nil {
		err = ErrStopped
	}
	return rep, err
}

func (s *Sequencer) play(ctx context.Context, resp diagram.Response, rep *Report) error {
	log := s.log.With("playback_id", rep.PlaybackID)
	if err := canvas.Clear(ctx, s.canvas); err != nil {
		return fmt.Errorf("clear canvas: %w", err)
	}
	if len(resp.Instructions) == 0 {
		return ErrNoInstructions
	}
	s.emit(Event{Type: EventStarted, PlaybackID: rep.PlaybackID, Index: -1, Created: len(resp.Instructions)})
	log.Info("playback started", "steps", len(resp.Instructions), "narrated", resp.Narration != "")

	if resp.Narration != "" {
		s.emit(Event{Type: EventNarration, PlaybackID: rep.PlaybackID, Index: -1, Text: resp.Narration})
		if err := s.speak(ctx, resp.Narration); err != nil {
			return err
		}
		if err := s.sleep(ctx, s.pacing.NarrationSettle); err != nil {
			return err
		}
	}

	last := len(resp.Instructions) - 1
	for i, ins := range resp.Instructions {
		if err := ctx.Err(); err != nil {
			return err
		}
		narrated := ins.Narration != ""
		if narrated {
			s.emit(Event{Type: EventNarration, PlaybackID: rep.PlaybackID, Index: i, Kind: ins.Kind, Text: ins.Narration})
			if err := s.speak(ctx, ins.Narration); err != nil {
				return err
			}
			if err := s.sleep(ctx, s.pacing.NarrationPause); err != nil {
				return err
			}
		}

		created, err := s.interp.Apply(ctx, i, ins)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rep.Errors = append(rep.Errors, err)
			log.Warn("step failed", "index", i, "kind", ins.Kind, "error", err)
			s.emit(Event{Type: EventFailed, PlaybackID: rep.PlaybackID, Index: i, Kind: ins.Kind, Err: err})
		case created == 0:
			rep.Skipped = append(rep.Skipped, i)
			s.emit(Event{Type: EventSkipped, PlaybackID: rep.PlaybackID, Index: i, Kind: ins.Kind})
		default:
			rep.Created += created
			rep.Applied = append(rep.Applied, i)
			s.emit(Event{Type: EventApplied, PlaybackID: rep.PlaybackID, Index: i, Kind: ins.Kind, Created: created})
		}

		if i < last {
			if err := s.sleep(ctx, s.pacing.between(narrated)); err != nil {
				return err
			}
		}
	}

	if err := s.sleep(ctx, s.pacing.FitDelay); err != nil {
		return err
	}
	if err := s.canvas.ZoomToFit(ctx); err != nil {
		log.Warn("zoom to fit failed", "error", err)
	} else {
		s.emit(Event{Type: EventFitted, PlaybackID: rep.PlaybackID, Index: -1})
	}
	s.emit(Event{Type: EventFinished, PlaybackID: rep.PlaybackID, Index: -1, Created: rep.Created})
	log.Info("playback finished", "created", rep.Created, "skipped", len(rep.Skipped), "failed", len(rep.Errors))
	return nil
}

// Stop cancels the active playback and any narration in progress.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	if s.narrator != nil {
		s.narrator.Cancel()
	}
}

func (s *Sequencer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sequencer) speak(ctx context.Context, text string) error {
	if s.narrator == nil {
		return nil
	}
	select {
	case <-s.narrator.Speak(ctx, text):
		return ctx.Err()
	case <-ctx.Done():
		s.narrator.Cancel()
		return ctx.Err()
	}
}

func (s *Sequencer) emit(ev Event) {
	if s.observe != nil {
		s.observe(ev)
	}
}
