// Package narration speaks per-step commentary during playback.
package narration

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/yungbote/chalkboard/internal/platform/logger"
)

var ErrInterrupted = errors.New("narration: interrupted")

type Voice struct {
	Rate   float64 `yaml:"rate"`
	Pitch  float64 `yaml:"pitch"`
	Volume float64 `yaml:"volume"`
}

func DefaultVoice() Voice { return Voice{Rate: 1, Pitch: 1, Volume: 1} }

// Callbacks report an utterance's lifecycle. Any of them may be nil.
type Callbacks struct {
	OnStart func()
	OnEnd   func()
	OnError func(error)
}

func (cb Callbacks) start() {
	if cb.OnStart != nil {
		cb.OnStart()
	}
}

func (cb Callbacks) end() {
	if cb.OnEnd != nil {
		cb.OnEnd()
	}
}

func (cb Callbacks) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// Synthesizer is the speech capability. Speak starts an utterance and
// returns; completion is reported through the callbacks.
type Synthesizer interface {
	Available() bool
	Speak(ctx context.Context, text string, v Voice, cb Callbacks) error
	Cancel()
}

type State struct {
	Speaking bool
	Text     string
}

// Speaker runs at most one utterance at a time.
type Speaker struct {
	synth Synthesizer
	voice Voice
	log   *logger.Logger

	mu    sync.Mutex
	cur   *utterance
	state State
}

type utterance struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

func NewSpeaker(synth Synthesizer, v Voice, log *logger.Logger) *Speaker {
	if synth == nil {
		synth = Silent{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Speaker{synth: synth, voice: v, log: log.With("component", "narration")}
}

// Speak cancels any utterance in flight and starts text. The returned channel
// closes when the utterance ends, fails, or is cancelled, and immediately when
// speech is unavailable.
func (s *Speaker) Speak(ctx context.Context, text string) <-chan struct{} {
	text = strings.TrimSpace(text)
	done := make(chan struct{})
	if text == "" || !s.synth.Available() {
		close(done)
		return done
	}
	s.Cancel()

	uctx, cancel := context.WithCancel(ctx)
	u := &utterance{done: done, cancel: cancel}
	s.mu.Lock()
	s.cur = u
	s.state = State{Speaking: true, Text: text}
	s.mu.Unlock()

	cb := Callbacks{
		OnEnd: func() { s.finish(u) },
		OnError: func(err error) {
			if !errors.Is(err, ErrInterrupted) && !errors.Is(err, context.Canceled) {
				s.log.Warn("speech failed", "error", err)
			}
			s.finish(u)
		},
	}
	if err := s.synth.Speak(uctx, text, s.voice, cb); err != nil {
		s.log.Warn("speech could not start", "error", err)
		s.finish(u)
		return done
	}
	go func() {
		select {
		case <-uctx.Done():
			s.finish(u)
		case <-done:
			cancel()
		}
	}()
	return done
}

// Say speaks text and waits for it to finish.
func (s *Speaker) Say(ctx context.Context, text string) error {
	select {
	case <-s.Speak(ctx, text):
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the current utterance, if any.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	u := s.cur
	s.mu.Unlock()
	if u == nil {
		return
	}
	s.synth.Cancel()
	s.finish(u)
}

func (s *Speaker) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Speaker) finish(u *utterance) {
	u.once.Do(func() {
		s.mu.Lock()
		if s.cur == u {
			s.cur = nil
			s.state = State{}
		}
		s.mu.Unlock()
		u.cancel()
		close(u.done)
	})
}

// Silent is the synthesizer for platforms without speech.
type Silent struct{}

func (Silent) Available() bool { return false }
func (Silent) Speak(context.Context, string, Voice, Callbacks) error {
	return nil
}
func (Silent) Cancel() {}
