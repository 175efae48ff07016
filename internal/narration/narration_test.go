package narration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type manualSynth struct {
	mu       sync.Mutex
	spoken   []string
	cbs      []Callbacks
	cancels  int
	startErr error
}

func (m *manualSynth) Available() bool { return true }

func (m *manualSynth) Speak(_ context.Context, text string, _ Voice, cb Callbacks) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.spoken = append(m.spoken, text)
	m.cbs = append(m.cbs, cb)
	return nil
}

func (m *manualSynth) Cancel() {
	m.mu.Lock()
	m.cancels++
	m.mu.Unlock()
}

func (m *manualSynth) last() Callbacks {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cbs[len(m.cbs)-1]
}

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(time.Second):
		return false
	}
}

func open(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return false
	case <-time.After(20 * time.Millisecond):
		return true
	}
}

func TestUnavailableResolvesImmediately(t *testing.T) {
	s := NewSpeaker(Silent{}, DefaultVoice(), nil)
	select {
	case <-s.Speak(context.Background(), "hello"):
	default:
		t.Fatal("expected closed channel")
	}
	if err := s.Say(context.Background(), "hello"); err != nil {
		t.Fatalf("Say: %v", err)
	}
}

func TestSpeakResolvesOnEnd(t *testing.T) {
	m := &manualSynth{}
	s := NewSpeaker(m, DefaultVoice(), nil)
	done := s.Speak(context.Background(), "one two")
	if !open(done) {
		t.Fatal("resolved before end")
	}
	if st := s.State(); !st.Speaking || st.Text != "one two" {
		t.Fatalf("state=%+v", st)
	}
	m.last().OnEnd()
	if !closed(done) {
		t.Fatal("not resolved after end")
	}
	if st := s.State(); st.Speaking {
		t.Fatalf("state=%+v", st)
	}
}

func TestSpeakResolvesOnError(t *testing.T) {
	m := &manualSynth{}
	s := NewSpeaker(m, DefaultVoice(), nil)
	done := s.Speak(context.Background(), "x")
	m.last().OnError(errors.New("audio device lost"))
	if !closed(done) {
		t.Fatal("not resolved after error")
	}
}

func TestStartFailureResolves(t *testing.T) {
	s := NewSpeaker(&manualSynth{startErr: errors.New("no voices")}, DefaultVoice(), nil)
	if !closed(s.Speak(context.Background(), "x")) {
		t.Fatal("not resolved")
	}
}

func TestNewUtteranceCancelsPrevious(t *testing.T) {
	m := &manualSynth{}
	s := NewSpeaker(m, DefaultVoice(), nil)
	first := s.Speak(context.Background(), "first")
	second := s.Speak(context.Background(), "second")
	if !closed(first) {
		t.Fatal("first utterance not cancelled")
	}
	if !open(second) {
		t.Fatal("second resolved early")
	}
	if m.cancels != 1 {
		t.Fatalf("cancels=%d", m.cancels)
	}
	// A late end from the first utterance must not resolve the second.
	m.cbs[0].OnEnd()
	if !open(second) {
		t.Fatal("stale callback resolved current utterance")
	}
	s.Cancel()
	if !closed(second) {
		t.Fatal("Cancel did not resolve")
	}
}

func TestContextCancelResolves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSpeaker(&manualSynth{}, DefaultVoice(), nil)
	done := s.Speak(ctx, "x")
	cancel()
	if !closed(done) {
		t.Fatal("not resolved after context cancel")
	}
}

func TestTimedSynthesizer(t *testing.T) {
	tm := NewTimed(time.Millisecond)
	tm.Min = 0
	if d := tm.Estimate("one two three four", Voice{Rate: 2}); d != 2*time.Millisecond {
		t.Fatalf("estimate=%s", d)
	}
	s := NewSpeaker(tm, DefaultVoice(), nil)
	if err := s.Say(context.Background(), "a few words"); err != nil {
		t.Fatalf("Say: %v", err)
	}

	slow := NewTimed(time.Hour)
	s = NewSpeaker(slow, DefaultVoice(), nil)
	done := s.Speak(context.Background(), "never finishes")
	s.Cancel()
	if !closed(done) {
		t.Fatal("timed utterance not interrupted")
	}
}
