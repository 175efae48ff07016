package narration

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"
)

// Timed pretends to speak, holding each utterance for an estimate of how long
// it would take to say aloud. Headless playback uses it to keep narration
// pacing realistic.
type Timed struct {
	PerWord time.Duration
	Min     time.Duration

	mu      sync.Mutex
	cancels map[int]context.CancelFunc
	next    int
}

func NewTimed(perWord time.Duration) *Timed {
	return &Timed{PerWord: perWord, Min: 200 * time.Millisecond}
}

func (t *Timed) Available() bool { return true }

// Estimate returns how long text takes at the voice's rate.
func (t *Timed) Estimate(text string, v Voice) time.Duration {
	words := len(strings.Fields(text))
	rate := v.Rate
	if rate <= 0 || math.IsNaN(rate) {
		rate = 1
	}
	d := time.Duration(float64(time.Duration(words)*t.PerWord) / rate)
	if d < t.Min {
		d = t.Min
	}
	return d
}

func (t *Timed) Speak(ctx context.Context, text string, v Voice, cb Callbacks) error {
	uctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	if t.cancels == nil {
		t.cancels = map[int]context.CancelFunc{}
	}
	id := t.next
	t.next++
	t.cancels[id] = cancel
	t.mu.Unlock()

	d := t.Estimate(text, v)
	go func() {
		defer func() {
			t.mu.Lock()
			delete(t.cancels, id)
			t.mu.Unlock()
			cancel()
		}()
		cb.start()
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			cb.end()
		case <-uctx.Done():
			cb.fail(ErrInterrupted)
		}
	}()
	return nil
}

func (t *Timed) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, cancel := range t.cancels {
		cancel()
		delete(t.cancels, id)
	}
}
