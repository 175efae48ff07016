package playback

import (
	"context"
	"time"
)

// Pacing is the set of waits playback inserts between actions.
type Pacing struct {
	// NarrationSettle follows the overall narration.
	NarrationSettle time.Duration
	// NarrationPause follows a step's narration, before its shapes are drawn.
	NarrationPause time.Duration
	// StepAfterNarration and Step separate a step from the next one, depending
	// on whether the step was narrated.
	StepAfterNarration time.Duration
	Step               time.Duration
	// FitDelay precedes the final zoom-to-fit.
	FitDelay time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{
		NarrationSettle:    500 * time.Millisecond,
		NarrationPause:     250 * time.Millisecond,
		StepAfterNarration: 800 * time.Millisecond,
		Step:               400 * time.Millisecond,
		FitDelay:           300 * time.Millisecond,
	}
}

func NoPacing() Pacing { return Pacing{} }

func (p Pacing) between(narrated bool) time.Duration {
	if narrated {
		return p.StepAfterNarration
	}
	return p.Step
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
