package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/canvas/memory"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/interpreter"
)

// trace records narration, drawing, and waits in the order they happen.
type trace struct {
	mu    sync.Mutex
	lines []string
}

func (tr *trace) add(format string, args ...any) {
	tr.mu.Lock()
	tr.lines = append(tr.lines, fmt.Sprintf(format, args...))
	tr.mu.Unlock()
}

func (tr *trace) get() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.lines...)
}

type traceNarrator struct{ tr *trace }

func (n traceNarrator) Speak(_ context.Context, text string) <-chan struct{} {
	n.tr.add("say %s", text)
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (n traceNarrator) Cancel() {}

type traceInterp struct {
	tr   *trace
	fail map[int]error
}

func (i traceInterp) Apply(_ context.Context, index int, ins diagram.Instruction) (int, error) {
	i.tr.add("draw %d", index)
	if err := i.fail[index]; err != nil {
		return 0, err
	}
	if ins.Kind == "" {
		return 0, nil
	}
	return 1, nil
}

func newTraced(tr *trace, c canvas.Canvas, interp Interpreter, pacing Pacing, opts ...Option) *Sequencer {
	s := New(c, interp, traceNarrator{tr}, pacing, opts...)
	s.sleep = func(ctx context.Context, d time.Duration) error {
		tr.add("wait %s", d)
		return ctx.Err()
	}
	return s
}

func testPacing() Pacing {
	return Pacing{
		NarrationSettle:    1 * time.Millisecond,
		NarrationPause:     2 * time.Millisecond,
		StepAfterNarration: 3 * time.Millisecond,
		Step:               4 * time.Millisecond,
		FitDelay:           5 * time.Millisecond,
	}
}

func TestPlayOrderAndPacing(t *testing.T) {
	tr := &trace{}
	s := newTraced(tr, memory.New(), traceInterp{tr: tr}, testPacing())
	resp := diagram.Response{
		Narration: "intro",
		Instructions: []diagram.Instruction{
			{Kind: diagram.KindText, Narration: "first"},
			{Kind: diagram.KindArrow},
			{Kind: diagram.KindCircle, Narration: "third"},
		},
	}
	rep, err := s.Play(context.Background(), resp)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	want := []string{
		"say intro", "wait 1ms",
		"say first", "wait 2ms", "draw 0", "wait 3ms",
		"draw 1", "wait 4ms",
		"say third", "wait 2ms", "draw 2",
		"wait 5ms",
	}
	if diff := cmp.Diff(want, tr.get()); diff != "" {
		t.Fatalf("trace (-want +got):\n%s", diff)
	}
	if rep.Created != 3 || len(rep.Applied) != 3 || len(rep.Errors) != 0 {
		t.Fatalf("report=%+v", rep)
	}
}

func TestFailuresDoNotAbort(t *testing.T) {
	tr := &trace{}
	boom := errors.New("boom")
	var events []EventType
	s := newTraced(tr, memory.New(), traceInterp{tr: tr, fail: map[int]error{1: boom}}, NoPacing(),
		WithObserver(func(e Event) { events = append(events, e.Type) }))
	resp := diagram.Response{Instructions: []diagram.Instruction{
		{Kind: diagram.KindText}, {Kind: diagram.KindText}, {}, {Kind: diagram.KindText},
	}}
	rep, err := s.Play(context.Background(), resp)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(rep.Errors) != 1 || !errors.Is(rep.Errors[0], boom) {
		t.Fatalf("errors=%v", rep.Errors)
	}
	if diff := cmp.Diff([]int{2}, rep.Skipped); diff != "" {
		t.Fatalf("skipped: %s", diff)
	}
	if rep.Created != 2 {
		t.Fatalf("created=%d", rep.Created)
	}
	want := []EventType{EventStarted, EventApplied, EventFailed, EventSkipped, EventApplied, EventFitted, EventFinished}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestEmptyListClearsThenErrors(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	_, _ = c.CreateText(ctx, canvas.Text{Content: "old"})
	s := New(c, traceInterp{tr: &trace{}}, nil, NoPacing())
	_, err := s.Play(ctx, diagram.Response{Narration: "nothing"})
	if !errors.Is(err, ErrNoInstructions) || err.Error() != "no instructions returned" {
		t.Fatalf("err=%v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("canvas not cleared: %d shapes", c.Len())
	}
}

func TestPlayWithRealInterpreter(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	s := New(c, interpreter.New(c, nil), nil, NoPacing())
	resp := diagram.Response{Instructions: []diagram.Instruction{
		{Kind: diagram.KindText, Text: "Sun", Position: &geom.Point{X: 10, Y: 10}},
		{Kind: diagram.KindArrow, From: &geom.Point{X: 0, Y: 0}, To: &geom.Point{X: 50, Y: 50}},
		{Kind: diagram.KindTriangle, Points: []geom.Point{{X: 0, Y: 0}}},
	}}
	rep, err := s.Play(ctx, resp)
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if c.Len() != 2 || rep.Created != 2 || c.Fits() != 1 {
		t.Fatalf("len=%d created=%d fits=%d", c.Len(), rep.Created, c.Fits())
	}
	// A second playback replaces the first drawing.
	if _, err := s.Play(ctx, resp); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("len=%d after replay", c.Len())
	}
}

type blockingNarrator struct {
	started chan struct{}
	cancels chan struct{}
}

func (b *blockingNarrator) Speak(ctx context.Context, _ string) <-chan struct{} {
	close(b.started)
	return make(chan struct{})
}

func (b *blockingNarrator) Cancel() {
	select {
	case b.cancels <- struct{}{}:
	default:
	}
}

func TestStopCancelsPlaybackAndNarration(t *testing.T) {
	n := &blockingNarrator{started: make(chan struct{}), cancels: make(chan struct{}, 4)}
	c := memory.New()
	tr := &trace{}
	s := New(c, traceInterp{tr: tr}, n, NoPacing())

	errc := make(chan error, 1)
	go func() {
		_, err := s.Play(context.Background(), diagram.Response{Instructions: []diagram.Instruction{
			{Kind: diagram.KindText, Narration: "blocks forever"},
			{Kind: diagram.KindText},
		}})
		errc <- err
	}()
	<-n.started

	if _, err := s.Play(context.Background(), diagram.Response{}); !errors.Is(err, ErrBusy) {
		t.Fatalf("concurrent Play err=%v", err)
	}

	s.Stop()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrStopped) {
			t.Fatalf("err=%v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("playback did not stop")
	}
	if len(tr.get()) != 0 {
		t.Fatalf("steps ran after stop: %v", tr.get())
	}
	if len(n.cancels) == 0 {
		t.Fatal("narration not cancelled")
	}
	if s.Running() {
		t.Fatal("still running")
	}
}

func TestParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(memory.New(), traceInterp{tr: &trace{}}, nil, NoPacing())
	_, err := s.Play(ctx, diagram.Response{Instructions: []diagram.Instruction{{Kind: diagram.KindText}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}
