package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/canvas/memory"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/interpreter"
	"github.com/yungbote/chalkboard/internal/playback"
)

type fakeSource struct {
	resp    diagram.Response
	err     error
	calls   int
	release chan struct{}
}

func (f *fakeSource) Generate(ctx context.Context, topic string) (diagram.Response, error) {
	f.calls++
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

type fakePlayer struct {
	plays int
	stops int
}

func (p *fakePlayer) Play(context.Context, diagram.Response) (playback.Report, error) {
	p.plays++
	return playback.Report{}, nil
}

func (p *fakePlayer) Stop() { p.stops++ }

func TestEmptyTopicMakesNoCall(t *testing.T) {
	src := &fakeSource{}
	o := New(src, &fakePlayer{}, memory.New(), nil)
	for _, topic := range []string{"", "  ", "\t\n"} {
		_, err := o.Submit(context.Background(), topic)
		if !errors.Is(err, ErrEmptyTopic) {
			t.Fatalf("err=%v", err)
		}
		var ue *UserError
		if !errors.As(err, &ue) || ue.Message != "Please enter a topic" {
			t.Fatalf("err=%v", err)
		}
	}
	if src.calls != 0 {
		t.Fatalf("source called %d times", src.calls)
	}
}

func TestSubmitClearsThenPlays(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	_, _ = c.CreateText(ctx, canvas.Text{Content: "previous"})
	resp := diagram.Response{Instructions: []diagram.Instruction{
		{Kind: diagram.KindText, Text: "new", Position: &geom.Point{}},
	}}
	seq := playback.New(c, interpreter.New(c, nil), nil, playback.NoPacing())
	o := New(&fakeSource{resp: resp}, seq, c, nil)

	res, err := o.Submit(ctx, " photosynthesis ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	shapes, _ := c.Shapes(ctx)
	if len(shapes) != 1 || shapes[0].Text.Content != "new" {
		t.Fatalf("shapes=%+v", shapes)
	}
	if res.Topic != "photosynthesis" || res.Report.Created != 1 {
		t.Fatalf("res=%+v", res)
	}
}

func TestSourceFailureDoesNotPlay(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	_, _ = c.CreateText(ctx, canvas.Text{Content: "previous"})
	p := &fakePlayer{}
	boom := errors.New("connection refused")
	o := New(&fakeSource{err: boom}, p, c, nil)

	_, err := o.Submit(ctx, "atoms")
	var ue *UserError
	if !errors.As(err, &ue) || ue.Message == "" || !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if p.plays != 0 {
		t.Fatal("played after failure")
	}
	if c.Len() != 0 {
		t.Fatal("board not cleared before the request")
	}
}

func TestEmptyInstructionsIsUserError(t *testing.T) {
	c := memory.New()
	seq := playback.New(c, interpreter.New(c, nil), nil, playback.NoPacing())
	o := New(&fakeSource{}, seq, c, nil)
	_, err := o.Submit(context.Background(), "atoms")
	var ue *UserError
	if !errors.As(err, &ue) || !errors.Is(err, playback.ErrNoInstructions) {
		t.Fatalf("err=%v", err)
	}
}

func TestOneSubmissionAtATime(t *testing.T) {
	src := &fakeSource{release: make(chan struct{})}
	o := New(src, &fakePlayer{}, memory.New(), nil)

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), "first")
		done <- err
	}()
	deadline := time.Now().Add(time.Second)
	for !o.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := o.Submit(context.Background(), "second"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("err=%v", err)
	}
	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("first: %v", err)
	}
	if o.Busy() {
		t.Fatal("still busy")
	}
}

func TestClearStopsPlayer(t *testing.T) {
	ctx := context.Background()
	c := memory.New()
	_, _ = c.CreateText(ctx, canvas.Text{Content: "x"})
	p := &fakePlayer{}
	o := New(&fakeSource{}, p, c, nil)
	if err := o.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if p.stops != 1 || c.Len() != 0 {
		t.Fatalf("stops=%d len=%d", p.stops, c.Len())
	}
}
