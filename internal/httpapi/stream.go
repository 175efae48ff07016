package httpapi

import (
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/canvas/memory"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/interpreter"
	"github.com/yungbote/chalkboard/internal/narration"
	"github.com/yungbote/chalkboard/internal/platform/apierr"
	"github.com/yungbote/chalkboard/internal/playback"
)

type streamEvent struct {
	name string
	data any
}

type narrationData struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type shapeData struct {
	Index int          `json:"index"`
	Shape canvas.Shape `json:"shape"`
}

type failedData struct {
	Index int          `json:"index"`
	Kind  diagram.Kind `json:"kind"`
	Error string       `json:"error"`
}

type doneData struct {
	PlaybackID string   `json:"playbackId"`
	Source     string   `json:"source"`
	Steps      int      `json:"steps"`
	Created    int      `json:"created"`
	Skipped    []int    `json:"skipped"`
	Failed     int      `json:"failed"`
	Viewport   geom.Box `json:"viewport"`
}

// playbackStream plays a topic's diagram on a server-side canvas and streams
// narration and shapes as server-sent events.
func (h *handlers) playbackStream(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		h.fail(c, apierr.BadRequest(msgTopicRequired))
		return
	}
	ctx := c.Request.Context()
	res, err := h.run(c, topic)
	if err != nil {
		h.fail(c, err)
		return
	}

	events := make(chan streamEvent, 32)
	send := func(ev streamEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	var (
		mu      sync.Mutex
		pending []canvas.Shape
	)
	cv := memory.New(memory.WithObserver(func(s canvas.Shape) {
		mu.Lock()
		pending = append(pending, s)
		mu.Unlock()
	}))
	flush := func(index int) {
		mu.Lock()
		shapes := pending
		pending = nil
		mu.Unlock()
		for _, s := range shapes {
			send(streamEvent{"shape", shapeData{Index: index, Shape: s}})
		}
	}

	speaker := narration.NewSpeaker(narration.NewTimed(h.deps.PerWord), h.deps.Voice, h.log)
	seq := playback.New(cv, interpreter.New(cv, h.log), speaker, h.deps.Pacing,
		playback.WithLogger(h.log),
		playback.WithObserver(func(ev playback.Event) {
			switch ev.Type {
			case playback.EventNarration:
				send(streamEvent{"narration", narrationData{Index: ev.Index, Text: ev.Text}})
			case playback.EventApplied:
				flush(ev.Index)
			case playback.EventFailed:
				send(streamEvent{"step.failed", failedData{Index: ev.Index, Kind: ev.Kind, Error: ev.Err.Error()}})
			}
		}),
	)

	go func() {
		defer close(events)
		rep, err := seq.Play(ctx, res.Response)
		if err != nil {
			if ctx.Err() == nil {
				send(streamEvent{"error", gin.H{"error": err.Error()}})
			}
			return
		}
		skipped := rep.Skipped
		if skipped == nil {
			skipped = []int{}
		}
		send(streamEvent{"done", doneData{
			PlaybackID: rep.PlaybackID,
			Source:     string(res.Source),
			Steps:      rep.Steps,
			Created:    rep.Created,
			Skipped:    skipped,
			Failed:     len(rep.Errors),
			Viewport:   cv.Viewport(),
		}})
	}()

	c.Header(SourceHeader, string(res.Source))
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.name, ev.data)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
