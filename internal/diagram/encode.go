package diagram

import (
	"encoding/json"
	"time"

	"github.com/yungbote/chalkboard/internal/geom"
)

type pair [2]float64

func toPair(p *geom.Point) *pair {
	if p == nil {
		return nil
	}
	return &pair{p.X, p.Y}
}

type wireInstruction struct {
	Type      Kind        `json:"type"`
	ID        string      `json:"id,omitempty"`
	Step      int         `json:"step,omitempty"`
	Color     string      `json:"color,omitempty"`
	Opacity   *float64    `json:"opacity,omitempty"`
	Layer     int         `json:"layer,omitempty"`
	Duration  int64       `json:"duration,omitempty"`
	Visible   *bool       `json:"visible,omitempty"`
	Narration string      `json:"narration,omitempty"`
	Text      string      `json:"text,omitempty"`
	Position  *geom.Point `json:"position,omitempty"`
	Size      *geom.Size  `json:"size,omitempty"`
	From      *pair       `json:"from,omitempty"`
	To        *pair       `json:"to,omitempty"`
	Points    []pair      `json:"points,omitempty"`
	URL       string      `json:"url,omitempty"`
}

// MarshalJSON writes the canonical wire form.
func (in Instruction) MarshalJSON() ([]byte, error) {
	w := wireInstruction{
		Type:      in.Kind,
		ID:        in.ID,
		Step:      in.Step,
		Color:     in.Color,
		Opacity:   in.Opacity,
		Layer:     in.Layer,
		Duration:  int64(in.Duration / time.Millisecond),
		Visible:   in.Visible,
		Narration: in.Narration,
		Text:      in.Text,
		Position:  in.Position,
		Size:      in.Size,
		From:      toPair(in.From),
		To:        toPair(in.To),
		URL:       in.URL,
	}
	if len(in.Points) > 0 {
		w.Points = make([]pair, len(in.Points))
		for i, p := range in.Points {
			w.Points[i] = pair{p.X, p.Y}
		}
	}
	return json.Marshal(w)
}

func (r Response) MarshalJSON() ([]byte, error) {
	instructions := r.Instructions
	if instructions == nil {
		instructions = []Instruction{}
	}
	return json.Marshal(struct {
		Narration    string        `json:"narration,omitempty"`
		Instructions []Instruction `json:"instructions"`
	}{r.Narration, instructions})
}
