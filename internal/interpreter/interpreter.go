// Package interpreter turns diagram instructions into canvas primitives.
package interpreter

import (
	"context"
	"fmt"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/diagram"
	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/palette"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

const (
	HighlightColor   = palette.Yellow
	HighlightOpacity = 0.4
)

// StepError is a primitive creation failure for the instruction at Index.
type StepError struct {
	Index int
	Kind  diagram.Kind
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type Interpreter struct {
	canvas canvas.Canvas
	log    *logger.Logger
}

func New(c canvas.Canvas, log *logger.Logger) *Interpreter {
	if log == nil {
		log = logger.Nop()
	}
	return &Interpreter{canvas: c, log: log.With("component", "interpreter")}
}

// Apply creates the shapes for ins. Instructions lacking the geometry their
// kind needs are skipped and report (0, nil).
func (it *Interpreter) Apply(ctx context.Context, index int, ins diagram.Instruction) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			created = 0
			err = &StepError{Index: index, Kind: ins.Kind, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	created, err = it.apply(ctx, ins)
	if err != nil {
		return 0, &StepError{Index: index, Kind: ins.Kind, Err: err}
	}
	if created == 0 {
		it.log.Debug("instruction skipped", "index", index, "kind", ins.Kind)
	}
	return created, nil
}

func (it *Interpreter) apply(ctx context.Context, ins diagram.Instruction) (int, error) {
	switch ins.Kind {
	case diagram.KindText, diagram.KindCodeBlock, diagram.KindSpeechBubble:
		return it.text(ctx, ins)
	case diagram.KindArrow:
		return it.arrow(ctx, ins)
	case diagram.KindLine, diagram.KindPath:
		return it.polyline(ctx, ins)
	case diagram.KindTriangle:
		return it.polygon(ctx, ins, baseStyle(ins, palette.Default))
	case diagram.KindHighlight:
		st := baseStyle(ins, HighlightColor)
		st.Color = HighlightColor
		st.Fill = canvas.FillSemi
		if ins.Opacity == nil {
			st.Opacity = HighlightOpacity
		}
		return it.polygon(ctx, ins, st)
	case diagram.KindCircle:
		return it.geo(ctx, ins, canvas.GeoEllipse)
	case diagram.KindRectangle:
		return it.geo(ctx, ins, canvas.GeoRectangle)
	case diagram.KindImage:
		return it.image(ctx, ins)
	}
	return 0, nil
}

func (it *Interpreter) text(ctx context.Context, ins diagram.Instruction) (int, error) {
	if ins.Position == nil || ins.Text == "" {
		return 0, nil
	}
	t := canvas.Text{Position: *ins.Position, Content: ins.Text, Font: canvas.FontDraw}
	switch ins.Kind {
	case diagram.KindCodeBlock:
		t.Font = canvas.FontMono
		t.Frame = canvas.FrameCode
		t.Style = baseStyle(ins, palette.Grey)
	case diagram.KindSpeechBubble:
		t.Frame = canvas.FrameBubble
		t.Style = baseStyle(ins, palette.Blue)
	default:
		t.Style = baseStyle(ins, palette.Default)
	}
	return one(it.canvas.CreateText(ctx, t))
}

func (it *Interpreter) arrow(ctx context.Context, ins diagram.Instruction) (int, error) {
	if ins.From == nil || ins.To == nil {
		return 0, nil
	}
	a := canvas.Arrow{
		Origin: *ins.From,
		End:    ins.To.Sub(*ins.From),
		Style:  baseStyle(ins, palette.Default),
	}
	return one(it.canvas.CreateArrow(ctx, a))
}

func (it *Interpreter) polyline(ctx context.Context, ins diagram.Instruction) (int, error) {
	pts := ins.Points
	if len(pts) < 2 && ins.From != nil && ins.To != nil {
		pts = []geom.Point{*ins.From, *ins.To}
	}
	if len(pts) < 2 {
		return 0, nil
	}
	d := stroke(pts, false)
	d.Style = baseStyle(ins, palette.Default)
	return one(it.canvas.CreateDraw(ctx, d))
}

func (it *Interpreter) polygon(ctx context.Context, ins diagram.Instruction, st canvas.Style) (int, error) {
	if len(ins.Points) < 3 {
		return 0, nil
	}
	d := stroke(ins.Points, true)
	d.Style = st
	return one(it.canvas.CreateDraw(ctx, d))
}

func (it *Interpreter) geo(ctx context.Context, ins diagram.Instruction, kind canvas.GeoKind) (int, error) {
	box, ok := boxOf(ins)
	if !ok || !box.Size().Positive() {
		return 0, nil
	}
	g := canvas.Geo{
		Geo:    kind,
		Origin: box.Min,
		Width:  box.Width,
		Height: box.Height,
		Style:  baseStyle(ins, palette.Default),
	}
	return one(it.canvas.CreateGeo(ctx, g))
}

func (it *Interpreter) image(ctx context.Context, ins diagram.Instruction) (int, error) {
	if ins.Position == nil || ins.Size == nil || ins.URL == "" || !ins.Size.Positive() {
		return 0, nil
	}
	img := canvas.Image{
		Origin: *ins.Position,
		Width:  ins.Size.Width,
		Height: ins.Size.Height,
		URL:    ins.URL,
		Style:  baseStyle(ins, palette.Default),
	}
	return one(it.canvas.CreateImage(ctx, img))
}

// boxOf prefers boundary points and falls back to position and size.
func boxOf(ins diagram.Instruction) (geom.Box, bool) {
	if len(ins.Points) >= 2 {
		return geom.Bounds(ins.Points)
	}
	if ins.Position != nil && ins.Size != nil {
		return geom.BoxFrom(*ins.Position, *ins.Size), true
	}
	return geom.Box{}, false
}

// stroke anchors the path at its first point. Closed paths get a final
// segment back to the start.
func stroke(pts []geom.Point, closed bool) canvas.Draw {
	origin := pts[0]
	n := len(pts) - 1
	if closed {
		n = len(pts)
	}
	segs := make([]canvas.Segment, 0, n)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, canvas.Segment{From: pts[i].Sub(origin), To: pts[i+1].Sub(origin)})
	}
	if closed {
		segs = append(segs, canvas.Segment{From: pts[len(pts)-1].Sub(origin), To: geom.Point{}})
	}
	return canvas.Draw{Origin: origin, Segments: segs, Closed: closed}
}

func baseStyle(ins diagram.Instruction, fallback palette.Color) canvas.Style {
	st := canvas.Style{
		Color:   fallback,
		Fill:    canvas.FillNone,
		Opacity: 1,
		Layer:   ins.Layer,
		Hidden:  ins.Hidden(),
	}
	if ins.Color != "" {
		st.Color = palette.Normalize(ins.Color)
	}
	if ins.Opacity != nil {
		st.Opacity = clamp01(*ins.Opacity)
	}
	if ins.Duration > 0 {
		st.DurationMS = ins.Duration.Milliseconds()
	}
	return st
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func one(_ canvas.ShapeID, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return 1, nil
}
