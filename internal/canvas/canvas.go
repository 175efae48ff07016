// Package canvas defines the drawing surface playback renders onto. Shapes
// are created from a small set of primitives; implementations live in the
// memory and raster subpackages.
package canvas

import (
	"context"
	"errors"

	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/palette"
)

var ErrInvalidGeometry = errors.New("canvas: invalid geometry")

type ShapeID string

type Fill string

const (
	FillNone  Fill = "none"
	FillSemi  Fill = "semi"
	FillSolid Fill = "solid"
)

type Font string

const (
	FontDraw Font = "draw"
	FontSans Font = "sans"
	FontMono Font = "mono"
)

// Style is shared by every primitive. Opacity is in [0,1].
type Style struct {
	Color   palette.Color `json:"color"`
	Fill    Fill          `json:"fill"`
	Opacity float64       `json:"opacity"`
	Layer   int           `json:"layer,omitempty"`
	Hidden  bool          `json:"hidden,omitempty"`
	// DurationMS is an animation hint for interactive canvases.
	DurationMS int64 `json:"durationMs,omitempty"`
}

type Frame string

const (
	FrameNone   Frame = ""
	FrameCode   Frame = "code"
	FrameBubble Frame = "bubble"
)

type Text struct {
	Position geom.Point `json:"position"`
	Content  string     `json:"content"`
	Font     Font       `json:"font"`
	Frame    Frame      `json:"frame,omitempty"`
	Style    Style      `json:"style"`
}

// Arrow is anchored at Origin; Start and End are relative to it.
type Arrow struct {
	Origin geom.Point `json:"origin"`
	Start  geom.Point `json:"start"`
	End    geom.Point `json:"end"`
	Style  Style      `json:"style"`
}

type Segment struct {
	From geom.Point `json:"from"`
	To   geom.Point `json:"to"`
}

// Draw is a freehand stroke made of straight segments relative to Origin.
type Draw struct {
	Origin   geom.Point `json:"origin"`
	Segments []Segment  `json:"segments"`
	Closed   bool       `json:"closed"`
	Style    Style      `json:"style"`
}

type GeoKind string

const (
	GeoEllipse   GeoKind = "ellipse"
	GeoRectangle GeoKind = "rectangle"
)

type Geo struct {
	Geo    GeoKind    `json:"geo"`
	Origin geom.Point `json:"origin"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Style  Style      `json:"style"`
}

type Image struct {
	Origin geom.Point `json:"origin"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	URL    string     `json:"url"`
	Style  Style      `json:"style"`
}

type ShapeKind string

const (
	ShapeText  ShapeKind = "text"
	ShapeArrow ShapeKind = "arrow"
	ShapeDraw  ShapeKind = "draw"
	ShapeGeo   ShapeKind = "geo"
	ShapeImage ShapeKind = "image"
)

// Shape is a created primitive. Exactly one of the primitive pointers is set.
type Shape struct {
	ID    ShapeID   `json:"id"`
	Kind  ShapeKind `json:"kind"`
	Text  *Text     `json:"text,omitempty"`
	Arrow *Arrow    `json:"arrow,omitempty"`
	Draw  *Draw     `json:"draw,omitempty"`
	Geo   *Geo      `json:"geo,omitempty"`
	Image *Image    `json:"image,omitempty"`
}

func (s Shape) Style() Style {
	switch {
	case s.Text != nil:
		return s.Text.Style
	case s.Arrow != nil:
		return s.Arrow.Style
	case s.Draw != nil:
		return s.Draw.Style
	case s.Geo != nil:
		return s.Geo.Style
	case s.Image != nil:
		return s.Image.Style
	}
	return Style{}
}

// Bounds is the shape's page-space extent. Text is sized from an estimate of
// its glyph box.
func (s Shape) Bounds() geom.Box {
	switch {
	case s.Text != nil:
		w, h := EstimateText(s.Text.Content, s.Text.Font)
		return geom.Box{Min: s.Text.Position, Width: w, Height: h}
	case s.Arrow != nil:
		b, _ := geom.Bounds([]geom.Point{s.Arrow.Origin.Add(s.Arrow.Start), s.Arrow.Origin.Add(s.Arrow.End)})
		return b
	case s.Draw != nil:
		pts := make([]geom.Point, 0, len(s.Draw.Segments)*2)
		for _, seg := range s.Draw.Segments {
			pts = append(pts, s.Draw.Origin.Add(seg.From), s.Draw.Origin.Add(seg.To))
		}
		b, ok := geom.Bounds(pts)
		if !ok {
			return geom.Box{Min: s.Draw.Origin}
		}
		return b
	case s.Geo != nil:
		return geom.Box{Min: s.Geo.Origin, Width: s.Geo.Width, Height: s.Geo.Height}
	case s.Image != nil:
		return geom.Box{Min: s.Image.Origin, Width: s.Image.Width, Height: s.Image.Height}
	}
	return geom.Box{}
}

// Canvas is the drawing capability. Create calls return the new shape id.
type Canvas interface {
	CreateText(ctx context.Context, t Text) (ShapeID, error)
	CreateArrow(ctx context.Context, a Arrow) (ShapeID, error)
	CreateDraw(ctx context.Context, d Draw) (ShapeID, error)
	CreateGeo(ctx context.Context, g Geo) (ShapeID, error)
	CreateImage(ctx context.Context, img Image) (ShapeID, error)
	Shapes(ctx context.Context) ([]Shape, error)
	DeleteShapes(ctx context.Context, ids []ShapeID) error
	ZoomToFit(ctx context.Context) error
}

// Clear deletes every shape on c.
func Clear(ctx context.Context, c Canvas) error {
	shapes, err := c.Shapes(ctx)
	if err != nil {
		return err
	}
	if len(shapes) == 0 {
		return nil
	}
	ids := make([]ShapeID, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID
	}
	return c.DeleteShapes(ctx, ids)
}

// EstimateText approximates the rendered box of content at the default
// text size.
func EstimateText(content string, font Font) (w, h float64) {
	const lineHeight = 28.0
	charWidth := 12.0
	if font == FontMono {
		charWidth = 13.2
	}
	lines, longest, cur := 1, 0, 0
	for _, r := range content {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > longest {
			longest = cur
		}
	}
	return float64(longest) * charWidth, float64(lines) * lineHeight
}

// Validate reports ErrInvalidGeometry for primitives carrying non-finite
// coordinates or negative extents.
func (s Shape) Validate() error {
	switch {
	case s.Text != nil:
		if !s.Text.Position.Finite() {
			return ErrInvalidGeometry
		}
	case s.Arrow != nil:
		if !s.Arrow.Origin.Finite() || !s.Arrow.Start.Finite() || !s.Arrow.End.Finite() {
			return ErrInvalidGeometry
		}
	case s.Draw != nil:
		if !s.Draw.Origin.Finite() {
			return ErrInvalidGeometry
		}
		for _, seg := range s.Draw.Segments {
			if !seg.From.Finite() || !seg.To.Finite() {
				return ErrInvalidGeometry
			}
		}
	case s.Geo != nil:
		if !s.Geo.Origin.Finite() || !(geom.Size{Width: s.Geo.Width, Height: s.Geo.Height}).Positive() {
			return ErrInvalidGeometry
		}
	case s.Image != nil:
		if !s.Image.Origin.Finite() || !(geom.Size{Width: s.Image.Width, Height: s.Image.Height}).Positive() {
			return ErrInvalidGeometry
		}
	}
	return nil
}
