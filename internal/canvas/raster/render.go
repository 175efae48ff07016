package raster

import (
	"image"
	"image/color"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/fogleman/gg"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/palette"
)

const (
	strokeWidth = 3.0
	arrowHead   = 14.0
	framePad    = 10.0
)

// view maps page space to image pixels.
type view struct {
	scale  float64
	offset geom.Point
}

func newView(vp geom.Box, width, height int, padding float64) view {
	w, h := float64(width), float64(height)
	if w-2*padding > 0 && h-2*padding > 0 {
		w -= 2 * padding
		h -= 2 * padding
	}
	scale := math.Min(w/vp.Width, h/vp.Height)
	return view{
		scale: scale,
		offset: geom.Point{
			X: (float64(width)-vp.Width*scale)/2 - vp.Min.X*scale,
			Y: (float64(height)-vp.Height*scale)/2 - vp.Min.Y*scale,
		},
	}
}

func (v view) px(p geom.Point) geom.Point {
	return geom.Point{X: v.offset.X + p.X*v.scale, Y: v.offset.Y + p.Y*v.scale}
}

// Render draws the visible shapes in layer order, creation order within a
// layer.
func (c *Canvas) Render() image.Image {
	return c.context().Image()
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.context().EncodePNG(w)
}

func (c *Canvas) SavePNG(path string) error {
	return c.context().SavePNG(path)
}

func (c *Canvas) context() *gg.Context {
	c.mu.Lock()
	shapes := append([]canvas.Shape(nil), c.shapes...)
	images := make(map[canvas.ShapeID]image.Image, len(c.images))
	for id, img := range c.images {
		images[id] = img
	}
	vp, fitted := c.viewport, c.fitted
	c.mu.Unlock()

	padding := 0.0
	if fitted {
		padding = c.padding
	}
	v := newView(vp, c.width, c.height, padding)

	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].Style().Layer < shapes[j].Style().Layer
	})

	dc := gg.NewContext(c.width, c.height)
	dc.SetColor(c.background.NRGBA())
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	for _, s := range shapes {
		if s.Style().Hidden {
			continue
		}
		switch {
		case s.Text != nil:
			c.drawText(dc, v, s.Text)
		case s.Arrow != nil:
			drawArrow(dc, v, s.Arrow)
		case s.Draw != nil:
			drawPath(dc, v, s.Draw)
		case s.Geo != nil:
			drawGeo(dc, v, s.Geo)
		case s.Image != nil:
			drawImage(dc, v, s.Image, images[s.ID])
		}
	}
	return dc
}

func paint(st canvas.Style, alpha float64) color.NRGBA {
	c := st.Color.NRGBA()
	op := st.Opacity
	if op < 0 || math.IsNaN(op) {
		op = 0
	}
	if op > 1 {
		op = 1
	}
	c.A = uint8(math.Round(float64(c.A) * op * alpha))
	return c
}

func fillAndStroke(dc *gg.Context, v view, st canvas.Style, closed bool) {
	if closed {
		switch st.Fill {
		case canvas.FillSolid:
			dc.SetColor(paint(st, 1))
			dc.FillPreserve()
		case canvas.FillSemi:
			dc.SetColor(paint(st, 0.5))
			dc.FillPreserve()
		}
	}
	dc.SetColor(paint(st, 1))
	dc.SetLineWidth(math.Max(1, strokeWidth*v.scale))
	dc.Stroke()
}

func (c *Canvas) drawText(dc *gg.Context, v view, t *canvas.Text) {
	dc.SetFontFace(c.fonts.face(t.Font, v.scale))
	lines := strings.Split(t.Content, "\n")
	lh := dc.FontHeight() * 1.25
	var w float64
	for _, line := range lines {
		if lw, _ := dc.MeasureString(line); lw > w {
			w = lw
		}
	}
	h := lh * float64(len(lines))
	at := v.px(t.Position)

	pad := framePad * v.scale
	x, y, fw, fh := at.X-pad, at.Y-pad, w+2*pad, h+2*pad
	switch t.Frame {
	case canvas.FrameCode:
		dc.DrawRoundedRectangle(x, y, fw, fh, pad/2)
		dc.SetColor(color.NRGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff})
		dc.FillPreserve()
		dc.SetColor(palette.Grey.NRGBA())
		dc.SetLineWidth(math.Max(1, v.scale))
		dc.Stroke()
	case canvas.FrameBubble:
		dc.DrawRoundedRectangle(x, y, fw, fh, pad)
		dc.MoveTo(x+fw*0.2, y+fh)
		dc.LineTo(x+fw*0.15, y+fh+2*pad)
		dc.LineTo(x+fw*0.35, y+fh)
		dc.SetColor(palette.White.NRGBA())
		dc.FillPreserve()
		dc.SetColor(paint(t.Style, 1))
		dc.SetLineWidth(math.Max(1, 2*v.scale))
		dc.Stroke()
	}

	dc.SetColor(paint(t.Style, 1))
	for i, line := range lines {
		dc.DrawStringAnchored(line, at.X, at.Y+float64(i)*lh, 0, 1)
	}
}

func drawArrow(dc *gg.Context, v view, a *canvas.Arrow) {
	from := v.px(a.Origin.Add(a.Start))
	to := v.px(a.Origin.Add(a.End))
	dc.DrawLine(from.X, from.Y, to.X, to.Y)
	if from != to {
		angle := math.Atan2(to.Y-from.Y, to.X-from.X)
		l := arrowHead * v.scale
		for _, side := range []float64{-1, 1} {
			theta := angle + math.Pi - side*0.45
			dc.MoveTo(to.X, to.Y)
			dc.LineTo(to.X+l*math.Cos(theta), to.Y+l*math.Sin(theta))
		}
	}
	fillAndStroke(dc, v, a.Style, false)
}

func drawPath(dc *gg.Context, v view, d *canvas.Draw) {
	if len(d.Segments) == 0 {
		return
	}
	var last geom.Point
	for i, seg := range d.Segments {
		from := v.px(d.Origin.Add(seg.From))
		if i == 0 || from != last {
			dc.MoveTo(from.X, from.Y)
		}
		last = v.px(d.Origin.Add(seg.To))
		dc.LineTo(last.X, last.Y)
	}
	if d.Closed {
		dc.ClosePath()
	}
	fillAndStroke(dc, v, d.Style, d.Closed)
}

func drawGeo(dc *gg.Context, v view, g *canvas.Geo) {
	at := v.px(g.Origin)
	w, h := g.Width*v.scale, g.Height*v.scale
	switch g.Geo {
	case canvas.GeoEllipse:
		dc.DrawEllipse(at.X+w/2, at.Y+h/2, w/2, h/2)
	default:
		dc.DrawRectangle(at.X, at.Y, w, h)
	}
	fillAndStroke(dc, v, g.Style, true)
}

func drawImage(dc *gg.Context, v view, img *canvas.Image, src image.Image) {
	at := v.px(img.Origin)
	w, h := img.Width*v.scale, img.Height*v.scale
	if src == nil || w < 1 || h < 1 {
		dc.DrawRectangle(at.X, at.Y, w, h)
		dc.MoveTo(at.X, at.Y)
		dc.LineTo(at.X+w, at.Y+h)
		dc.MoveTo(at.X+w, at.Y)
		dc.LineTo(at.X, at.Y+h)
		dc.SetColor(palette.Grey.NRGBA())
		dc.SetLineWidth(math.Max(1, v.scale))
		dc.Stroke()
		return
	}
	dc.DrawImage(scaled(src, int(math.Round(w)), int(math.Round(h))), int(math.Round(at.X)), int(math.Round(at.Y)))
}
