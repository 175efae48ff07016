package geom

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

func (p Point) Finite() bool {
	return finite(p.X) && finite(p.Y)
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) Positive() bool {
	return finite(s.Width) && finite(s.Height) && s.Width > 0 && s.Height > 0
}

// Box is an axis-aligned rectangle anchored at its top-left corner.
type Box struct {
	Min    Point   `json:"min"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Max() Point { return Point{X: b.Min.X + b.Width, Y: b.Min.Y + b.Height} }

func (b Box) Size() Size { return Size{Width: b.Width, Height: b.Height} }

func (b Box) Center() Point {
	return Point{X: b.Min.X + b.Width/2, Y: b.Min.Y + b.Height/2}
}

// Union returns the smallest box covering both b and o.
func (b Box) Union(o Box) Box {
	minX := math.Min(b.Min.X, o.Min.X)
	minY := math.Min(b.Min.Y, o.Min.Y)
	maxX := math.Max(b.Max().X, o.Max().X)
	maxY := math.Max(b.Max().Y, o.Max().Y)
	return Box{Min: Point{X: minX, Y: minY}, Width: maxX - minX, Height: maxY - minY}
}

// Bounds returns the bounding box of points. ok is false when points is empty.
func Bounds(points []Point) (box Box, ok bool) {
	if len(points) == 0 {
		return Box{}, false
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Box{Min: Point{X: minX, Y: minY}, Width: maxX - minX, Height: maxY - minY}, true
}

func BoxFrom(origin Point, size Size) Box {
	return Box{Min: origin, Width: size.Width, Height: size.Height}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
