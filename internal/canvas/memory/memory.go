// Package memory is an in-process canvas that records shapes. It backs
// server-side playback streams and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/geom"
)

type Option func(*Canvas)

// WithObserver registers fn to be called after every shape is created.
func WithObserver(fn func(canvas.Shape)) Option {
	return func(c *Canvas) { c.onCreate = fn }
}

// WithFailure makes create calls for kind fail with err.
func WithFailure(kind canvas.ShapeKind, err error) Option {
	return func(c *Canvas) {
		if c.failures == nil {
			c.failures = map[canvas.ShapeKind]error{}
		}
		c.failures[kind] = err
	}
}

type Canvas struct {
	mu       sync.Mutex
	shapes   []canvas.Shape
	viewport geom.Box
	fits     int
	deleted  int

	onCreate func(canvas.Shape)
	failures map[canvas.ShapeKind]error
}

var _ canvas.Canvas = (*Canvas)(nil)

func New(opts ...Option) *Canvas {
	c := &Canvas{}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Canvas) CreateText(ctx context.Context, t canvas.Text) (canvas.ShapeID, error) {
	return c.create(ctx, canvas.Shape{Kind: canvas.ShapeText, Text: &t})
}

func (c *Canvas) CreateArrow(ctx context.Context, a canvas.Arrow) (canvas.ShapeID, error) {
	return c.create(ctx, canvas.Shape{Kind: canvas.ShapeArrow, Arrow: &a})
}

func (c *Canvas) CreateDraw(ctx context.Context, d canvas.Draw) (canvas.ShapeID, error) {
	d.Segments = append([]canvas.Segment(nil), d.Segments...)
	return c.create(ctx, canvas.Shape{Kind: canvas.ShapeDraw, Draw: &d})
}

func (c *Canvas) CreateGeo(ctx context.Context, g canvas.Geo) (canvas.ShapeID, error) {
	return c.create(ctx, canvas.Shape{Kind: canvas.ShapeGeo, Geo: &g})
}

func (c *Canvas) CreateImage(ctx context.Context, img canvas.Image) (canvas.ShapeID, error) {
	return c.create(ctx, canvas.Shape{Kind: canvas.ShapeImage, Image: &img})
}

func (c *Canvas) create(ctx context.Context, s canvas.Shape) (canvas.ShapeID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := c.failures[s.Kind]; err != nil {
		return "", err
	}
	if err := s.Validate(); err != nil {
		return "", err
	}
	s.ID = canvas.ShapeID("shape:" + uuid.NewString())

	c.mu.Lock()
	c.shapes = append(c.shapes, s)
	fn := c.onCreate
	c.mu.Unlock()

	if fn != nil {
		fn(s)
	}
	return s.ID, nil
}

// Shapes returns the shapes in creation order.
func (c *Canvas) Shapes(ctx context.Context) ([]canvas.Shape, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]canvas.Shape(nil), c.shapes...), nil
}

func (c *Canvas) DeleteShapes(ctx context.Context, ids []canvas.ShapeID) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[canvas.ShapeID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.shapes[:0]
	for _, s := range c.shapes {
		if _, ok := drop[s.ID]; ok {
			c.deleted++
			continue
		}
		kept = append(kept, s)
	}
	c.shapes = kept
	return nil
}

// ZoomToFit sets the viewport to the union of all shape bounds.
func (c *Canvas) ZoomToFit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fits++
	if len(c.shapes) == 0 {
		c.viewport = geom.Box{}
		return nil
	}
	box := c.shapes[0].Bounds()
	for _, s := range c.shapes[1:] {
		box = box.Union(s.Bounds())
	}
	c.viewport = box
	return nil
}

func (c *Canvas) Viewport() geom.Box {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *Canvas) Fits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fits
}

func (c *Canvas) Deleted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted
}

func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shapes)
}
