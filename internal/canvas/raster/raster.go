// Package raster renders canvas shapes to images with fogleman/gg. Until
// ZoomToFit is called the viewport maps page space 1:1 onto the image.
package raster

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/geom"
	"github.com/yungbote/chalkboard/internal/palette"
	"github.com/yungbote/chalkboard/internal/platform/logger"
)

type Options struct {
	Width      int
	Height     int
	Padding    float64
	Background palette.Color
	// FontPath and MonoPath name TrueType files. Empty uses a built-in
	// bitmap face.
	FontPath   string
	MonoPath   string
	HTTPClient *http.Client
}

type Canvas struct {
	width, height int
	padding       float64
	background    palette.Color
	hc            *http.Client
	log           *logger.Logger
	fonts         fontSet

	mu       sync.Mutex
	shapes   []canvas.Shape
	images   map[canvas.ShapeID]image.Image
	viewport geom.Box
	fitted   bool
}

var _ canvas.Canvas = (*Canvas)(nil)

func New(opts Options, log *logger.Logger) (*Canvas, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", opts.Width, opts.Height)
	}
	if log == nil {
		log = logger.Nop()
	}
	fonts, err := loadFonts(opts.FontPath, opts.MonoPath)
	if err != nil {
		return nil, err
	}
	bg := opts.Background
	if !bg.Valid() {
		bg = palette.White
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Canvas{
		width:      opts.Width,
		height:     opts.Height,
		padding:    opts.Padding,
		background: bg,
		hc:         hc,
		log:        log.With("component", "raster"),
		fonts:      fonts,
		images:     map[canvas.ShapeID]image.Image{},
		viewport:   geom.Box{Width: float64(opts.Width), Height: float64(opts.Height)},
	}, nil
}

func (c *Canvas) CreateText(ctx context.Context, t canvas.Text) (canvas.ShapeID, error) {
	return c.add(canvas.Shape{Kind: canvas.ShapeText, Text: &t})
}

func (c *Canvas) CreateArrow(ctx context.Context, a canvas.Arrow) (canvas.ShapeID, error) {
	return c.add(canvas.Shape{Kind: canvas.ShapeArrow, Arrow: &a})
}

func (c *Canvas) CreateDraw(ctx context.Context, d canvas.Draw) (canvas.ShapeID, error) {
	d.Segments = append([]canvas.Segment(nil), d.Segments...)
	return c.add(canvas.Shape{Kind: canvas.ShapeDraw, Draw: &d})
}

func (c *Canvas) CreateGeo(ctx context.Context, g canvas.Geo) (canvas.ShapeID, error) {
	return c.add(canvas.Shape{Kind: canvas.ShapeGeo, Geo: &g})
}

// CreateImage fetches the image up front. A failed fetch still creates the
// shape; it renders as a placeholder.
func (c *Canvas) CreateImage(ctx context.Context, img canvas.Image) (canvas.ShapeID, error) {
	id, err := c.add(canvas.Shape{Kind: canvas.ShapeImage, Image: &img})
	if err != nil {
		return "", err
	}
	decoded, err := c.fetch(ctx, img.URL)
	if err != nil {
		c.log.Warn("image fetch failed", "url", img.URL, "error", err)
		return id, nil
	}
	c.mu.Lock()
	c.images[id] = decoded
	c.mu.Unlock()
	return id, nil
}

func (c *Canvas) add(s canvas.Shape) (canvas.ShapeID, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	s.ID = canvas.ShapeID("shape:" + uuid.NewString())
	c.mu.Lock()
	c.shapes = append(c.shapes, s)
	c.mu.Unlock()
	return s.ID, nil
}

func (c *Canvas) Shapes(ctx context.Context) ([]canvas.Shape, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]canvas.Shape(nil), c.shapes...), nil
}

func (c *Canvas) DeleteShapes(ctx context.Context, ids []canvas.ShapeID) error {
	drop := make(map[canvas.ShapeID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.shapes[:0]
	for _, s := range c.shapes {
		if drop[s.ID] {
			delete(c.images, s.ID)
			continue
		}
		kept = append(kept, s)
	}
	c.shapes = kept
	return nil
}

// ZoomToFit frames every visible shape, keeping Padding image pixels clear
// on each side. An empty canvas resets to the 1:1 viewport.
func (c *Canvas) ZoomToFit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var (
		box   geom.Box
		found bool
	)
	for _, s := range c.shapes {
		if s.Style().Hidden {
			continue
		}
		b := s.Bounds()
		if !found {
			box, found = b, true
			continue
		}
		box = box.Union(b)
	}
	if !found {
		c.viewport = geom.Box{Width: float64(c.width), Height: float64(c.height)}
		c.fitted = false
		return nil
	}
	// Degenerate boxes (a single horizontal line) still need an extent.
	if box.Width < 1 {
		box.Min.X -= 0.5
		box.Width = 1
	}
	if box.Height < 1 {
		box.Min.Y -= 0.5
		box.Height = 1
	}
	c.viewport = box
	c.fitted = true
	return nil
}

func (c *Canvas) Viewport() geom.Box {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}
