package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/yungbote/chalkboard/internal/canvas"
	"github.com/yungbote/chalkboard/internal/geom"
)

func TestCreateAndClear(t *testing.T) {
	ctx := context.Background()
	var seen []canvas.ShapeKind
	c := New(WithObserver(func(s canvas.Shape) { seen = append(seen, s.Kind) }))

	if _, err := c.CreateText(ctx, canvas.Text{Content: "hi"}); err != nil {
		t.Fatalf("CreateText: %v", err)
	}
	if _, err := c.CreateGeo(ctx, canvas.Geo{Geo: canvas.GeoEllipse, Width: 10, Height: 10}); err != nil {
		t.Fatalf("CreateGeo: %v", err)
	}
	if c.Len() != 2 || len(seen) != 2 {
		t.Fatalf("len=%d seen=%v", c.Len(), seen)
	}
	if err := canvas.Clear(ctx, c); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Len() != 0 || c.Deleted() != 2 {
		t.Fatalf("after clear len=%d deleted=%d", c.Len(), c.Deleted())
	}
}

func TestCreateRejectsBadGeometry(t *testing.T) {
	c := New()
	_, err := c.CreateGeo(context.Background(), canvas.Geo{Width: 0, Height: 10})
	if !errors.Is(err, canvas.ErrInvalidGeometry) {
		t.Fatalf("err=%v", err)
	}
	_, err = c.CreateText(context.Background(), canvas.Text{Position: geom.Point{X: math.NaN()}})
	if !errors.Is(err, canvas.ErrInvalidGeometry) {
		t.Fatalf("err=%v", err)
	}
}

func TestInjectedFailure(t *testing.T) {
	boom := errors.New("boom")
	c := New(WithFailure(canvas.ShapeArrow, boom))
	if _, err := c.CreateArrow(context.Background(), canvas.Arrow{}); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("len=%d", c.Len())
	}
}

func TestZoomToFitCoversShapes(t *testing.T) {
	ctx := context.Background()
	c := New()
	_, _ = c.CreateGeo(ctx, canvas.Geo{Geo: canvas.GeoRectangle, Origin: geom.Point{X: 10, Y: 10}, Width: 20, Height: 20})
	_, _ = c.CreateArrow(ctx, canvas.Arrow{Origin: geom.Point{X: 100, Y: 100}, End: geom.Point{X: 50, Y: -90}})
	if err := c.ZoomToFit(ctx); err != nil {
		t.Fatal(err)
	}
	want := geom.Box{Min: geom.Point{X: 10, Y: 10}, Width: 140, Height: 90}
	if got := c.Viewport(); got != want {
		t.Fatalf("viewport=%+v want %+v", got, want)
	}
	if c.Fits() != 1 {
		t.Fatalf("fits=%d", c.Fits())
	}
}
