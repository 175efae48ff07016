package geom

import (
	"math"
	"testing"
)

func TestBoundsIsOrderIndependent(t *testing.T) {
	orders := [][]Point{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		{{10, 10}, {0, 10}, {0, 0}, {10, 0}},
		{{0, 10}, {10, 0}, {0, 0}, {10, 10}},
	}
	for i, pts := range orders {
		box, ok := Bounds(pts)
		if !ok {
			t.Fatalf("order %d: expected ok", i)
		}
		if box.Min != (Point{0, 0}) || box.Width != 10 || box.Height != 10 {
			t.Fatalf("order %d: box=%+v", i, box)
		}
	}
}

func TestBoundsEmpty(t *testing.T) {
	if _, ok := Bounds(nil); ok {
		t.Fatalf("expected !ok for empty input")
	}
}

func TestBoxUnion(t *testing.T) {
	a := Box{Min: Point{0, 0}, Width: 10, Height: 10}
	b := Box{Min: Point{-5, 20}, Width: 5, Height: 5}
	u := a.Union(b)
	if u.Min != (Point{-5, 0}) || u.Width != 15 || u.Height != 25 {
		t.Fatalf("union=%+v", u)
	}
}

func TestFiniteAndPositive(t *testing.T) {
	if (Point{X: math.NaN()}).Finite() {
		t.Fatalf("NaN point reported finite")
	}
	if (Size{Width: 0, Height: 4}).Positive() {
		t.Fatalf("zero width reported positive")
	}
	if !(Size{Width: 1, Height: 4}).Positive() {
		t.Fatalf("expected positive")
	}
}
