package clipper

import (
	"testing"

	gc "github.com/ctessum/go.clipper"
)

func TestConvexHullPoints(t *testing.T) {
	tests := []struct {
		name string
		pts  gc.Path
		want int
	}{
		{"too few", gc.Path{{X: 0, Y: 0}, {X: 1, Y: 0}}, 0},
		{"collinear", gc.Path{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}, 0},
		{"coincident", gc.Path{{X: 1, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 1}}, 0},
		{"triangle", gc.Path{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}}, 3},
		{"square with interior point", gc.Path{
			{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}, {X: 2, Y: 2}, {X: 2, Y: 0},
		}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convexHull(tt.pts)
			if len(got) != tt.want {
				t.Fatalf("convexHull() has %d vertices, want %d", len(got), tt.want)
			}
			if tt.want > 0 && gc.Area(got) <= 0 {
				t.Errorf("hull area = %v, want counter-clockwise (positive)", gc.Area(got))
			}
		})
	}
}

func TestConvexHullWideSpan(t *testing.T) {
	// A 1 km square in nanometres; corner cross products exceed int64.
	const side = 1 << 40
	pts := gc.Path{
		{X: -side, Y: -side}, {X: side, Y: -side}, {X: side, Y: side},
		{X: -side, Y: side}, {X: 0, Y: 0}, {X: 0, Y: -side},
	}
	got := convexHull(pts)
	if len(got) != 4 {
		t.Fatalf("convexHull() has %d vertices, want 4", len(got))
	}
	if gc.Area(got) <= 0 {
		t.Errorf("hull area = %v, want counter-clockwise (positive)", gc.Area(got))
	}
}

func TestCrossSign(t *testing.T) {
	const big = 1 << 40
	tests := []struct {
		name    string
		o, a, b gc.IntPoint
		want    int
	}{
		{"left turn", gc.IntPoint{}, gc.IntPoint{X: 4}, gc.IntPoint{Y: 4}, 1},
		{"right turn", gc.IntPoint{}, gc.IntPoint{Y: 4}, gc.IntPoint{X: 4}, -1},
		{"collinear", gc.IntPoint{}, gc.IntPoint{X: 2, Y: 2}, gc.IntPoint{X: 5, Y: 5}, 0},
		{"wide left turn", gc.IntPoint{}, gc.IntPoint{X: big}, gc.IntPoint{Y: big}, 1},
		{"wide right turn", gc.IntPoint{X: -big, Y: -big}, gc.IntPoint{X: -big, Y: big}, gc.IntPoint{X: big, Y: -big}, -1},
		{"wide collinear", gc.IntPoint{X: -big, Y: -big}, gc.IntPoint{}, gc.IntPoint{X: big, Y: big}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := crossSign(&tt.o, &tt.a, &tt.b); got != tt.want {
				t.Errorf("crossSign() = %d, want %d", got, tt.want)
			}
		})
	}
}
