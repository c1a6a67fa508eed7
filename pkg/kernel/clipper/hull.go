package clipper

import (
	"math/big"
	"sort"

	gc "github.com/ctessum/go.clipper"
)

// convexHull computes the convex hull of pts using Andrew's monotone chain.
// The hull is returned counter-clockwise without collinear vertices.
func convexHull(pts gc.Path) gc.Path {
	if len(pts) < 3 {
		return nil
	}

	// Make a copy sorted by x, then y, to avoid modifying the input.
	sorted := make(gc.Path, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make(gc.Path, 0, 2*len(sorted))
	// Lower hull
	for _, p := range sorted {
		for len(hull) >= 2 && crossSign(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && crossSign(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The last point repeats the first.
	hull = hull[:len(hull)-1]

	out := make(gc.Path, len(hull))
	for i, p := range hull {
		out[i] = &gc.IntPoint{X: p.X, Y: p.Y}
	}
	return out
}

// exactSpan bounds the coordinate differences whose products fit in int64.
const exactSpan = 1<<31 - 1

// crossSign returns the sign of the z component of (a - o) x (b - o).
// Spans too wide for int64 products fall back to big integers.
func crossSign(o, a, b *gc.IntPoint) int {
	ax, ay := int64(a.X-o.X), int64(a.Y-o.Y)
	bx, by := int64(b.X-o.X), int64(b.Y-o.Y)
	if fits(ax) && fits(ay) && fits(bx) && fits(by) {
		c := ax*by - ay*bx
		switch {
		case c > 0:
			return 1
		case c < 0:
			return -1
		}
		return 0
	}
	l := new(big.Int).Mul(big.NewInt(ax), big.NewInt(by))
	r := new(big.Int).Mul(big.NewInt(ay), big.NewInt(bx))
	return l.Cmp(r)
}

func fits(v int64) bool { return v >= -exactSpan && v <= exactSpan }
