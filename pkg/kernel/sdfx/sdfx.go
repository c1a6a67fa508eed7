// Package sdfx builds signed distance fields over kernel regions using the
// github.com/deadsy/sdfx SDF-based CAD library. Distance fields answer
// containment and clearance queries that the polygon kernel does not.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrEmptyRegion is returned when a field is requested for a region that
// encloses nothing.
var ErrEmptyRegion = errors.New("sdfx: empty region")

// Field is the signed distance field of a region: negative inside, zero on
// the boundary, positive outside.
type Field struct {
	s      sdf.SDF2
	bounds kernel.Bounds
}

// NewField builds the distance field of r. Each connected part becomes its
// outer polygon minus its holes; parts are combined with a union.
func NewField(k kernel.Kernel, r kernel.Region) (*Field, error) {
	if r == nil || r.IsEmpty() {
		return nil, ErrEmptyRegion
	}
	parts, err := k.Parts(r)
	if err != nil {
		return nil, fmt.Errorf("splitting region: %w", err)
	}

	var shapes []sdf.SDF2
	for i, part := range parts {
		s, err := partSDF(k.Contours(part))
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		if s != nil {
			shapes = append(shapes, s)
		}
	}
	if len(shapes) == 0 {
		return nil, ErrEmptyRegion
	}

	s := shapes[0]
	if len(shapes) > 1 {
		s = sdf.Union2D(shapes...)
	}
	return &Field{s: s, bounds: r.Bounds()}, nil
}

// partSDF converts one part's contours: the outer ring minus any holes.
func partSDF(contours []kernel.Contour) (sdf.SDF2, error) {
	var outer sdf.SDF2
	var holes []sdf.SDF2
	for _, c := range contours {
		if c.IsEmpty() {
			continue
		}
		s, err := sdf.Polygon2D(toV2(c.Points))
		if err != nil {
			return nil, err
		}
		if c.Hole {
			holes = append(holes, s)
		} else if outer == nil {
			outer = s
		}
	}
	if outer == nil {
		return nil, nil
	}
	switch len(holes) {
	case 0:
		return outer, nil
	case 1:
		return sdf.Difference2D(outer, holes[0]), nil
	default:
		return sdf.Difference2D(outer, sdf.Union2D(holes...)), nil
	}
}

func toV2(pts []r2.Vec) []v2.Vec {
	out := make([]v2.Vec, len(pts))
	for i, p := range pts {
		out[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	return out
}

// Distance returns the signed distance from p to the region boundary.
func (f *Field) Distance(p r2.Vec) float64 {
	return f.s.Evaluate(v2.Vec{X: p.X, Y: p.Y})
}

// Contains reports whether p lies inside the region or on its boundary.
func (f *Field) Contains(p r2.Vec) bool {
	return f.Distance(p) <= 0
}

// Clearance returns how far p lies inside the region; negative values mean
// p is outside by that much.
func (f *Field) Clearance(p r2.Vec) float64 {
	return -f.Distance(p)
}

// Bounds returns the bounding box of the source region.
func (f *Field) Bounds() kernel.Bounds {
	return f.bounds
}
