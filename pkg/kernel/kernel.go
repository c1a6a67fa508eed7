// Package kernel defines the abstract 2D geometry kernel interface.
// Implementations (clipper) provide polygon booleans and offsets behind
// this interface. The kernel abstraction allows swapping backends without
// changing the tracer or the routers.
package kernel

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrKernel is the sentinel wrapped by every geometry kernel failure.
var ErrKernel = errors.New("geometry kernel failure")

// ErrDegenerate reports that a shape could not be constructed because its
// input describes no area (non-positive radius, collinear outline, ...).
// Callers building layers treat it as a reason to drop the shape.
var ErrDegenerate = errors.New("degenerate shape")

// OpError records which kernel operation failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("kernel %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Is makes every OpError match ErrKernel.
func (e *OpError) Is(target error) bool { return target == ErrKernel }

// Region is an opaque handle to a planar polygon set, possibly with holes
// and possibly disconnected. Implementations wrap their internal
// representation; regions are immutable.
type Region interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() Bounds
	// Area returns the enclosed area in mm².
	Area() float64
	// IsEmpty reports whether the region encloses nothing.
	IsEmpty() bool
}

// JoinStyle selects how offset corners are filled.
type JoinStyle int

const (
	JoinRound JoinStyle = iota
	JoinMiter
	JoinSquare
)

// CapStyle selects how the ends of a stroked path are closed.
type CapStyle int

const (
	CapRound CapStyle = iota
	CapButt
	CapSquare
)

// Kernel is the abstract geometry kernel interface.
// All lengths are millimetres.
type Kernel interface {
	// Primitives
	Empty() Region
	Disc(center r2.Vec, radius float64) (Region, error)
	Polygon(pts []r2.Vec) (Region, error)
	Stroke(pts []r2.Vec, halfWidth float64, end CapStyle) (Region, error)

	// Boolean operations
	Union(regions ...Region) (Region, error)
	Difference(a, b Region) (Region, error)

	// Offsets and measures
	Buffer(r Region, distance float64, join JoinStyle) (Region, error)
	ConvexHull(r Region) (Region, error)
	Centroid(r Region) (r2.Vec, bool)
	Parts(r Region) ([]Region, error)

	// Transforms
	Mirror(r Region) Region // x → −x

	// Contour output
	Contours(r Region) []Contour
}
