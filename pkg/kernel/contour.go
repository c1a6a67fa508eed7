package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Contour is one closed ring of a region, suitable for export.
// The closing edge from the last point back to the first is implicit.
type Contour struct {
	Points []r2.Vec `json:"points"`
	Hole   bool     `json:"hole"` // ring bounds a hole inside an outer contour
}

// Len returns the number of vertices.
func (c Contour) Len() int {
	return len(c.Points)
}

// IsEmpty returns true if the contour cannot enclose anything.
func (c Contour) IsEmpty() bool {
	return len(c.Points) < 3
}

// Bounds is an axis-aligned bounding box in mm.
type Bounds struct {
	Min r2.Vec `json:"min"`
	Max r2.Vec `json:"max"`
}

// NewBounds returns an empty box ready to be grown with Expand.
func NewBounds() Bounds {
	return Bounds{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
}

// Expand grows the box to include p.
func (b *Bounds) Expand(p r2.Vec) {
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
}

// IsEmpty returns true if nothing has been added to the box.
func (b Bounds) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y
}

// Width returns the X extent.
func (b Bounds) Width() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Max.X - b.Min.X
}

// Height returns the Y extent.
func (b Bounds) Height() float64 {
	if b.IsEmpty() {
		return 0
	}
	return b.Max.Y - b.Min.Y
}

// Contains reports whether the box contains other entirely.
func (b Bounds) Contains(other Bounds) bool {
	if b.IsEmpty() || other.IsEmpty() {
		return false
	}
	return other.Min.X >= b.Min.X && other.Min.Y >= b.Min.Y &&
		other.Max.X <= b.Max.X && other.Max.Y <= b.Max.Y
}
