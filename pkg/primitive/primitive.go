// Package primitive defines the graphic primitives that make up a board
// layer. Coordinates are millimetres in board space; upstream loaders are
// responsible for unit normalisation.
package primitive

import "fmt"

// Kind distinguishes between primitive shapes.
type Kind int

const (
	KindCircle    Kind = iota // filled disc
	KindRectangle             // filled, optionally rotated rectangle
	KindSegment               // round-capped stroked line
	KindOutline               // arbitrary simple polygon
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindRectangle:
		return "rectangle"
	case KindSegment:
		return "segment"
	case KindOutline:
		return "outline"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Primitive is a single graphic element of a layer. The set of
// implementations is closed: only the types in this package satisfy it.
type Primitive interface {
	Kind() Kind
	primitive() // marker method restricting implementations to this package
}

// Point is a board coordinate in mm.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ---------------------------------------------------------------------------
// Shapes
// ---------------------------------------------------------------------------

// Circle is a filled disc of radius R centred at (X, Y).
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

func (Circle) Kind() Kind { return KindCircle }
func (Circle) primitive() {}

// Rectangle is a W x H rectangle centred on the origin, rotated by
// Rotation radians about the origin and then translated to (X, Y).
type Rectangle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	Rotation float64 `json:"rotation"` // radians, counter-clockwise
}

func (Rectangle) Kind() Kind { return KindRectangle }
func (Rectangle) primitive() {}

// Segment is a line from (X1, Y1) to (X2, Y2) stroked with the given
// width. Ends are round, so the filled shape is a capsule.
type Segment struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Width float64 `json:"width"`
}

func (Segment) Kind() Kind { return KindSegment }
func (Segment) primitive() {}

// Outline is a polygon given by its vertices. The closing edge from the
// last point back to the first is implicit.
type Outline struct {
	Points []Point `json:"points"`
}

func (Outline) Kind() Kind { return KindOutline }
func (Outline) primitive() {}
