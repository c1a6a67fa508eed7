// Package trace converts the primitives of one board layer into a single
// planar region using a geometry kernel. Malformed primitives are dropped
// and reported, never treated as errors.
package trace

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/chazu/pcbmill/pkg/primitive"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrMalformed is wrapped by every drop reason.
var ErrMalformed = errors.New("malformed primitive")

// DropFunc is called for each primitive that is skipped. index is the
// primitive's position within the layer.
type DropFunc func(layer string, index int, p primitive.Primitive, reason error)

// Tracer builds layer regions. The zero value is not usable; call New.
type Tracer struct {
	k kernel.Kernel

	// OnDrop, when set, receives every dropped primitive.
	OnDrop DropFunc

	// Logger, when set, replaces the package logger for this tracer.
	Logger *slog.Logger
}

// New returns a Tracer using kernel k.
func New(k kernel.Kernel) *Tracer {
	return &Tracer{k: k}
}

// Kernel returns the geometry kernel used by the tracer.
func (t *Tracer) Kernel() kernel.Kernel {
	return t.k
}

// Trace unions every well-formed primitive of the layer into one region.
// A nil or empty layer yields an empty region. The tracer is read-only and
// never mutates the layer; primitive order does not affect the result.
func (t *Tracer) Trace(layer *primitive.Layer) (kernel.Region, error) {
	if layer.IsEmpty() {
		return t.k.Empty(), nil
	}

	shapes := make([]kernel.Region, 0, layer.Len())
	dropped := 0
	for i, p := range layer.Primitives {
		s, err := t.shape(p)
		if err != nil {
			if !errors.Is(err, ErrMalformed) {
				return nil, fmt.Errorf("trace: layer %s primitive %d (%s): %w", layer.Name, i, kindOf(p), err)
			}
			dropped++
			t.drop(layer.Name, i, p, err)
			continue
		}
		shapes = append(shapes, s)
	}

	r, err := t.k.Union(shapes...)
	if err != nil {
		return nil, fmt.Errorf("trace: layer %s union: %w", layer.Name, err)
	}
	t.logger().Debug("traced layer",
		"layer", layer.Name,
		"primitives", layer.Len(),
		"dropped", dropped,
		"area", r.Area())
	return r, nil
}

func (t *Tracer) drop(layer string, i int, p primitive.Primitive, reason error) {
	t.logger().Debug("dropped primitive",
		"layer", layer,
		"index", i,
		"kind", kindOf(p),
		"reason", reason)
	if t.OnDrop != nil {
		t.OnDrop(layer, i, p, reason)
	}
}

// shape builds the region of a single primitive. Degenerate input is
// reported as ErrMalformed; any other error is a kernel failure.
func (t *Tracer) shape(p primitive.Primitive) (kernel.Region, error) {
	var (
		r   kernel.Region
		err error
	)
	switch v := p.(type) {
	case primitive.Circle:
		r, err = t.k.Disc(r2.Vec{X: v.X, Y: v.Y}, v.R)
	case primitive.Rectangle:
		r, err = t.k.Polygon(rectangle(v))
	case primitive.Segment:
		pts := []r2.Vec{{X: v.X1, Y: v.Y1}, {X: v.X2, Y: v.Y2}}
		r, err = t.k.Stroke(pts, v.Width/2, kernel.CapRound)
	case primitive.Outline:
		if len(v.Points) < 3 {
			return nil, fmt.Errorf("%w: outline has %d points", ErrMalformed, len(v.Points))
		}
		pts := make([]r2.Vec, len(v.Points))
		for i, pt := range v.Points {
			pts[i] = r2.Vec{X: pt.X, Y: pt.Y}
		}
		r, err = t.k.Polygon(pts)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrMalformed, p)
	}
	if errors.Is(err, kernel.ErrDegenerate) {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return r, err
}

// rectangle returns the corners of r: a W x H box centred on the origin,
// rotated about the origin, then translated to (X, Y).
func rectangle(r primitive.Rectangle) []r2.Vec {
	hw, hh := r.W/2, r.H/2
	corners := []r2.Vec{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	at := r2.Vec{X: r.X, Y: r.Y}
	for i, c := range corners {
		if r.Rotation != 0 {
			c = r2.Rotate(c, r.Rotation, r2.Vec{})
		}
		corners[i] = r2.Add(c, at)
	}
	return corners
}

func kindOf(p primitive.Primitive) string {
	if p == nil {
		return "nil"
	}
	return p.Kind().String()
}
