package routing

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/pcbmill/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r2"
)

// Direction is the NCC scan direction.
type Direction int

const (
	Horizontal Direction = iota // lines run along X at increasing Y
	Vertical                    // lines run along Y at increasing X
)

func (d Direction) String() string {
	switch d {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "horizontal"/"h" and "vertical"/"v".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, fmt.Errorf("unknown scan direction %q", s)
}

// ScanLine is one NCC pass from From to To.
type ScanLine struct {
	From r2.Vec
	To   r2.Vec
}

// ScanLines covers b with parallel lines spaced by spacing. For an extent
// H across the scan direction there are ⌈H/spacing⌉+1 lines, the first on
// the box edge. Each line overshoots the box by one spacing at both ends.
func ScanLines(b kernel.Bounds, spacing float64, dir Direction) ([]ScanLine, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, &ConfigError{Field: "tool-mm", Value: 2 * spacing}
	}
	if b.IsEmpty() {
		return nil, nil
	}

	across := b.Height()
	if dir == Vertical {
		across = b.Width()
	}
	n := int(math.Ceil(across/spacing-1e-9)) + 1
	if n < 1 {
		n = 1
	}

	lines := make([]ScanLine, n)
	for i := range lines {
		off := float64(i) * spacing
		switch dir {
		case Vertical:
			x := b.Min.X + off
			lines[i] = ScanLine{
				From: r2.Vec{X: x, Y: b.Min.Y - spacing},
				To:   r2.Vec{X: x, Y: b.Max.Y + spacing},
			}
		default:
			y := b.Min.Y + off
			lines[i] = ScanLine{
				From: r2.Vec{X: b.Min.X - spacing, Y: y},
				To:   r2.Vec{X: b.Max.X + spacing, Y: y},
			}
		}
	}
	return lines, nil
}

// NCC computes non-copper-clearing geometry: scan lines spaced by half the
// tool diameter over the board boundary, minus the traced copper. The
// boundary is the raw outline when present, otherwise the convex hull of
// the copper itself.
func (r *Router) NCC(ctx *Context, dir Direction) (*Result, error) {
	res, err := r.route(ctx, func(opts Options, layer string, copper, outline kernel.Region) (kernel.Region, error) {
		return r.clear(opts, dir, layer, copper, outline)
	})
	if err != nil {
		return nil, stageError(StageNCC, err)
	}
	return res, nil
}

func (r *Router) clear(opts Options, dir Direction, layer string, copper, outline kernel.Region) (kernel.Region, error) {
	boundary := outline
	if boundary == nil || boundary.IsEmpty() {
		hull, err := r.k.ConvexHull(copper)
		if err != nil {
			return nil, err
		}
		r.logger().Info("no board outline, using convex hull of copper as NCC boundary", "layer", layer)
		boundary = hull
	}
	if boundary.IsEmpty() {
		return r.k.Empty(), nil
	}

	lines, err := ScanLines(boundary.Bounds(), opts.ToolMM/2, dir)
	if err != nil {
		return nil, err
	}
	shapes := make([]kernel.Region, 0, len(lines))
	for _, l := range lines {
		s, err := r.k.Stroke([]r2.Vec{l.From, l.To}, HairlineMM/2, kernel.CapButt)
		if err != nil {
			return nil, fmt.Errorf("scan line at %v: %w", l.From, err)
		}
		shapes = append(shapes, s)
	}
	scan, err := r.k.Union(shapes...)
	if err != nil {
		return nil, err
	}
	r.logger().Debug("generated scan lines", "layer", layer, "direction", dir.String(), "count", len(lines))
	return r.k.Difference(scan, copper)
}
