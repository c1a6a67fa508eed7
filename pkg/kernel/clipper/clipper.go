// Package clipper implements the kernel.Kernel interface using the
// github.com/ctessum/go.clipper polygon clipping and offsetting library.
//
// Regions are stored as integer paths at Scale units per millimetre. Every
// region is kept normalised: outer contours wind counter-clockwise
// (positive area) and holes clockwise.
package clipper

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/pcbmill/pkg/kernel"
	gc "github.com/ctessum/go.clipper"
	"gonum.org/v1/gonum/spatial/r2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ClipperKernel)(nil)

// Scale is the number of integer units per millimetre (1 nm resolution).
const Scale = 1e6

// DefaultArcToleranceMM is the maximum distance between a true arc and
// the chords approximating it.
const DefaultArcToleranceMM = 0.001

var errExecute = errors.New("clipping did not succeed")

// Options tunes the kernel.
type Options struct {
	ArcToleranceMM float64 `json:"arcToleranceMM"`
}

// DefaultOptions returns the default kernel options.
func DefaultOptions() Options {
	return Options{ArcToleranceMM: DefaultArcToleranceMM}
}

// ClipperKernel implements kernel.Kernel using go.clipper.
type ClipperKernel struct {
	opts Options
}

// New returns a new ClipperKernel with default options.
func New() *ClipperKernel {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions returns a ClipperKernel using opts. A non-positive arc
// tolerance falls back to the default.
func NewWithOptions(opts Options) *ClipperKernel {
	if !(opts.ArcToleranceMM > 0) {
		opts.ArcToleranceMM = DefaultArcToleranceMM
	}
	return &ClipperKernel{opts: opts}
}

// ---------------------------------------------------------------------------
// Region
// ---------------------------------------------------------------------------

// region wraps normalised clipper paths to implement kernel.Region.
type region struct {
	paths  gc.Paths
	bounds kernel.Bounds
	area   float64
}

func newRegion(paths gc.Paths) *region {
	r := &region{bounds: kernel.NewBounds()}
	for _, p := range paths {
		if len(p) < 3 {
			continue
		}
		r.paths = append(r.paths, p)
		r.area += gc.Area(p)
		for _, pt := range p {
			r.bounds.Expand(toVec(pt))
		}
	}
	r.area /= Scale * Scale
	return r
}

func (r *region) Bounds() kernel.Bounds { return r.bounds }
func (r *region) Area() float64         { return r.area }
func (r *region) IsEmpty() bool         { return len(r.paths) == 0 }

// unwrap extracts the region from a kernel.Region. A nil region is empty.
func unwrap(r kernel.Region) *region {
	if r == nil {
		return &region{bounds: kernel.NewBounds()}
	}
	return r.(*region)
}

// ---------------------------------------------------------------------------
// Coordinate conversion
// ---------------------------------------------------------------------------

func toInt(v float64) gc.CInt {
	return gc.CInt(math.Round(v * Scale))
}

func toVec(p *gc.IntPoint) r2.Vec {
	return r2.Vec{X: float64(p.X) / Scale, Y: float64(p.Y) / Scale}
}

func finite(pts ...r2.Vec) bool {
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

// toPath converts points to an integer path, dropping consecutive
// duplicates after rounding. When closed is set the closing duplicate is
// dropped as well.
func toPath(pts []r2.Vec, closed bool) gc.Path {
	path := make(gc.Path, 0, len(pts))
	for _, p := range pts {
		ip := &gc.IntPoint{X: toInt(p.X), Y: toInt(p.Y)}
		if n := len(path); n > 0 && path[n-1].X == ip.X && path[n-1].Y == ip.Y {
			continue
		}
		path = append(path, ip)
	}
	if closed {
		for len(path) > 1 && path[0].X == path[len(path)-1].X && path[0].Y == path[len(path)-1].Y {
			path = path[:len(path)-1]
		}
	}
	return path
}

// recoverOp turns a clipper panic (e.g. coordinates outside the
// representable range) into a kernel.OpError.
func recoverOp(op string, err *error) {
	if r := recover(); r != nil {
		cause, ok := r.(error)
		if !ok {
			cause = fmt.Errorf("%v", r)
		}
		*err = &kernel.OpError{Op: op, Err: cause}
	}
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Empty returns a region enclosing nothing.
func (k *ClipperKernel) Empty() kernel.Region {
	return newRegion(nil)
}

// Disc returns a filled circle approximated within the arc tolerance.
func (k *ClipperKernel) Disc(center r2.Vec, radius float64) (kernel.Region, error) {
	if !(radius > 0) || !finite(center) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("disc radius %g at %v: %w", radius, center, kernel.ErrDegenerate)
	}
	path := gc.Path{{X: toInt(center.X), Y: toInt(center.Y)}}
	return k.offsetOpen("disc", path, radius, gc.JtRound, gc.EtOpenRound)
}

// Polygon returns the region enclosed by pts. Self-intersections are
// resolved with the non-zero fill rule.
func (k *ClipperKernel) Polygon(pts []r2.Vec) (kernel.Region, error) {
	if !finite(pts...) {
		return nil, fmt.Errorf("polygon has non-finite vertex: %w", kernel.ErrDegenerate)
	}
	path := toPath(pts, true)
	if len(path) < 3 {
		return nil, fmt.Errorf("polygon has %d distinct vertices: %w", len(path), kernel.ErrDegenerate)
	}
	if gc.Area(path) == 0 {
		return nil, fmt.Errorf("polygon has zero area: %w", kernel.ErrDegenerate)
	}
	out, err := k.clip("polygon", gc.CtUnion, gc.Paths{path}, nil)
	if err != nil {
		return nil, err
	}
	r := newRegion(out)
	if r.IsEmpty() {
		return nil, fmt.Errorf("polygon collapsed: %w", kernel.ErrDegenerate)
	}
	return r, nil
}

// Stroke returns pts stroked to halfWidth on each side, with round joins
// and the given end caps. A stroke whose points all coincide becomes a
// disc (round caps) or a square (square caps).
func (k *ClipperKernel) Stroke(pts []r2.Vec, halfWidth float64, end kernel.CapStyle) (kernel.Region, error) {
	if !(halfWidth > 0) || math.IsInf(halfWidth, 0) || !finite(pts...) {
		return nil, fmt.Errorf("stroke half-width %g: %w", halfWidth, kernel.ErrDegenerate)
	}
	path := toPath(pts, false)
	if len(path) == 0 {
		return nil, fmt.Errorf("stroke has no points: %w", kernel.ErrDegenerate)
	}
	if len(path) == 1 {
		switch end {
		case kernel.CapRound:
			return k.offsetOpen("stroke", path, halfWidth, gc.JtRound, gc.EtOpenRound)
		case kernel.CapSquare:
			return k.offsetOpen("stroke", path, halfWidth, gc.JtSquare, gc.EtOpenSquare)
		default:
			return nil, fmt.Errorf("butt-capped stroke has zero length: %w", kernel.ErrDegenerate)
		}
	}
	return k.offsetOpen("stroke", path, halfWidth, gc.JtRound, endType(end))
}

func endType(c kernel.CapStyle) gc.EndType {
	switch c {
	case kernel.CapButt:
		return gc.EtOpenButt
	case kernel.CapSquare:
		return gc.EtOpenSquare
	default:
		return gc.EtOpenRound
	}
}

func joinType(j kernel.JoinStyle) gc.JoinType {
	switch j {
	case kernel.JoinMiter:
		return gc.JtMiter
	case kernel.JoinSquare:
		return gc.JtSquare
	default:
		return gc.JtRound
	}
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Union returns the union of all regions. Nil and empty regions are
// ignored.
func (k *ClipperKernel) Union(regions ...kernel.Region) (kernel.Region, error) {
	var subj gc.Paths
	n := 0
	var last kernel.Region
	for _, r := range regions {
		rg := unwrap(r)
		if rg.IsEmpty() {
			continue
		}
		subj = append(subj, rg.paths...)
		last = rg
		n++
	}
	switch n {
	case 0:
		return k.Empty(), nil
	case 1:
		return last, nil
	}
	out, err := k.clip("union", gc.CtUnion, subj, nil)
	if err != nil {
		return nil, err
	}
	return newRegion(out), nil
}

// Difference returns a − b.
func (k *ClipperKernel) Difference(a, b kernel.Region) (kernel.Region, error) {
	ra, rb := unwrap(a), unwrap(b)
	if ra.IsEmpty() {
		return k.Empty(), nil
	}
	if rb.IsEmpty() {
		return ra, nil
	}
	out, err := k.clip("difference", gc.CtDifference, ra.paths, rb.paths)
	if err != nil {
		return nil, err
	}
	return newRegion(out), nil
}

// clip runs one boolean operation with the non-zero fill rule.
func (k *ClipperKernel) clip(op string, ct gc.ClipType, subj, clp gc.Paths) (out gc.Paths, err error) {
	defer recoverOp(op, &err)

	c := gc.NewClipper(gc.IoNone)
	c.AddPaths(subj, gc.PtSubject, true)
	if len(clp) > 0 {
		c.AddPaths(clp, gc.PtClip, true)
	}
	res, ok := c.Execute1(ct, gc.PftNonZero, gc.PftNonZero)
	if !ok {
		return nil, &kernel.OpError{Op: op, Err: errExecute}
	}
	return res, nil
}

// ---------------------------------------------------------------------------
// Offsets and measures
// ---------------------------------------------------------------------------

// Buffer grows the region by distance (shrinks it when negative). A
// shrink larger than the region yields an empty region.
func (k *ClipperKernel) Buffer(r kernel.Region, distance float64, join kernel.JoinStyle) (kernel.Region, error) {
	rg := unwrap(r)
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, &kernel.OpError{Op: "buffer", Err: fmt.Errorf("invalid distance %g", distance)}
	}
	if rg.IsEmpty() || distance == 0 {
		return rg, nil
	}
	out, err := k.offset("buffer", func(co *gc.ClipperOffset) {
		co.AddPaths(rg.paths, joinType(join), gc.EtClosedPolygon)
	}, distance)
	if err != nil {
		return nil, err
	}
	// Re-run a union so orientation and hole nesting are canonical.
	out, err = k.clip("buffer", gc.CtUnion, out, nil)
	if err != nil {
		return nil, err
	}
	return newRegion(out), nil
}

func (k *ClipperKernel) offsetOpen(op string, path gc.Path, delta float64, jt gc.JoinType, et gc.EndType) (kernel.Region, error) {
	out, err := k.offset(op, func(co *gc.ClipperOffset) {
		co.AddPath(path, jt, et)
	}, delta)
	if err != nil {
		return nil, err
	}
	return newRegion(out), nil
}

func (k *ClipperKernel) offset(op string, add func(*gc.ClipperOffset), delta float64) (out gc.Paths, err error) {
	defer recoverOp(op, &err)

	co := gc.NewClipperOffset()
	co.ArcTolerance = k.opts.ArcToleranceMM * Scale
	co.MiterLimit = 2
	add(co)
	return co.Execute(delta * Scale), nil
}

// ConvexHull returns the convex hull of all outer contours. Regions with
// fewer than three hull vertices yield an empty region.
func (k *ClipperKernel) ConvexHull(r kernel.Region) (kernel.Region, error) {
	rg := unwrap(r)
	var pts gc.Path
	for _, p := range rg.paths {
		if gc.Orientation(p) {
			pts = append(pts, p...)
		}
	}
	hull := convexHull(pts)
	if len(hull) < 3 {
		return k.Empty(), nil
	}
	return newRegion(gc.Paths{hull}), nil
}

// Centroid returns the area-weighted centroid. It reports false for
// regions without area.
func (k *ClipperKernel) Centroid(r kernel.Region) (r2.Vec, bool) {
	rg := unwrap(r)
	if rg.IsEmpty() {
		return r2.Vec{}, false
	}
	origin := toVec(rg.paths[0][0])
	var a, cx, cy float64
	for _, p := range rg.paths {
		n := len(p)
		for i := 0; i < n; i++ {
			p0 := r2.Sub(toVec(p[i]), origin)
			p1 := r2.Sub(toVec(p[(i+1)%n]), origin)
			cross := p0.X*p1.Y - p1.X*p0.Y
			a += cross
			cx += (p0.X + p1.X) * cross
			cy += (p0.Y + p1.Y) * cross
		}
	}
	if a == 0 {
		return r2.Vec{}, false
	}
	// a is twice the signed area.
	return r2.Add(origin, r2.Vec{X: cx / (3 * a), Y: cy / (3 * a)}), true
}

// Parts splits the region into connected components, each an outer
// contour with its holes.
func (k *ClipperKernel) Parts(r kernel.Region) (parts []kernel.Region, err error) {
	rg := unwrap(r)
	if rg.IsEmpty() {
		return nil, nil
	}
	defer recoverOp("parts", &err)

	c := gc.NewClipper(gc.IoNone)
	c.AddPaths(rg.paths, gc.PtSubject, true)
	tree, ok := c.Execute2(gc.CtUnion, gc.PftNonZero, gc.PftNonZero)
	if !ok {
		return nil, &kernel.OpError{Op: "parts", Err: errExecute}
	}
	var walk func(outers []*gc.PolyNode)
	walk = func(outers []*gc.PolyNode) {
		for _, outer := range outers {
			paths := gc.Paths{outer.Contour()}
			for _, hole := range outer.Childs() {
				paths = append(paths, hole.Contour())
				walk(hole.Childs())
			}
			parts = append(parts, newRegion(paths))
		}
	}
	walk(tree.Childs())
	return parts, nil
}

// ---------------------------------------------------------------------------
// Transforms and output
// ---------------------------------------------------------------------------

// Mirror reflects the region across the Y axis. Each path is reversed to
// keep its winding.
func (k *ClipperKernel) Mirror(r kernel.Region) kernel.Region {
	rg := unwrap(r)
	paths := make(gc.Paths, 0, len(rg.paths))
	for _, p := range rg.paths {
		m := make(gc.Path, len(p))
		for i, pt := range p {
			m[len(p)-1-i] = &gc.IntPoint{X: -pt.X, Y: pt.Y}
		}
		paths = append(paths, m)
	}
	return newRegion(paths)
}

// Contours returns every ring of the region in mm.
func (k *ClipperKernel) Contours(r kernel.Region) []kernel.Contour {
	rg := unwrap(r)
	out := make([]kernel.Contour, 0, len(rg.paths))
	for _, p := range rg.paths {
		c := kernel.Contour{Points: make([]r2.Vec, len(p)), Hole: !gc.Orientation(p)}
		for i, pt := range p {
			c.Points[i] = toVec(pt)
		}
		out = append(out, c)
	}
	return out
}
