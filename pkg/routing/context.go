// Package routing derives isolation, NCC, board cutout and drill geometry
// from the layers of a board. Routers are pure: every call traces its
// layers afresh and shares no state with other calls.
package routing

import (
	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/chazu/pcbmill/pkg/primitive"
)

// Context is the routing input for one board. Absent layers are nil and
// produce absent outputs, never errors.
type Context struct {
	FrontCopper *primitive.Layer `json:"frontCopper,omitempty"`
	BackCopper  *primitive.Layer `json:"backCopper,omitempty"`
	EdgeCuts    *primitive.Layer `json:"edgeCuts,omitempty"`
	Drill       *primitive.Layer `json:"drill,omitempty"`
	Options     Options          `json:"options"`
}

// NewContext returns an empty context with the given options.
func NewContext(opts Options) *Context {
	return &Context{Options: opts}
}

// Layer returns the layer for role, or nil if absent.
func (c *Context) Layer(role primitive.LayerRole) *primitive.Layer {
	switch role {
	case primitive.RoleFrontCopper:
		return c.FrontCopper
	case primitive.RoleBackCopper:
		return c.BackCopper
	case primitive.RoleEdgeCuts:
		return c.EdgeCuts
	case primitive.RoleDrill:
		return c.Drill
	}
	return nil
}

// SetLayer stores l under role, replacing any previous layer.
func (c *Context) SetLayer(role primitive.LayerRole, l *primitive.Layer) {
	switch role {
	case primitive.RoleFrontCopper:
		c.FrontCopper = l
	case primitive.RoleBackCopper:
		c.BackCopper = l
	case primitive.RoleEdgeCuts:
		c.EdgeCuts = l
	case primitive.RoleDrill:
		c.Drill = l
	}
}

// Result is the immutable output of a copper router. Every slot may be
// absent.
type Result struct {
	frontCopper kernel.Region
	backCopper  kernel.Region
	edgeCutsRaw kernel.Region
	edgeCuts    kernel.Region
	mirrored    bool
}

// FrontCopper returns the routed front copper region.
func (r *Result) FrontCopper() (kernel.Region, bool) { return r.frontCopper, r.frontCopper != nil }

// BackCopper returns the routed back copper region, mirrored when
// Options.MirrorBackCu was set.
func (r *Result) BackCopper() (kernel.Region, bool) { return r.backCopper, r.backCopper != nil }

// BackMirrored reports whether the back copper slot was mirrored.
func (r *Result) BackMirrored() bool { return r.mirrored }

// EdgeCutsRaw returns the traced board outline before any offset.
func (r *Result) EdgeCutsRaw() (kernel.Region, bool) { return r.edgeCutsRaw, r.edgeCutsRaw != nil }

// EdgeCuts returns the routed cutout region.
func (r *Result) EdgeCuts() (kernel.Region, bool) { return r.edgeCuts, r.edgeCuts != nil }

// Output is one named, present slot of a result.
type Output struct {
	Name   string
	Region kernel.Region
}

// Outputs returns the present routed slots in a fixed order: f_cu, b_cu,
// edge_cuts. The raw outline is not included.
func (r *Result) Outputs() []Output {
	var out []Output
	if g, ok := r.FrontCopper(); ok {
		out = append(out, Output{Name: "f_cu", Region: g})
	}
	if g, ok := r.BackCopper(); ok {
		out = append(out, Output{Name: "b_cu", Region: g})
	}
	if g, ok := r.EdgeCuts(); ok {
		out = append(out, Output{Name: "edge_cuts", Region: g})
	}
	return out
}
