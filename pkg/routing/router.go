package routing

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/chazu/pcbmill/pkg/primitive"
	"github.com/chazu/pcbmill/pkg/trace"
)

var errNilContext = errors.New("nil routing context")

// Router runs the routing algorithms over a geometry kernel.
type Router struct {
	k      kernel.Kernel
	tracer *trace.Tracer
	log    *slog.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithDropFunc reports every primitive the tracer drops.
func WithDropFunc(fn trace.DropFunc) RouterOption {
	return func(r *Router) { r.tracer.OnDrop = fn }
}

// WithLogger overrides the package logger for this router and its tracer.
func WithLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.log = l
		r.tracer.Logger = l
	}
}

// New returns a Router using kernel k.
func New(k kernel.Kernel, opts ...RouterOption) *Router {
	r := &Router{k: k, tracer: trace.New(k)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kernel returns the router's geometry kernel.
func (r *Router) Kernel() kernel.Kernel { return r.k }

// Tracer returns the router's layer tracer.
func (r *Router) Tracer() *trace.Tracer { return r.tracer }

func (r *Router) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return Logger()
}

// copperFunc turns one traced copper layer into routed geometry.
// outline is the traced board outline, or nil when absent.
type copperFunc func(opts Options, layer string, copper, outline kernel.Region) (kernel.Region, error)

// route applies fn to each present copper layer, then the shared
// post-processing: outline union, back copper mirroring and cutout.
func (r *Router) route(ctx *Context, fn copperFunc) (*Result, error) {
	if ctx == nil {
		return nil, errNilContext
	}
	if err := ctx.Options.Validate(); err != nil {
		return nil, err
	}
	opts := ctx.Options
	res := &Result{}

	if ctx.EdgeCuts != nil {
		raw, err := r.tracer.Trace(ctx.EdgeCuts)
		if err != nil {
			return nil, err
		}
		res.edgeCutsRaw = raw
	}

	layers := []struct {
		role  primitive.LayerRole
		layer *primitive.Layer
		slot  *kernel.Region
	}{
		{primitive.RoleFrontCopper, ctx.FrontCopper, &res.frontCopper},
		{primitive.RoleBackCopper, ctx.BackCopper, &res.backCopper},
	}
	for _, l := range layers {
		if l.layer == nil {
			continue
		}
		copper, err := r.tracer.Trace(l.layer)
		if err != nil {
			return nil, err
		}
		g, err := fn(opts, l.role.String(), copper, res.edgeCutsRaw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.role, err)
		}
		if opts.EdgeCutsOnCu && res.edgeCutsRaw != nil {
			if g, err = r.k.Union(g, res.edgeCutsRaw); err != nil {
				return nil, fmt.Errorf("%s: adding edge cuts: %w", l.role, err)
			}
		}
		if l.role == primitive.RoleBackCopper && opts.MirrorBackCu {
			g = r.k.Mirror(g)
			res.mirrored = true
		}
		r.logger().Debug("routed copper layer", "layer", l.role.String(), "area", g.Area())
		*l.slot = g
	}

	if res.edgeCutsRaw != nil {
		cut, err := r.cutout(opts, res.edgeCutsRaw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", primitive.RoleEdgeCuts, err)
		}
		res.edgeCuts = cut
	}
	return res, nil
}
