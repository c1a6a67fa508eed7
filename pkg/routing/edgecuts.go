package routing

import "github.com/chazu/pcbmill/pkg/kernel"

// EdgeCuts computes the board cutout path: the convex hull of the outline
// grown by half the cutout tool diameter. When raw is nil the context's
// edge-cuts layer is traced; with neither present the result is nil.
// Concave outlines are over-covered by the hull.
func (r *Router) EdgeCuts(ctx *Context, raw kernel.Region) (kernel.Region, error) {
	if ctx == nil {
		return nil, stageError(StageEdgeCuts, errNilContext)
	}
	if err := ctx.Options.Validate(); err != nil {
		return nil, stageError(StageEdgeCuts, err)
	}
	if raw == nil {
		if ctx.EdgeCuts == nil {
			return nil, nil
		}
		traced, err := r.tracer.Trace(ctx.EdgeCuts)
		if err != nil {
			return nil, stageError(StageEdgeCuts, err)
		}
		raw = traced
	}
	cut, err := r.cutout(ctx.Options, raw)
	if err != nil {
		return nil, stageError(StageEdgeCuts, err)
	}
	return cut, nil
}

func (r *Router) cutout(opts Options, raw kernel.Region) (kernel.Region, error) {
	hull, err := r.k.ConvexHull(raw)
	if err != nil {
		return nil, err
	}
	return r.k.Buffer(hull, opts.CutoutDiaMM/2, kernel.JoinRound)
}
