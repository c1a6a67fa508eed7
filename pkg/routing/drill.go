package routing

import (
	"fmt"
	"math"

	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/chazu/pcbmill/pkg/primitive"
)

// Drilling computes millable hole geometry. Each disjoint hole at or below
// the finished drill area is replaced by a mark disc of MarkRadiusMM at its
// centroid; larger holes are shrunk by the drill radius. Options are
// validated first; a nil drill layer then yields a nil region.
func (r *Router) Drilling(ctx *Context) (kernel.Region, error) {
	if ctx == nil {
		return nil, stageError(StageDrill, errNilContext)
	}
	if err := ctx.Options.Validate(); err != nil {
		return nil, stageError(StageDrill, err)
	}
	if ctx.Drill == nil {
		return nil, nil
	}
	g, err := r.drill(ctx.Options, ctx.Drill)
	if err != nil {
		return nil, stageError(StageDrill, err)
	}
	return g, nil
}

func (r *Router) drill(opts Options, layer *primitive.Layer) (kernel.Region, error) {
	traced, err := r.tracer.Trace(layer)
	if err != nil {
		return nil, err
	}
	parts, err := r.k.Parts(traced)
	if err != nil {
		return nil, err
	}

	radius := opts.DrillDiaMM / 2
	minArea := math.Pi * radius * radius
	holes := make([]kernel.Region, 0, len(parts))
	for i, part := range parts {
		if part.Area() <= minArea {
			c, ok := r.k.Centroid(part)
			if !ok {
				continue
			}
			mark, err := r.k.Disc(c, opts.MarkRadiusMM)
			if err != nil {
				return nil, fmt.Errorf("hole %d mark: %w", i, err)
			}
			holes = append(holes, mark)
			continue
		}
		shrunk, err := r.k.Buffer(part, -radius, kernel.JoinRound)
		if err != nil {
			return nil, fmt.Errorf("hole %d: %w", i, err)
		}
		if shrunk.IsEmpty() {
			r.logger().Warn("hole vanished when shrunk by drill radius",
				"layer", layer.Name, "hole", i, "area", part.Area(), "drill_dia_mm", opts.DrillDiaMM)
			continue
		}
		holes = append(holes, shrunk)
	}
	if len(parts) > 0 && len(holes) == 0 {
		return nil, fmt.Errorf("drill size of %gmm is %w", opts.DrillDiaMM, ErrDrillTooLarge)
	}

	r.logger().Debug("routed drill layer", "layer", layer.Name, "holes", len(parts), "milled", len(holes))
	return r.k.Union(holes...)
}
