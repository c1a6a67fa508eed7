package routing

import "github.com/chazu/pcbmill/pkg/kernel"

// Isolation computes isolation geometry: each present copper layer grown
// by half the tool diameter, so the tool centre never enters copper.
// The board cutout is routed whenever an edge-cuts layer is present.
func (r *Router) Isolation(ctx *Context) (*Result, error) {
	res, err := r.route(ctx, r.isolate)
	if err != nil {
		return nil, stageError(StageIsolation, err)
	}
	return res, nil
}

func (r *Router) isolate(opts Options, _ string, copper, _ kernel.Region) (kernel.Region, error) {
	return r.k.Buffer(copper, opts.ToolMM/2, kernel.JoinRound)
}
