package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/pcbmill/pkg/engine"
	"github.com/chazu/pcbmill/pkg/excellon"
	"github.com/chazu/pcbmill/pkg/export"
	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/chazu/pcbmill/pkg/kernel/clipper"
	"github.com/chazu/pcbmill/pkg/primitive"
	"github.com/chazu/pcbmill/pkg/routing"
	"github.com/chazu/pcbmill/pkg/verify"
)

// App ties the script engine, the router and the exporters together for
// one command invocation.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	router *routing.Router
	drops  int
}

// NewApp creates an App over the clipper kernel.
func NewApp(arcToleranceMM float64) *App {
	a := &App{
		engine: engine.NewEngine(),
		kernel: clipper.NewWithOptions(clipper.Options{ArcToleranceMM: arcToleranceMM}),
	}
	a.router = routing.New(a.kernel, routing.WithDropFunc(a.dropped))
	return a
}

func (a *App) dropped(layer string, index int, p primitive.Primitive, reason error) {
	a.drops++
	routing.Logger().Warn("dropped primitive", "layer", layer, "index", index, "reason", reason)
}

// Job is the product of one routing stage.
type Job struct {
	Outputs []routing.Output
	Report  verify.Report
	Dropped int
}

// Load evaluates the board script at path. A non-empty drl replaces the
// script's drill layer; override, when non-nil, adjusts the options the
// script set.
func (a *App) Load(path, drl string, override func(*routing.Options)) (*routing.Context, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ctx, evalErrs, err := a.engine.Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}

	if drl != "" {
		layer, err := excellon.ParseFile(drl)
		if err != nil {
			return nil, err
		}
		ctx.Drill = layer
	}
	if override != nil {
		override(&ctx.Options)
	}
	return ctx, nil
}

// Run executes stage over ctx. dir is only used by NCC.
func (a *App) Run(stage routing.Stage, ctx *routing.Context, dir routing.Direction) (*Job, error) {
	a.drops = 0
	job := &Job{}

	switch stage {
	case routing.StageIsolation:
		res, err := a.router.Isolation(ctx)
		if err != nil {
			return nil, err
		}
		job.Outputs = res.Outputs()
		if job.Report, err = verify.Check(a.kernel, res, nil); err != nil {
			return nil, err
		}

	case routing.StageNCC:
		// Scan lines overshoot the outline; nothing to verify.
		res, err := a.router.NCC(ctx, dir)
		if err != nil {
			return nil, err
		}
		job.Outputs = res.Outputs()

	case routing.StageEdgeCuts:
		g, err := a.router.EdgeCuts(ctx, nil)
		if err != nil {
			return nil, err
		}
		if g != nil {
			job.Outputs = []routing.Output{{Name: "edge_cuts", Region: g}}
		}

	case routing.StageDrill:
		g, err := a.router.Drilling(ctx)
		if err != nil {
			return nil, err
		}
		if g == nil {
			break
		}
		job.Outputs = []routing.Output{{Name: "drill", Region: g}}
		var outline kernel.Region
		if ctx.EdgeCuts != nil {
			if outline, err = a.router.Tracer().Trace(ctx.EdgeCuts); err != nil {
				return nil, err
			}
		}
		if job.Report, err = verify.CheckOutline(a.kernel, outline, nil, g); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	job.Dropped = a.drops
	return job, nil
}

// Write exports every output of job into outDir and returns the paths
// written. Empty outputs are skipped.
func (a *App) Write(job *Job, outDir string, f export.Format) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, o := range job.Outputs {
		path := filepath.Join(outDir, o.Name+f.Ext())
		err := export.WriteFile(path, f, a.kernel.Contours(o.Region))
		if errors.Is(err, export.ErrEmptyRegion) {
			routing.Logger().Warn("nothing to write", "output", o.Name)
			continue
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
