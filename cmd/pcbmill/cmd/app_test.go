package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/pcbmill/pkg/export"
	"github.com/chazu/pcbmill/pkg/kernel/clipper"
	"github.com/chazu/pcbmill/pkg/routing"
)

const (
	exampleBoard = "../../../examples/blinky.pcbmill"
	exampleDrill = "../../../examples/blinky.drl"
)

func loadExample(t *testing.T, app *App, drl string) *routing.Context {
	t.Helper()
	ctx, err := app.Load(exampleBoard, drl, nil)
	if err != nil {
		t.Fatalf("loading example board: %v", err)
	}
	return ctx
}

// TestE2EExampleBoard exercises the full pipeline for every stage: board
// script → engine → router → exporter.
func TestE2EExampleBoard(t *testing.T) {
	tests := []struct {
		stage routing.Stage
		want  []string
	}{
		{routing.StageIsolation, []string{"f_cu", "b_cu", "edge_cuts"}},
		{routing.StageNCC, []string{"f_cu", "b_cu", "edge_cuts"}},
		{routing.StageDrill, []string{"drill"}},
		{routing.StageEdgeCuts, []string{"edge_cuts"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			app := NewApp(clipper.DefaultArcToleranceMM)
			ctx := loadExample(t, app, "")

			job, err := app.Run(tt.stage, ctx, routing.Horizontal)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if job.Dropped != 0 {
				t.Errorf("expected no dropped primitives, got %d", job.Dropped)
			}
			if !job.Report.Empty() {
				t.Errorf("unexpected findings: %v", job.Report.All())
			}
			if len(job.Outputs) != len(tt.want) {
				t.Fatalf("expected %d outputs, got %d", len(tt.want), len(job.Outputs))
			}

			dir := t.TempDir()
			written, err := app.Write(job, dir, export.FormatSVG)
			if err != nil {
				t.Fatalf("write: %v", err)
			}
			for i, name := range tt.want {
				if job.Outputs[i].Name != name {
					t.Errorf("output %d = %q, want %q", i, job.Outputs[i].Name, name)
				}
				path := filepath.Join(dir, name+".svg")
				if written[i] != path {
					t.Errorf("written[%d] = %q, want %q", i, written[i], path)
				}
				data, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("reading %s: %v", path, err)
				}
				if !strings.Contains(string(data), "<polygon") {
					t.Errorf("%s has no polygons", name)
				}
			}
		})
	}
}

func TestLoadAppliesScriptOptions(t *testing.T) {
	app := NewApp(clipper.DefaultArcToleranceMM)
	ctx := loadExample(t, app, "")
	if ctx.Options.ToolMM != 0.2 {
		t.Errorf("ToolMM = %g, want 0.2 from script", ctx.Options.ToolMM)
	}

	ctx, err := app.Load(exampleBoard, "", func(o *routing.Options) { o.ToolMM = 0.3 })
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Options.ToolMM != 0.3 {
		t.Errorf("ToolMM = %g, want 0.3 from override", ctx.Options.ToolMM)
	}
}

func TestLoadDrillFileReplacesLayer(t *testing.T) {
	app := NewApp(clipper.DefaultArcToleranceMM)
	ctx := loadExample(t, app, exampleDrill)
	if ctx.Drill.Len() != 4 {
		t.Fatalf("expected 4 drill hits, got %d", ctx.Drill.Len())
	}
	if ctx.Drill.Name != "drill" {
		t.Errorf("drill layer name = %q", ctx.Drill.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pcbmill")
	if err := os.WriteFile(bad, []byte("(layer :f-cu (circle :r"), 0o644); err != nil {
		t.Fatal(err)
	}

	app := NewApp(clipper.DefaultArcToleranceMM)
	if _, err := app.Load(bad, "", nil); err == nil || !strings.Contains(err.Error(), bad) {
		t.Errorf("expected eval error naming the file, got %v", err)
	}
	if _, err := app.Load(filepath.Join(dir, "missing.pcbmill"), "", nil); err == nil {
		t.Error("expected error for missing board file")
	}
	if _, err := app.Load(exampleBoard, filepath.Join(dir, "missing.drl"), nil); err == nil {
		t.Error("expected error for missing drill file")
	}
}

func TestRunReportsDrops(t *testing.T) {
	app := NewApp(clipper.DefaultArcToleranceMM)
	ctx, evalErrs, err := app.engine.Evaluate(`(layer :f-cu (circle :x 1 :y 1 :r 1) (circle :r 0))`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}

	job, err := app.Run(routing.StageIsolation, ctx, routing.Horizontal)
	if err != nil {
		t.Fatal(err)
	}
	if job.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", job.Dropped)
	}
}

func TestRunTooLargeDrill(t *testing.T) {
	app := NewApp(clipper.DefaultArcToleranceMM)
	ctx, evalErrs, err := app.engine.Evaluate(`(layer :drill (rect :w 3 :h 0.8))`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("evaluate: %v %v", err, evalErrs)
	}

	_, err = app.Run(routing.StageDrill, ctx, routing.Horizontal)
	if err == nil || !strings.HasPrefix(err.Error(), "[drill] ") {
		t.Errorf("expected drill stage error, got %v", err)
	}
}

func TestWriteSkipsEmptyOutputs(t *testing.T) {
	app := NewApp(clipper.DefaultArcToleranceMM)
	job := &Job{Outputs: []routing.Output{{Name: "f_cu", Region: app.kernel.Empty()}}}
	written, err := app.Write(job, t.TempDir(), export.FormatDXF)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 0 {
		t.Errorf("expected nothing written, got %v", written)
	}
}
