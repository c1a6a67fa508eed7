package engine

import (
	"math"
	"testing"

	"github.com/chazu/pcbmill/pkg/primitive"
	"github.com/chazu/pcbmill/pkg/routing"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(circle :r 0.8)`,
			expect: `(circle "__kw_r" 0.8)`,
		},
		{
			name:   "multiple keywords",
			input:  `(rect :w 2 :h 1)`,
			expect: `(rect "__kw_w" 2 "__kw_h" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def pad-size 1.6)`,
			expect: `(def pad_size 1.6)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(pt -1.5 2)`,
			expect: `(pt -1.5 2)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:edge-cuts-on-cu`,
			expect: `"__kw_edge-cuts-on-cu"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// mustEvaluate evaluates source and fails the test on any error.
func mustEvaluate(t *testing.T, source string) *routing.Context {
	t.Helper()
	ctx, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	return ctx
}

// ---------------------------------------------------------------------------
// Primitive builtins
// ---------------------------------------------------------------------------

func TestSimpleBoard(t *testing.T) {
	ctx := mustEvaluate(t, `
(layer :edge-cuts (outline (pt 0 0) (pt 20 0) (pt 20 15) (pt 0 15)))
(layer :f-cu
  (circle :x 5 :y 5 :r 0.8)
  (rect :x 10 :y 5 :w 2 :h 1 :rotation 0.5)
  (segment :x1 5 :y1 5 :x2 10 :y2 5 :width 0.25))
`)

	if ctx.BackCopper != nil || ctx.Drill != nil {
		t.Error("expected absent back copper and drill layers")
	}
	if ctx.EdgeCuts.Len() != 1 {
		t.Fatalf("expected 1 edge-cuts primitive, got %d", ctx.EdgeCuts.Len())
	}
	o, ok := ctx.EdgeCuts.Primitives[0].(primitive.Outline)
	if !ok {
		t.Fatalf("expected Outline, got %T", ctx.EdgeCuts.Primitives[0])
	}
	if len(o.Points) != 4 || o.Points[2] != (primitive.Point{X: 20, Y: 15}) {
		t.Errorf("unexpected outline points %v", o.Points)
	}

	if ctx.FrontCopper.Name != "f-cu" {
		t.Errorf("layer name = %q, want f-cu", ctx.FrontCopper.Name)
	}
	if ctx.FrontCopper.Len() != 3 {
		t.Fatalf("expected 3 front copper primitives, got %d", ctx.FrontCopper.Len())
	}
	if c := ctx.FrontCopper.Primitives[0].(primitive.Circle); c != (primitive.Circle{X: 5, Y: 5, R: 0.8}) {
		t.Errorf("circle = %+v", c)
	}
	if r := ctx.FrontCopper.Primitives[1].(primitive.Rectangle); r.Rotation != 0.5 || r.W != 2 {
		t.Errorf("rect = %+v", r)
	}
	want := primitive.Segment{X1: 5, Y1: 5, X2: 10, Y2: 5, Width: 0.25}
	if s := ctx.FrontCopper.Primitives[2].(primitive.Segment); s != want {
		t.Errorf("segment = %+v, want %+v", s, want)
	}
}

func TestLayerAppends(t *testing.T) {
	ctx := mustEvaluate(t, `
(layer :b-cu (circle :r 1))
(layer "B.Cu" (circle :x 3 :r 1))
(layer :b-cu)
`)
	if ctx.BackCopper.Len() != 2 {
		t.Fatalf("expected 2 back copper primitives, got %d", ctx.BackCopper.Len())
	}
}

func TestVariableReference(t *testing.T) {
	ctx := mustEvaluate(t, `
(def pad-r 0.75)
(layer :f-cu (circle :x 1 :y 2 :r pad-r))
`)
	c := ctx.FrontCopper.Primitives[0].(primitive.Circle)
	if c.R != 0.75 {
		t.Errorf("expected r=0.75 (from variable), got %f", c.R)
	}
}

func TestTrackExpandsToSegments(t *testing.T) {
	ctx := mustEvaluate(t, `
(layer :f-cu (track :width 0.3 (pt 0 0) (pt 5 0) (pt 5 5)))
`)
	if ctx.FrontCopper.Len() != 2 {
		t.Fatalf("expected 2 segments, got %d", ctx.FrontCopper.Len())
	}
	s := ctx.FrontCopper.Primitives[1].(primitive.Segment)
	if s != (primitive.Segment{X1: 5, Y1: 0, X2: 5, Y2: 5, Width: 0.3}) {
		t.Errorf("second segment = %+v", s)
	}
}

func TestOutlineFromList(t *testing.T) {
	ctx := mustEvaluate(t, `
(def corners (list (pt 0 0) (pt 4 0) (pt 4 4)))
(layer :edge-cuts (outline corners))
`)
	o := ctx.EdgeCuts.Primitives[0].(primitive.Outline)
	if len(o.Points) != 3 {
		t.Errorf("expected 3 points, got %d", len(o.Points))
	}
}

func TestHoleUsesDiameter(t *testing.T) {
	ctx := mustEvaluate(t, `(layer :drill (hole :x 2 :y 3 :dia 0.8))`)
	c := ctx.Drill.Primitives[0].(primitive.Circle)
	if math.Abs(c.R-0.4) > 1e-12 || c.X != 2 || c.Y != 3 {
		t.Errorf("hole = %+v", c)
	}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

func TestOptionsOverrideDefaults(t *testing.T) {
	ctx := mustEvaluate(t, `
(options :tool-mm 0.2 :drill-dia-mm 0.8 :edge-cuts-on-cu true :mirror-bcu false)
`)
	opts := ctx.Options
	if opts.ToolMM != 0.2 {
		t.Errorf("ToolMM = %g, want 0.2", opts.ToolMM)
	}
	if opts.DrillDiaMM != 0.8 {
		t.Errorf("DrillDiaMM = %g, want 0.8", opts.DrillDiaMM)
	}
	if !opts.EdgeCutsOnCu {
		t.Error("EdgeCutsOnCu should be true")
	}
	if opts.MirrorBackCu {
		t.Error("MirrorBackCu should be false")
	}
	if opts.CutoutDiaMM != routing.DefaultCutoutDiaMM {
		t.Errorf("CutoutDiaMM = %g, want default %g", opts.CutoutDiaMM, routing.DefaultCutoutDiaMM)
	}
}

func TestEngineDefaults(t *testing.T) {
	opts := routing.DefaultOptions()
	opts.ToolMM = 0.3
	ctx, _, err := NewEngineWithDefaults(opts).Evaluate(`(options :drill-dia-mm 0.6)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if ctx.Options.ToolMM != 0.3 || ctx.Options.DrillDiaMM != 0.6 {
		t.Errorf("options = %+v", ctx.Options)
	}
}

// ---------------------------------------------------------------------------
// Error cases
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown role", `(layer :f-silks (circle :r 1))`},
		{"missing role", `(layer)`},
		{"non-primitive in layer", `(layer :f-cu 42)`},
		{"non-number field", `(circle :r "big")`},
		{"pt arity", `(pt 1)`},
		{"outline with non-point", `(outline (pt 0 0) 3)`},
		{"track too short", `(track :width 0.2 (pt 0 0))`},
		{"options non-bool", `(options :mirror-bcu 1)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if ctx != nil {
				t.Error("expected nil context on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
		})
	}
}
