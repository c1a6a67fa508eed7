package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/pcbmill/pkg/primitive"
	"github.com/chazu/pcbmill/pkg/routing"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms board script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: edge-cuts -> edge_cuts
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPrimitive wraps a primitive.Primitive so it can be passed between builtins.
type sexpPrimitive struct {
	prim primitive.Primitive
}

func (p *sexpPrimitive) SexpString(ps *zygo.PrintState) string {
	switch v := p.prim.(type) {
	case primitive.Circle:
		return fmt.Sprintf("(circle %g %g r=%g)", v.X, v.Y, v.R)
	case primitive.Rectangle:
		return fmt.Sprintf("(rect %g %g %gx%g)", v.X, v.Y, v.W, v.H)
	case primitive.Segment:
		return fmt.Sprintf("(segment %g %g %g %g w=%g)", v.X1, v.Y1, v.X2, v.Y2, v.Width)
	case primitive.Outline:
		return fmt.Sprintf("(outline %d points)", len(v.Points))
	}
	return "(primitive)"
}
func (p *sexpPrimitive) Type() *zygo.RegisteredType { return nil }

// sexpPoint wraps a primitive.Point.
type sexpPoint struct {
	pt primitive.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.pt.X, p.pt.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value - treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toPoint extracts a point from a (pt x y) value.
func toPoint(s zygo.Sexp) (primitive.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.pt, nil
	}
	return primitive.Point{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// floatFields reads the named keyword arguments into dst. Absent keywords
// leave their destination untouched.
func floatFields(fn string, pa kwArgs, dst map[string]*float64) error {
	for key, ptr := range dst {
		v, ok := pa.kw[key]
		if !ok {
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", fn, key, err)
		}
		*ptr = f
	}
	return nil
}

// flattenPrimitives collects primitives from args, descending one level into
// lists so that (layer :f-cu (track ...)) and mapped lists work.
func flattenPrimitives(fn string, args []zygo.Sexp) ([]primitive.Primitive, error) {
	var prims []primitive.Primitive
	for i, a := range args {
		switch v := a.(type) {
		case *sexpPrimitive:
			prims = append(prims, v.prim)
		case *zygo.SexpPair, *zygo.SexpArray, *zygo.SexpSentinel:
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
			}
			for _, item := range items {
				p, ok := item.(*sexpPrimitive)
				if !ok {
					return nil, fmt.Errorf("%s: argument %d: expected primitive, got %T (%s)",
						fn, i+1, item, item.SexpString(nil))
				}
				prims = append(prims, p.prim)
			}
		default:
			return nil, fmt.Errorf("%s: argument %d: expected primitive, got %T (%s)",
				fn, i+1, a, a.SexpString(nil))
		}
	}
	return prims, nil
}

// collectPoints gathers points from positional args, descending one level
// into lists.
func collectPoints(fn string, args []zygo.Sexp) ([]primitive.Point, error) {
	var pts []primitive.Point
	for i, a := range args {
		if p, ok := a.(*sexpPoint); ok {
			pts = append(pts, p.pt)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		for _, item := range items {
			p, err := toPoint(item)
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
			}
			pts = append(pts, p)
		}
	}
	return pts, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the board DSL builtins into a zygomys environment.
// The builtins populate ctx during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ctx *routing.Context) {

	// -----------------------------------------------------------------------
	// (pt 1.5 2)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{pt: primitive.Point{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (circle :x 5 :y 5 :r 0.8)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var c primitive.Circle
		err := floatFields("circle", parseArgs(args), map[string]*float64{
			"x": &c.X, "y": &c.Y, "r": &c.R,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPrimitive{prim: c}, nil
	})

	// -----------------------------------------------------------------------
	// (hole :x 5 :y 5 :dia 0.8)
	// -----------------------------------------------------------------------
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var c primitive.Circle
		var dia float64
		err := floatFields("hole", parseArgs(args), map[string]*float64{
			"x": &c.X, "y": &c.Y, "dia": &dia,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		c.R = dia / 2
		return &sexpPrimitive{prim: c}, nil
	})

	// -----------------------------------------------------------------------
	// (rect :x 10 :y 4 :w 2 :h 1 :rotation 0.785)
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var r primitive.Rectangle
		err := floatFields("rect", parseArgs(args), map[string]*float64{
			"x": &r.X, "y": &r.Y, "w": &r.W, "h": &r.H, "rotation": &r.Rotation,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPrimitive{prim: r}, nil
	})

	// -----------------------------------------------------------------------
	// (segment :x1 0 :y1 0 :x2 10 :y2 0 :width 0.25)
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var s primitive.Segment
		err := floatFields("segment", parseArgs(args), map[string]*float64{
			"x1": &s.X1, "y1": &s.Y1, "x2": &s.X2, "y2": &s.Y2, "width": &s.Width,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPrimitive{prim: s}, nil
	})

	// -----------------------------------------------------------------------
	// (track :width 0.25 (pt 0 0) (pt 5 0) (pt 5 5))
	//
	// Expands to one segment per consecutive pair of points.
	// -----------------------------------------------------------------------
	env.AddFunction("track", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var width float64
		if err := floatFields("track", pa, map[string]*float64{"width": &width}); err != nil {
			return zygo.SexpNull, err
		}
		pts, err := collectPoints("track", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("track requires at least 2 points, got %d", len(pts))
		}
		segs := make([]zygo.Sexp, 0, len(pts)-1)
		for i := 1; i < len(pts); i++ {
			segs = append(segs, &sexpPrimitive{prim: primitive.Segment{
				X1: pts[i-1].X, Y1: pts[i-1].Y,
				X2: pts[i].X, Y2: pts[i].Y,
				Width: width,
			}})
		}
		return zygo.MakeList(segs), nil
	})

	// -----------------------------------------------------------------------
	// (outline (pt 0 0) (pt 20 0) (pt 20 15) (pt 0 15))
	// -----------------------------------------------------------------------
	env.AddFunction("outline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := collectPoints("outline", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPrimitive{prim: primitive.Outline{Points: pts}}, nil
	})

	// -----------------------------------------------------------------------
	// (layer :f-cu (circle ...) (segment ...) ...)
	//
	// Repeated calls for the same role append to one layer.
	// -----------------------------------------------------------------------
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("layer requires a role argument")
		}
		roleName, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: role: %w", err)
		}
		role, ok := primitive.ParseRole(roleName)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("layer: unknown role %q", roleName)
		}
		prims, err := flattenPrimitives("layer", args[1:])
		if err != nil {
			return zygo.SexpNull, err
		}

		l := ctx.Layer(role)
		if l == nil {
			l = primitive.NewLayer(role.String())
			ctx.SetLayer(role, l)
		}
		l.Add(prims...)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (options :tool-mm 0.2 :edge-cuts-on-cu true ...)
	// -----------------------------------------------------------------------
	env.AddFunction("options", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		opts := &ctx.Options

		err := floatFields("options", pa, map[string]*float64{
			"tool-mm":        &opts.ToolMM,
			"drill-dia-mm":   &opts.DrillDiaMM,
			"cutout-dia-mm":  &opts.CutoutDiaMM,
			"mark-radius-mm": &opts.MarkRadiusMM,
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		for key, ptr := range map[string]*bool{
			"edge-cuts-on-cu": &opts.EdgeCutsOnCu,
			"mirror-bcu":      &opts.MirrorBackCu,
		} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("options: %s: %w", key, err)
			}
			*ptr = b
		}
		return zygo.SexpNull, nil
	})
}
