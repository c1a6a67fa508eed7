// Package excellon loads Excellon drill files, as written by KiCad and
// most other EDA tools, into a drill layer of circles.
//
// Only the subset needed to place holes is understood: unit selection,
// the tool table, tool selection and drill hits. Coordinates may be
// decimal or in the implied-point integer format selected by the LZ/TZ
// unit suffix. Routed slots, canned cycles and repeat codes are logged
// and skipped.
package excellon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/pcbmill/pkg/primitive"
)

const mmPerInch = 25.4

var (
	// ErrNoTool reports a drill hit before any tool was selected.
	ErrNoTool = errors.New("hit before tool selection")
	// ErrUnknownTool reports selection of a tool missing from the tool table.
	ErrUnknownTool = errors.New("tool not defined")
)

// ParseError locates a failure within the drill file.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("excellon: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	toolDefPattern = regexp.MustCompile(`^T(\d+)(?:F[\d.]+|S[\d.]+)*C([\d.]+)`)
	toolSelPattern = regexp.MustCompile(`^T(\d+)$`)
	hitPattern     = regexp.MustCompile(`^(?:X([-+]?[\d.]+))?(?:Y([-+]?[\d.]+))?$`)
	digitsPattern  = regexp.MustCompile(`^(0+)\.(0+)$`)
)

// numberFormat describes how integer coordinates imply a decimal point.
type numberFormat struct {
	intDigits int
	decDigits int
	leading   bool // LZ: leading zeros kept, trailing zeros suppressed
}

var (
	metricFormat = numberFormat{intDigits: 3, decDigits: 3}
	inchFormat   = numberFormat{intDigits: 2, decDigits: 4}
)

// value converts a coordinate to file units. Text containing a decimal
// point is read as is.
func (f numberFormat) value(s string) (float64, error) {
	if strings.Contains(s, ".") {
		return strconv.ParseFloat(s, 64)
	}
	sign := 1.0
	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	dec := f.decDigits
	if f.leading {
		dec = len(s) - f.intDigits
	}
	return sign * float64(n) / math.Pow(10, float64(dec)), nil
}

// parser holds the modal state of a drill program.
type parser struct {
	factor   float64         // mm per file unit
	format   numberFormat
	tools    map[int]float64 // diameters in mm
	radius   float64
	selected bool
	x, y     float64
	layer    *primitive.Layer
}

// Parse reads an Excellon program and returns its hits as a drill layer.
// Coordinates are converted to millimetres. Files that never declare
// units are read as metric.
func Parse(r io.Reader) (*primitive.Layer, error) {
	p := &parser{
		factor: 1,
		format: metricFormat,
		tools:  make(map[int]float64),
		layer:  primitive.NewLayer(primitive.RoleDrill.String()),
	}

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if err := p.line(line); err != nil {
			return nil, &ParseError{Line: n, Text: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("excellon: read: %w", err)
	}

	slogger().Debug("drill file loaded", "tools", len(p.tools), "hits", p.layer.Len())
	return p.layer, nil
}

// ParseFile opens and parses the drill file at path.
func ParseFile(path string) (*primitive.Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("excellon: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func (p *parser) line(line string) error {
	switch {
	case line == "", line[0] == ';':
		return nil
	case line == "M71":
		p.factor, p.format = 1, metricFormat
		return nil
	case line == "M72":
		p.factor, p.format = mmPerInch, inchFormat
		return nil
	case strings.HasPrefix(line, "METRIC"):
		p.factor = 1
		p.units(line, metricFormat)
		return nil
	case strings.HasPrefix(line, "INCH"):
		p.factor = mmPerInch
		p.units(line, inchFormat)
		return nil
	}

	if m := toolDefPattern.FindStringSubmatch(line); m != nil {
		num, _ := strconv.Atoi(m[1])
		dia, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return fmt.Errorf("tool diameter: %w", err)
		}
		p.tools[num] = dia * p.factor
		return nil
	}

	if m := toolSelPattern.FindStringSubmatch(line); m != nil {
		num, _ := strconv.Atoi(m[1])
		if num == 0 {
			p.selected = false
			return nil
		}
		dia, ok := p.tools[num]
		if !ok {
			return fmt.Errorf("T%d: %w", num, ErrUnknownTool)
		}
		p.radius = dia / 2
		p.selected = true
		return nil
	}

	if m := hitPattern.FindStringSubmatch(line); m != nil && (m[1] != "" || m[2] != "") {
		return p.hit(m[1], m[2])
	}

	slogger().Debug("ignored drill line", "line", line)
	return nil
}

// units applies a METRIC or INCH header with its optional zero
// suppression and digit template, e.g. "METRIC,TZ,000.000".
func (p *parser) units(line string, def numberFormat) {
	f := def
	for _, field := range strings.Split(line, ",")[1:] {
		switch field = strings.TrimSpace(field); {
		case field == "LZ":
			f.leading = true
		case field == "TZ":
			f.leading = false
		case digitsPattern.MatchString(field):
			m := digitsPattern.FindStringSubmatch(field)
			f.intDigits, f.decDigits = len(m[1]), len(m[2])
		default:
			slogger().Debug("ignored unit field", "field", field)
		}
	}
	p.format = f
	slogger().Debug("drill units", "line", line,
		"int", f.intDigits, "dec", f.decDigits, "leadingZeros", f.leading)
}

// hit places a hole. An omitted coordinate keeps its previous value.
func (p *parser) hit(xs, ys string) error {
	if !p.selected {
		return ErrNoTool
	}
	if xs != "" {
		x, err := p.format.value(xs)
		if err != nil {
			return fmt.Errorf("x: %w", err)
		}
		p.x = x * p.factor
	}
	if ys != "" {
		y, err := p.format.value(ys)
		if err != nil {
			return fmt.Errorf("y: %w", err)
		}
		p.y = y * p.factor
	}
	p.layer.Add(primitive.Circle{X: p.x, Y: p.y, R: p.radius})
	return nil
}
