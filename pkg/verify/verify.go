// Package verify runs advisory checks on routed geometry against the
// board outline. Findings never block output; the CLI prints them.
package verify

import (
	"fmt"
	"math"

	"github.com/chazu/pcbmill/pkg/kernel"
	"github.com/chazu/pcbmill/pkg/kernel/sdfx"
	"github.com/chazu/pcbmill/pkg/routing"
	"gonum.org/v1/gonum/spatial/r2"
)

// Severity ranks a finding.
type Severity int

const (
	SeverityError   Severity = iota // geometry is almost certainly wrong
	SeverityWarning                 // worth a look
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single check result.
type Finding struct {
	Subject  string // output slot the finding concerns, e.g. "drill"
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Subject, f.Message)
}

// Report bundles errors and warnings from all checks.
type Report struct {
	Errors   []Finding
	Warnings []Finding
}

// Empty reports whether no check produced a finding.
func (r Report) Empty() bool { return len(r.Errors) == 0 && len(r.Warnings) == 0 }

// All returns errors followed by warnings.
func (r Report) All() []Finding {
	out := make([]Finding, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

func (r *Report) add(f Finding) {
	if f.Severity == SeverityError {
		r.Errors = append(r.Errors, f)
		return
	}
	r.Warnings = append(r.Warnings, f)
}

// Check compares res and the drilled region against the raw board
// outline carried by res. drills and res may be nil. Without an outline
// there is nothing to check against and the report is empty.
func Check(k kernel.Kernel, res *routing.Result, drills kernel.Region) (Report, error) {
	if res == nil {
		return Report{}, nil
	}
	outline, _ := res.EdgeCutsRaw()
	return CheckOutline(k, outline, res, drills)
}

// CheckOutline is Check with an explicitly traced outline, for callers
// such as drilling that produce no routing result. res may be nil.
func CheckOutline(k kernel.Kernel, outline kernel.Region, res *routing.Result, drills kernel.Region) (Report, error) {
	var rep Report
	if outline == nil || outline.IsEmpty() {
		return rep, nil
	}

	field, err := sdfx.NewField(k, outline)
	if err != nil {
		return rep, fmt.Errorf("verify: outline field: %w", err)
	}

	if res != nil {
		checkCopper(k, res, outline, &rep)
	}
	if drills != nil && !drills.IsEmpty() {
		if err := checkDrills(k, field, drills, &rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// checkCopper flags copper whose bounding box reaches past the outline's.
func checkCopper(k kernel.Kernel, res *routing.Result, outline kernel.Region, rep *Report) {
	board := outline.Bounds()
	if g, ok := res.FrontCopper(); ok && !g.IsEmpty() && !board.Contains(g.Bounds()) {
		rep.add(Finding{
			Subject:  "f_cu",
			Message:  "copper extends past the board outline",
			Severity: SeverityWarning,
		})
	}
	if g, ok := res.BackCopper(); ok && !g.IsEmpty() {
		frame := board
		if res.BackMirrored() {
			frame = k.Mirror(outline).Bounds()
		}
		if !frame.Contains(g.Bounds()) {
			rep.add(Finding{
				Subject:  "b_cu",
				Message:  "copper extends past the board outline",
				Severity: SeverityWarning,
			})
		}
	}
}

// checkDrills flags holes centred off the board and holes that cut into
// the board edge.
func checkDrills(k kernel.Kernel, field *sdfx.Field, drills kernel.Region, rep *Report) error {
	parts, err := k.Parts(drills)
	if err != nil {
		return fmt.Errorf("verify: splitting drills: %w", err)
	}
	for _, p := range parts {
		c, ok := k.Centroid(p)
		if !ok {
			continue
		}
		if !field.Contains(c) {
			rep.add(Finding{
				Subject:  "drill",
				Message:  fmt.Sprintf("hole at %s lies outside the board outline", fmtPoint(c)),
				Severity: SeverityError,
			})
			continue
		}
		if radius := math.Sqrt(p.Area() / math.Pi); field.Clearance(c) < radius {
			rep.add(Finding{
				Subject:  "drill",
				Message:  fmt.Sprintf("hole at %s breaks through the board edge", fmtPoint(c)),
				Severity: SeverityWarning,
			})
		}
	}
	return nil
}

func fmtPoint(p r2.Vec) string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}
