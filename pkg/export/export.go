// Package export writes routed contours to files a CAM tool can import.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/yofu/dxf"

	"github.com/chazu/pcbmill/pkg/kernel"
)

// ErrEmptyRegion is returned when there is nothing to draw.
var ErrEmptyRegion = errors.New("export: empty region")

// Layer is the DXF layer every contour is drawn on.
const Layer = "pcbmill"

// StrokeMM is the SVG stroke width.
const StrokeMM = 0.1

// unitsPerMM is the SVG user-unit resolution; coordinates are whole
// micrometres.
const unitsPerMM = 1000

// nonEmpty drops contours with fewer than 3 points.
func nonEmpty(cs []kernel.Contour) []kernel.Contour {
	out := make([]kernel.Contour, 0, len(cs))
	for _, c := range cs {
		if !c.IsEmpty() {
			out = append(out, c)
		}
	}
	return out
}

func bounds(cs []kernel.Contour) kernel.Bounds {
	b := kernel.NewBounds()
	for _, c := range cs {
		for _, p := range c.Points {
			b.Expand(p)
		}
	}
	return b
}

// WriteSVG draws every contour, outer boundaries and holes alike, as a
// closed unfilled path. The canvas is sized in mm and Y grows upward as on
// the board.
func WriteSVG(w io.Writer, cs []kernel.Contour) error {
	cs = nonEmpty(cs)
	if len(cs) == 0 {
		return ErrEmptyRegion
	}

	b := bounds(cs)
	minX := int(math.Floor(b.Min.X * unitsPerMM))
	maxY := int(math.Ceil(b.Max.Y * unitsPerMM))
	wmm := int(math.Ceil(b.Width())) + 1
	hmm := int(math.Ceil(b.Height())) + 1

	canvas := svg.New(w)
	canvas.StartviewUnit(wmm, hmm, "mm", 0, 0, wmm*unitsPerMM, hmm*unitsPerMM)
	canvas.Gstyle(fmt.Sprintf("fill:none;stroke:black;stroke-width:%d", int(StrokeMM*unitsPerMM)))
	for _, c := range cs {
		xs := make([]int, len(c.Points))
		ys := make([]int, len(c.Points))
		for i, p := range c.Points {
			xs[i] = int(math.Round(p.X*unitsPerMM)) - minX
			ys[i] = maxY - int(math.Round(p.Y*unitsPerMM))
		}
		canvas.Polygon(xs, ys)
	}
	canvas.Gend()
	canvas.End()
	return nil
}

// WriteDXF saves every contour as a closed loop of lines on Layer.
func WriteDXF(path string, cs []kernel.Contour) error {
	cs = nonEmpty(cs)
	if len(cs) == 0 {
		return ErrEmptyRegion
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(Layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("export: dxf layer: %w", err)
	}
	for _, c := range cs {
		n := len(c.Points)
		for i, p := range c.Points {
			q := c.Points[(i+1)%n]
			if _, err := d.Line(p.X, p.Y, 0, q.X, q.Y, 0); err != nil {
				return fmt.Errorf("export: dxf line: %w", err)
			}
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}
