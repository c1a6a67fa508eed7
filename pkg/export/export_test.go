package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/chazu/pcbmill/pkg/kernel"
)

func square(x0, y0, s float64, hole bool) kernel.Contour {
	return kernel.Contour{
		Points: []r2.Vec{{X: x0, Y: y0}, {X: x0 + s, Y: y0}, {X: x0 + s, Y: y0 + s}, {X: x0, Y: y0 + s}},
		Hole:   hole,
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	cs := []kernel.Contour{square(0, 0, 10, false), square(2, 2, 2, true)}
	require.NoError(t, WriteSVG(&buf, cs))

	out := buf.String()
	assert.Contains(t, out, `width="11mm"`)
	assert.Contains(t, out, `height="11mm"`)
	assert.Contains(t, out, `viewBox="0 0 11000 11000"`)
	assert.Contains(t, out, "fill:none")
	assert.Contains(t, out, "stroke-width:100")
	assert.Equal(t, 2, strings.Count(out, "<polygon"))
	// Y is flipped: board (0,0) lands at the bottom of the canvas.
	assert.Contains(t, out, `points="0,10000 10000,10000 10000,0 0,0`)
}

func TestWriteSVGNegativeCoordinates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, []kernel.Contour{square(-8, -3, 2, false)}))
	assert.Contains(t, buf.String(), `points="0,2000 2000,2000 2000,0 0,0`)
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteSVG(&buf, nil), ErrEmptyRegion)
	degenerate := []kernel.Contour{{Points: []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}}}}
	assert.ErrorIs(t, WriteSVG(&buf, degenerate), ErrEmptyRegion)
	assert.ErrorIs(t, WriteDXF(filepath.Join(t.TempDir(), "x.dxf"), nil), ErrEmptyRegion)
	assert.Zero(t, buf.Len())
}

func TestWriteDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge_cuts.dxf")
	require.NoError(t, WriteDXF(path, []kernel.Contour{square(0, 0, 5, false)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, Layer)
	assert.Equal(t, 4, strings.Count(out, "\nLINE\n"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)
	assert.Equal(t, ".svg", f.Ext())

	f, err = ParseFormat("dxf")
	require.NoError(t, err)
	assert.Equal(t, FormatDXF, f)

	_, err = ParseFormat("gcode")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	cs := []kernel.Contour{square(0, 0, 1, false)}
	for _, f := range []Format{FormatSVG, FormatDXF} {
		path := filepath.Join(dir, "f_cu"+f.Ext())
		require.NoError(t, WriteFile(path, f, cs))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Error(t, WriteFile(filepath.Join(dir, "x"), Format("png"), cs))
}
