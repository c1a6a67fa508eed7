package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/pcbmill/pkg/kernel"
)

// Format selects the output file type.
type Format string

const (
	FormatSVG Format = "svg"
	FormatDXF Format = "dxf"
)

// ParseFormat accepts "svg" or "dxf" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSVG, FormatDXF:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want svg or dxf)", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// WriteFile writes cs to path in format f.
func WriteFile(path string, f Format, cs []kernel.Contour) (err error) {
	switch f {
	case FormatDXF:
		return WriteDXF(path, cs)
	case FormatSVG:
	default:
		return fmt.Errorf("export: unknown format %q", string(f))
	}

	if len(nonEmpty(cs)) == 0 {
		return ErrEmptyRegion
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: close %s: %w", path, cerr)
		}
	}()
	return WriteSVG(out, cs)
}
