package routing

import (
	"errors"
	"math"
)

// Option defaults.
const (
	DefaultToolMM       = 0.125
	DefaultDrillDiaMM   = 1.0
	DefaultCutoutDiaMM  = 3.0
	DefaultMarkRadiusMM = 1.0
)

// HairlineMM is the width given to NCC scan lines so they become areas
// the kernel can clip.
const HairlineMM = 0.001

// Options is the per-board routing configuration. All lengths are mm.
type Options struct {
	// EdgeCutsOnCu unions the raw board outline into each copper result.
	EdgeCutsOnCu bool `json:"edgeCutsOnCu" mapstructure:"edge-cuts-on-cu"`
	// ToolMM is the isolation and NCC tool diameter.
	ToolMM float64 `json:"toolMM" mapstructure:"tool-mm"`
	// DrillDiaMM is the finished drill diameter.
	DrillDiaMM float64 `json:"drillDiaMM" mapstructure:"drill-dia-mm"`
	// CutoutDiaMM is the board cutout tool diameter.
	CutoutDiaMM float64 `json:"cutoutDiaMM" mapstructure:"cutout-dia-mm"`
	// MirrorBackCu mirrors back copper across the Y axis (x → −x).
	MirrorBackCu bool `json:"mirrorBackCu" mapstructure:"mirror-bcu"`
	// MarkRadiusMM is the radius of the disc emitted for holes at or below
	// the finished drill size.
	MarkRadiusMM float64 `json:"markRadiusMM" mapstructure:"mark-radius-mm"`
}

// DefaultOptions returns the default routing options.
func DefaultOptions() Options {
	return Options{
		EdgeCutsOnCu: false,
		ToolMM:       DefaultToolMM,
		DrillDiaMM:   DefaultDrillDiaMM,
		CutoutDiaMM:  DefaultCutoutDiaMM,
		MirrorBackCu: true,
		MarkRadiusMM: DefaultMarkRadiusMM,
	}
}

// Validate checks that every diameter is positive and finite. Values are
// never clamped. The returned error joins one *ConfigError per bad field
// and matches ErrInvalidConfig.
func (o Options) Validate() error {
	var errs []error
	check := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, &ConfigError{Field: field, Value: v})
		}
	}
	check("tool-mm", o.ToolMM)
	check("drill-dia-mm", o.DrillDiaMM)
	check("cutout-dia-mm", o.CutoutDiaMM)
	check("mark-radius-mm", o.MarkRadiusMM)
	return errors.Join(errs...)
}
