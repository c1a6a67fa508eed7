package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("invalid routing options")

	// ErrDrillTooLarge reports that the drill diameter left nothing to mill
	// on a drill layer that had holes.
	ErrDrillTooLarge = errors.New("too large for all holes")
)

// ConfigError describes one invalid option.
type ConfigError struct {
	Field string
	Value float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s must be positive, got %g", e.Field, e.Value)
}

// Is makes every ConfigError match ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// Stage names the router that produced an error.
type Stage string

const (
	StageIsolation Stage = "iso"
	StageNCC       Stage = "ncc"
	StageEdgeCuts  Stage = "edge-cuts"
	StageDrill     Stage = "drill"
)

// RouteError tags an error with the routing stage that failed.
type RouteError struct {
	Stage Stage
	Err   error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Stage, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &RouteError{Stage: stage, Err: err}
}
