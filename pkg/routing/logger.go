package routing

import (
	"log/slog"

	"github.com/chazu/pcbmill/pkg/logging"
	"github.com/chazu/pcbmill/pkg/trace"
)

var pkgLogger logging.Holder

// SetLogger configures the logger for routing and the layer tracer.
// By default nothing is logged. Pass nil to restore silence.
//
// Log levels used:
//   - [slog.LevelDebug]: per-layer progress, dropped primitives
//   - [slog.LevelInfo]: policy fallbacks (convex-hull NCC boundary)
//   - [slog.LevelWarn]: holes that vanish when shrunk by the drill radius
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
	trace.SetLogger(l)
}

// Logger returns the current routing logger.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}
