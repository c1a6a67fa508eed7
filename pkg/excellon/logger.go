package excellon

import (
	"log/slog"

	"github.com/chazu/pcbmill/pkg/logging"
)

var pkgLogger logging.Holder

func slogger() *slog.Logger { return pkgLogger.Load() }

// SetLogger sets the logger used to report ignored lines. Pass nil to
// restore the default silent behaviour.
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}
