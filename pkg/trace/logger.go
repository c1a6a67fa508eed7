package trace

import (
	"log/slog"

	"github.com/chazu/pcbmill/pkg/logging"
)

var pkgLogger logging.Holder

// SetLogger updates the package-level logger used by tracers without
// their own. Pass nil to restore the default silent behaviour.
// routing.SetLogger propagates here.
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func (t *Tracer) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return pkgLogger.Load()
}
