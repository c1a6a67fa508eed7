// Package logging holds the silent-by-default slog plumbing shared by the
// pcbmill libraries. Nothing is logged until a caller installs a logger.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var nop = slog.New(nopHandler{})

// Holder stores a logger that may be replaced while other goroutines log.
// The zero value holds the silent logger.
type Holder struct {
	p atomic.Pointer[slog.Logger]
}

// Load returns the stored logger, or the silent logger if none is set.
func (h *Holder) Load() *slog.Logger {
	if l := h.p.Load(); l != nil {
		return l
	}
	return nop
}

// Store replaces the logger. Pass nil to restore silence.
func (h *Holder) Store(l *slog.Logger) {
	h.p.Store(l)
}
