// Package logging holds the process-wide structured logger shared by the
// fold packages. Nothing is logged until SetLogger installs a handler.
package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop returns a logger that discards all output.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(Nop())
}

// SetLogger installs l for all packages. Pass nil to restore silence.
// SetLogger is safe for concurrent use.
//
// Levels used:
//   - [slog.LevelDebug]: accepted and rejected folds, session transitions
//   - [slog.LevelInfo]: script evaluation summaries
//   - [slog.LevelWarn]: evaluation timeouts and recovered panics
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = Nop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
// Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
