package depthfx

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

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr is read from loader and initializer goroutines as well as the
// render thread, so it is stored atomically.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by depthfx. By default nothing is
// logged. Pass nil to restore the silent default.
//
// Log levels used by depthfx:
//   - [slog.LevelDebug]: render loop transitions, per-frame timings
//   - [slog.LevelInfo]: textures loaded, effect running
//   - [slog.LevelWarn]: load failures, GPU context failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by depthfx.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
