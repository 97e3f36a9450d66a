package camdev

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silentHandler drops every record. Enabled reports false for all levels
// so per-frame Debug calls in device Render paths cost no formatting.
type silentHandler struct{}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h silentHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h silentHandler) WithGroup(string) slog.Handler           { return h }

var silentLogger = slog.New(silentHandler{})

// currentLogger is read by every device on every frame and may be swapped
// while cameras render on other goroutines.
var currentLogger atomic.Pointer[slog.Logger]

func init() {
	currentLogger.Store(silentLogger)
}

// SetLogger sets the logger shared by camdev and the device packages.
// Nil switches logging off again, which is also the initial state.
//
// Devices without a logger of their own read Logger on every frame, so
// the change reaches cameras that are already rendering. NewDevice also
// hands the logger to each device it creates through the device's
// SetLogger method; devices given to a camera with WithDevice keep
// whatever logger they were configured with.
//
// Records by level:
//   - Debug: one record per frame (viewport, load op, CPU fallback)
//   - Info: device creation and GPU initialization
//   - Warn: dropped GPU passes and shader modules the host device refused
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silentLogger
	}
	currentLogger.Store(l)
}

// Logger returns the logger set with SetLogger.
func Logger() *slog.Logger {
	return currentLogger.Load()
}

// handToDevice passes l to devices that accept their own logger.
func handToDevice(d Device, l *slog.Logger) {
	if ls, ok := d.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(l)
	}
}
