// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scanout

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/scanout/dispatch"
	"github.com/gogpu/scanout/mirror"
	"github.com/gogpu/scanout/shadow"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for scanout and all its sub-packages.
// By default, scanout produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by scanout:
//   - [slog.LevelDebug]: per-tick diagnostics (diff results, dispatch errors)
//   - [slog.LevelInfo]: one-time lifecycle events (shadow policy, dirty updates disabled)
//   - [slog.LevelWarn]: non-fatal issues (probe rejected, accel fallback)
//
// Example:
//
//	scanout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	shadow.SetLogger(l)
	dispatch.SetLogger(l)
	mirror.SetLogger(l)
}

// Logger returns the current logger used by scanout.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
