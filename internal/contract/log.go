package contract

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var debugLogger atomic.Pointer[slog.Logger]

func init() {
	debugLogger.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// EnableDebugLog routes debug diagnostics to stderr. Used by --verbose.
func EnableDebugLog() {
	SetDebugOutput(os.Stderr)
}

// SetDebugOutput routes debug diagnostics to w.
func SetDebugOutput(w io.Writer) {
	debugLogger.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// Debug returns the logger for debug diagnostics. It discards everything
// until debug output is enabled.
func Debug() *slog.Logger {
	return debugLogger.Load()
}
