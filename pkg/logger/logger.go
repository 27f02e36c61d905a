// Package logger provides slog factories for the upload components:
// JSON stdout logging, optional Sentry forwarding for upload failures,
// and a no-op logger used as the default when logging is not configured.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON-formatted logger writing to stdout at Info level.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// NewNop creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
