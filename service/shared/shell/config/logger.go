package config

import (
	"io"
	"log/slog"
)

// NewLogger creates the JSON logger used when observability is disabled.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
