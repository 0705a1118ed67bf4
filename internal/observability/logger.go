// Package observability provides logging, metrics and terminal report output.
package observability

import (
	"io"
	"log/slog"
	"strings"
)

// LoggerOptions selects the log level and output format
type LoggerOptions struct {
	Level  string
	Format string
}

// NewLogger builds a slog logger writing to out.
// Format "json" selects the JSON handler; anything else writes text.
func NewLogger(out io.Writer, opts LoggerOptions) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, handlerOpts)
	} else {
		h = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(h).With(slog.String("service", "smart-ats"))
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
