package app

import (
	"io"
	"log/slog"
)

// newLogger creates the run's logger. Every record carries the run id so
// log lines can be matched with diagnostic events. The global logger is
// left untouched.
func newLogger(levelStr, formatStr, runID string, outW io.Writer) *slog.Logger {
	// Unknown levels were rejected by the cli package; fall back to info.
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch formatStr {
	case "json":
		handler = slog.NewJSONHandler(outW, handlerOpts)
	default:
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	logger := slog.New(handler)
	if runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}
