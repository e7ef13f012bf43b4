// Package writer provides the diagnostic writer that builders and trainers
// reach through the registry under the "writer" key. Every message goes to
// the application logger; when a sink is attached, messages are also
// emitted to it as events tagged with the run id.
package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink receives diagnostic events.
type Sink interface {
	Emit(payload map[string]any) error
	Close() error
}

// Writer writes diagnostic messages.
type Writer struct {
	logger *slog.Logger
	runID  string

	mu   sync.Mutex
	sink Sink
}

// New creates a Writer logging through logger. An empty runID is replaced
// by a fresh one.
func New(logger *slog.Logger, runID string) *Writer {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Writer{logger: logger, runID: runID}
}

// RunID returns the id attached to every event.
func (w *Writer) RunID() string {
	return w.runID
}

// Write writes msg at info level.
func (w *Writer) Write(msg string) {
	w.WriteLevel(slog.LevelInfo, msg)
}

// WriteLevel writes msg at level with optional slog attributes.
func (w *Writer) WriteLevel(level slog.Level, msg string, args ...any) {
	w.logger.Log(context.Background(), level, msg, args...)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sink == nil {
		return
	}

	payload := map[string]any{
		"id":      uuid.NewString(),
		"run_id":  w.runID,
		"level":   level.String(),
		"message": msg,
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(args) > 0 {
		fields := make(map[string]any)
		for _, attr := range argsToAttrs(args) {
			fields[attr.Key] = attr.Value.Any()
		}
		payload["fields"] = fields
	}
	if err := w.sink.Emit(payload); err != nil {
		w.logger.Debug("Failed to emit diagnostic event.", "error", err)
	}
}

// Attach sets the sink events are emitted to, closing the previous one.
func (w *Writer) Attach(sink Sink) {
	w.mu.Lock()
	prev := w.sink
	w.sink = sink
	w.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			w.logger.Debug("Failed to close previous sink.", "error", err)
		}
	}
}

// Close detaches and closes the sink, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	sink := w.sink
	w.sink = nil
	w.mu.Unlock()

	if sink == nil {
		return nil
	}
	return sink.Close()
}

// argsToAttrs pairs loose slog arguments the way slog.Logger does.
func argsToAttrs(args []any) []slog.Attr {
	var attrs []slog.Attr
	for len(args) > 0 {
		switch x := args[0].(type) {
		case slog.Attr:
			attrs = append(attrs, x)
			args = args[1:]
		case string:
			if len(args) == 1 {
				attrs = append(attrs, slog.Any("!BADKEY", x))
				args = nil
				continue
			}
			attrs = append(attrs, slog.Any(x, args[1]))
			args = args[2:]
		default:
			attrs = append(attrs, slog.Any("!BADKEY", x))
			args = args[1:]
		}
	}
	return attrs
}
