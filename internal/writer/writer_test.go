package writer

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/vk/trainbuild/internal/testutil"
)

type recordingSink struct {
	events []map[string]any
	err    error
	closed int
}

func (s *recordingSink) Emit(payload map[string]any) error {
	s.events = append(s.events, payload)
	return s.err
}

func (s *recordingSink) Close() error {
	s.closed++
	return nil
}

func newTestWriter(runID string) (*Writer, *testutil.SafeBuffer) {
	buf := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(logger, runID), buf
}

func TestWriter_LogsWithoutSink(t *testing.T) {
	w, logs := newTestWriter("run-1")
	w.Write("No model registered for name: ghost")

	require.Contains(t, logs.String(), "level=INFO")
	require.Contains(t, logs.String(), "No model registered for name: ghost")
	require.NoError(t, w.Close())
}

func TestWriter_EmitsToSink(t *testing.T) {
	w, _ := newTestWriter("run-1")
	sink := &recordingSink{}
	w.Attach(sink)

	w.WriteLevel(slog.LevelWarn, "loss diverged", "iteration", 3)
	require.Len(t, sink.events, 1)

	ev := sink.events[0]
	require.Equal(t, "run-1", ev["run_id"])
	require.Equal(t, "WARN", ev["level"])
	require.Equal(t, "loss diverged", ev["message"])
	require.Equal(t, map[string]any{"iteration": int64(3)}, ev["fields"])
	_, err := uuid.Parse(ev["id"].(string))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.Equal(t, 1, sink.closed)
	w.Write("after close")
	require.Len(t, sink.events, 1)
}

func TestWriter_SinkErrorsAreNotFatal(t *testing.T) {
	w, logs := newTestWriter("")
	_, err := uuid.Parse(w.RunID())
	require.NoError(t, err)

	w.Attach(&recordingSink{err: errors.New("offline")})
	w.Write("hello")
	require.Contains(t, logs.String(), "Failed to emit diagnostic event.")
}

func TestWriter_AttachClosesPreviousSink(t *testing.T) {
	w, _ := newTestWriter("run")
	first := &recordingSink{}
	w.Attach(first)
	w.Attach(&recordingSink{})
	require.Equal(t, 1, first.closed)
}

func TestDialSocketIO_InvalidURL(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())

	_, err := DialSocketIO(ctx, SocketIOOptions{URL: "not a url"})
	require.Error(t, err)

	_, err = DialSocketIO(ctx, SocketIOOptions{URL: "/relative/path", Timeout: time.Second})
	require.ErrorContains(t, err, "scheme and host are required")
}
