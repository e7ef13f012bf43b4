package writer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/trainbuild/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultDialTimeout bounds the wait for the socket.io handshake.
const DefaultDialTimeout = 15 * time.Second

// SocketIOOptions describes the socket.io endpoint diagnostics are streamed to.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// SocketIOSink emits diagnostic events to a socket.io namespace.
type SocketIOSink struct {
	client *socket.Socket
	event  string
}

// DialSocketIO connects to the endpoint and waits for the connection to be
// acknowledged.
func DialSocketIO(ctx context.Context, opts SocketIOOptions) (*SocketIOSink, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid socket.io URL %q: scheme and host are required", opts.URL)
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}
	event := opts.Event
	if event == "" {
		event = "log"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Diagnostic stream connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIOSink{client: io, event: event}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Emit implements Sink.
func (s *SocketIOSink) Emit(payload map[string]any) error {
	if !s.client.Connected() {
		return errors.New("socket.io client is not connected")
	}
	s.client.Emit(s.event, payload)
	return nil
}

// Close implements Sink.
func (s *SocketIOSink) Close() error {
	s.client.Disconnect()
	return nil
}
