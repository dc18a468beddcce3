package events

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketConfig configures the socket.io reporting sink.
type SocketConfig struct {
	URL                string
	Namespace          string
	EventName          string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// SocketSink publishes step events to a socket.io reporting bus. Emission
// is fire-and-forget: the client buffers internally and delivery failures
// are ignored.
type SocketSink struct {
	io        *socket.Socket
	eventName string
	connected atomic.Bool
}

// NewSocketSink connects to the reporting bus. The initial connection is
// awaited so a misconfigured bus surfaces at startup instead of silently
// dropping a whole run.
func NewSocketSink(ctx context.Context, cfg SocketConfig) (*SocketSink, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event sink URL: %w", err)
	}

	eventName := cfg.EventName
	if eventName == "" {
		eventName = "step"
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification for event sink")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	s := &SocketSink{io: io, eventName: eventName}

	done := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		s.connected.Store(true)
		logger.Info("Event sink connected.", "namespace", cfg.Namespace, "sid", io.Id())
		select {
		case done <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("connect_error: %v", errs[0])
		}
		select {
		case done <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-done:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("event sink connection failed: %w", err)
		}
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("event sink connection timed out after %s", timeout)
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	}

	return s, nil
}

// Emit publishes one event. Panics from the client are swallowed; a
// reporting hiccup must never take the run down.
func (s *SocketSink) Emit(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Warn("Event sink emit panicked; event dropped.", "panic", r)
		}
	}()
	s.io.Emit(s.eventName, ev)
}

// Close disconnects from the bus.
func (s *SocketSink) Close() error {
	s.io.Disconnect()
	return nil
}
