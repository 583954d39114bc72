package progress

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event is the socket.io event name progress updates are emitted under.
const Event = "progress"

// ConnectTimeout bounds how long Dial waits for the connection.
const ConnectTimeout = 15 * time.Second

// SocketIOOptions configures the socket.io sink.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// SocketIO emits progress updates to a socket.io server.
type SocketIO struct {
	io     *socket.Socket
	runID  string
	logger *slog.Logger
}

// Dial connects to the server and returns a ready sink.
func Dial(ctx context.Context, o SocketIOOptions) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", o.URL)
	logger.Info("Connecting progress sink...")

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid progress URL %q", o.URL)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, ok := errs[0].(error)
		if !ok {
			err = fmt.Errorf("%v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io, runID: uuid.New().String(), logger: logger}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", ConnectTimeout)
	}
}

// Report emits one progress event.
func (s *SocketIO) Report(nodeID string, progress float64) {
	payload := map[string]any{"runId": s.runID, "nodeId": nodeID, "progress": progress}
	if err := s.io.Emit(Event, payload); err != nil {
		s.logger.Warn("Failed to emit progress.", "node_id", nodeID, "error", err)
	}
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.logger.Debug("Disconnecting progress sink.", "sid", s.io.Id())
	s.io.Disconnect()
	return nil
}
