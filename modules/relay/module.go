// Package relay provides the event relay agent. It forwards agent runtime
// events to an external socket.io endpoint so dashboards can follow what
// the agent fleet is doing. The factory only configures the transport;
// nothing connects until the hosting application calls Connect.
package relay

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/agentgrid/internal/ctxlog"
	"github.com/vk/agentgrid/internal/registry"
)

// defaultEndpoint is used when RELAY_URL is not set.
const defaultEndpoint = "http://localhost:3000"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register announces the package's factories to the registry.
func (m *Module) Register(r *registry.Registry) error {
	_, err := registry.Mark(r, NewRelayAgent,
		registry.WithTags("relay", "events"),
		registry.WithPriority(60),
		registry.WithAttribute("transport", "websocket"),
	)
	return err
}

// Agent relays events to a socket.io endpoint. It is constructed
// disconnected and connects on demand.
type Agent struct {
	Name      string
	Endpoint  string
	Namespace string

	manager *socket.Manager
	io      *socket.Socket
}

// NewRelayAgent builds the relay agent from its environment. The endpoint
// URL is validated here so a misconfigured deployment fails at discovery
// time, not on first use.
func NewRelayAgent() (any, error) {
	endpoint := os.Getenv("RELAY_URL")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid relay endpoint %q: %w", endpoint, err)
	}

	return &Agent{
		Name:      "Relay Agent",
		Endpoint:  endpoint,
		Namespace: os.Getenv("RELAY_NAMESPACE"),
	}, nil
}

// Connect dials the endpoint over websocket and blocks until the socket is
// connected, the handshake fails, or the context ends.
func (a *Agent) Connect(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("agent", a.Name, "endpoint", a.Endpoint)

	parsed, err := url.Parse(a.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse relay endpoint: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)

	opts := socket.DefaultOptions()
	opts.SetPath(parsed.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	a.manager = socket.NewManager(baseURL, opts)
	a.io = a.manager.Socket(a.Namespace, opts)

	done := make(chan error, 1)
	a.io.On(types.EventName("connect"), func(...any) {
		logger.Info("Relay connected.", "sid", a.io.Id())
		done <- nil
	})
	a.io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				done <- err
				return
			}
		}
		done <- fmt.Errorf("relay connection failed")
	})

	a.io.Connect()

	select {
	case <-ctx.Done():
		a.Close()
		return ctx.Err()
	case err := <-done:
		if err != nil {
			a.Close()
		}
		return err
	}
}

// Emit forwards one event. A relay that was never connected drops events
// silently; the relay is a best-effort observer, not a delivery guarantee.
func (a *Agent) Emit(event string, payload map[string]any) {
	if a.io == nil {
		return
	}
	a.io.Emit(event, payload)
}

// Close disconnects the underlying socket, if any.
func (a *Agent) Close() {
	if a.io != nil {
		a.io.Disconnect()
		a.io = nil
	}
}
