// ABOUTME: Gateway root wiring the backend providers, session gate, and scopes
// ABOUTME: Each command gates, delegates through the callback bridge, then settles

package gateway

import (
	"log/slog"

	"github.com/visitlink/chat-bridge/internal/bridge"
	"github.com/visitlink/chat-bridge/internal/chat"
	"github.com/visitlink/chat-bridge/internal/observe"
	"github.com/visitlink/chat-bridge/internal/session"
)

// Acknowledged is the host-visible acknowledgment value for void operations.
const Acknowledged = "Successful"

// Gateway mediates the backend chat SDK for one host session. It owns the
// session gate and the observation scopes; all host commands go through it.
type Gateway struct {
	backend  chat.Backend
	accounts chat.AccountProvider
	profile  chat.ProfileProvider
	chats    chat.ChatProvider

	gate   *session.Gate
	scopes *observe.Manager
	logger *slog.Logger
}

// New creates a Gateway over the given backend, forwarding observation
// events to sink. Pass nil logger for the default.
func New(backend chat.Backend, sink observe.Sink, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gateway")
	return &Gateway{
		backend:  backend,
		accounts: backend.AccountProvider(),
		profile:  backend.ProfileProvider(),
		chats:    backend.ChatProvider(),
		gate:     session.New(),
		scopes:   observe.NewManager(sink, logger),
		logger:   logger,
	}
}

// Gate exposes the session gate for introspection.
func (g *Gateway) Gate() *session.Gate {
	return g.gate
}

// Close cancels all live observation scopes.
func (g *Gateway) Close() {
	g.scopes.Close()
}

// ackInvoke adapts a void backend operation into an acknowledgment result.
// hook runs on success before the result is observable; it may be nil.
func ackInvoke(hook func(), start func(success func(), failure func(*chat.ErrorResponse))) *bridge.Result[string] {
	var h func(string)
	if hook != nil {
		h = func(string) { hook() }
	}
	return bridge.Invoke(h, func(succeed func(string), fail func(*chat.ErrorResponse)) {
		start(func() { succeed(Acknowledged) }, fail)
	})
}
