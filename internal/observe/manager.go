// ABOUTME: Observation scope lifecycle: subscribe, forward in order, cancel
// ABOUTME: Multiple scopes per stream kind are allowed with independent cancellation

package observe

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	// scopeBufferSize bounds how many emissions a scope may queue before
	// new ones are dropped for that scope.
	scopeBufferSize = 64
)

// StreamKind identifies one observable backend stream.
type StreamKind string

const (
	StreamAccountState StreamKind = "ObserveAccountState"
	StreamChatState    StreamKind = "ObserveChatState"
)

// Event returns the named event carried on the host event channel for this
// stream.
func (k StreamKind) Event() string {
	return string(k)
}

// Sink receives converted emissions as named events.
type Sink interface {
	Emit(event string, payload map[string]any)
}

// Scope is one live subscription. Created on Subscribe, it emits zero or
// more events and is terminal after Cancel.
type Scope struct {
	id        string
	kind      StreamKind
	mgr       *Manager
	stop      func()
	cancelled atomic.Bool
	queue     chan map[string]any
	done      chan struct{}
}

// ID returns the scope's handle identifier.
func (s *Scope) ID() string {
	return s.id
}

// Kind returns the stream this scope observes.
func (s *Scope) Kind() StreamKind {
	return s.kind
}

// Cancel deregisters the backend observer and stops forwarding. It returns
// immediately; an emission already queued may still be delivered, but no
// emission originating after Cancel returns will be.
func (s *Scope) Cancel() {
	if !s.cancelled.CompareAndSwap(false, true) {
		return
	}
	s.stop()
	close(s.done)
	s.mgr.remove(s)
}

// emit queues one converted payload for forwarding. Emissions after
// cancellation are dropped, as are emissions beyond the queue bound.
func (s *Scope) emit(payload map[string]any) {
	if s.cancelled.Load() {
		return
	}
	select {
	case s.queue <- payload:
	default:
		s.mgr.logger.Debug("dropped emission for slow scope",
			"kind", s.kind,
			"scope_id", s.id)
	}
}

// forward drains the queue to the sink, preserving emission order, until
// the scope is cancelled. Payloads still queued at cancellation are not
// guaranteed delivery.
func (s *Scope) forward(sink Sink) {
	for {
		select {
		case payload := <-s.queue:
			sink.Emit(s.kind.Event(), payload)
		case <-s.done:
			return
		}
	}
}

// Manager owns the live scopes for every stream kind. Re-subscribing to a
// kind without cancelling the prior scope is legal and yields one emission
// per scope per backend change; deduplication is the caller's concern.
type Manager struct {
	mu     sync.Mutex
	scopes map[StreamKind]map[string]*Scope
	sink   Sink
	logger *slog.Logger
}

// NewManager creates a manager forwarding to sink. Pass nil logger for the
// default.
func NewManager(sink Sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scopes: make(map[StreamKind]map[string]*Scope),
		sink:   sink,
		logger: logger.With("component", "observe"),
	}
}

// Subscribe creates a scope for kind. register is called with the scope's
// emit function and must register a backend observer, returning its stop
// function.
func (m *Manager) Subscribe(kind StreamKind, register func(emit func(map[string]any)) (stop func())) *Scope {
	s := &Scope{
		id:    uuid.New().String(),
		kind:  kind,
		mgr:   m,
		queue: make(chan map[string]any, scopeBufferSize),
		done:  make(chan struct{}),
	}
	s.stop = register(s.emit)

	m.mu.Lock()
	if _, ok := m.scopes[kind]; !ok {
		m.scopes[kind] = make(map[string]*Scope)
	}
	m.scopes[kind][s.id] = s
	m.mu.Unlock()

	go s.forward(m.sink)

	m.logger.Debug("scope created", "kind", kind, "scope_id", s.id)
	return s
}

// CancelAll cancels every active scope for kind. Returns how many were
// cancelled.
func (m *Manager) CancelAll(kind StreamKind) int {
	m.mu.Lock()
	active := make([]*Scope, 0, len(m.scopes[kind]))
	for _, s := range m.scopes[kind] {
		active = append(active, s)
	}
	m.mu.Unlock()

	for _, s := range active {
		s.Cancel()
	}
	return len(active)
}

// ActiveCount returns the number of live scopes for kind.
func (m *Manager) ActiveCount(kind StreamKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes[kind])
}

// Close cancels every scope across all kinds.
func (m *Manager) Close() {
	m.mu.Lock()
	var active []*Scope
	for _, byID := range m.scopes {
		for _, s := range byID {
			active = append(active, s)
		}
	}
	m.mu.Unlock()

	for _, s := range active {
		s.Cancel()
	}
	m.logger.Debug("observation manager closed")
}

func (m *Manager) remove(s *Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.scopes[s.kind]
	if !ok {
		return
	}
	delete(byID, s.id)
	if len(byID) == 0 {
		delete(m.scopes, s.kind)
	}
	m.logger.Debug("scope cancelled", "kind", s.kind, "scope_id", s.id)
}
