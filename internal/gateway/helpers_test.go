// ABOUTME: Shared test fixtures for gateway tests
// ABOUTME: Provides a wired gateway over a memory backend and a recording sink

package gateway

import (
	"context"
	"sync"
	"testing"

	"github.com/visitlink/chat-bridge/internal/chat"
)

// recordingSink captures events forwarded from observation scopes.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	loads  []map[string]any
}

func (s *recordingSink) Emit(event string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.loads = append(s.loads, payload)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newTestGateway(t *testing.T) (*Gateway, *chat.MemoryBackend, *recordingSink) {
	t.Helper()
	backend := chat.NewMemoryBackend()
	sink := &recordingSink{}
	g := New(backend, sink, nil)
	t.Cleanup(g.Close)
	return g, backend, sink
}

// initialized returns a gateway whose backend session is established.
func initialized(t *testing.T) (*Gateway, *chat.MemoryBackend, *recordingSink) {
	t.Helper()
	g, backend, sink := newTestGateway(t)
	if err := g.Initialize("acc-key", "app-id"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return g, backend, sink
}

// withVisitor returns an initialized gateway with visitor info accepted.
func withVisitor(t *testing.T) (*Gateway, *chat.MemoryBackend, *recordingSink) {
	t.Helper()
	g, backend, sink := initialized(t)
	res, err := g.SetVisitorInfo(VisitorInfoInput{Name: "A", Email: "a@x.com", PhoneNumber: "+1234567890"})
	if err != nil {
		t.Fatalf("set visitor info: %v", err)
	}
	if _, err := res.Await(context.Background()); err != nil {
		t.Fatalf("await visitor info: %v", err)
	}
	return g, backend, sink
}

func calledBackend(backend *chat.MemoryBackend, op string) bool {
	for _, call := range backend.Calls() {
		if call == op {
			return true
		}
	}
	return false
}
