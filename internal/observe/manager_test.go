// ABOUTME: Tests for observation scope lifecycle and ordering guarantees
// ABOUTME: Covers cancel semantics, duplicate scopes, and emission order

package observe

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects emitted events for assertions.
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

func (s *recordingSink) snapshot() ([]string, []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]string, len(s.events))
	copy(events, s.events)
	loads := make([]map[string]any, len(s.loads))
	copy(loads, s.loads)
	return events, loads
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

// fakeStream simulates a backend observable.
type fakeStream struct {
	mu        sync.Mutex
	observers []func(map[string]any)
}

func (f *fakeStream) register(emit func(map[string]any)) (stop func()) {
	f.mu.Lock()
	idx := len(f.observers)
	f.observers = append(f.observers, emit)
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.observers[idx] = nil
		f.mu.Unlock()
	}
}

func (f *fakeStream) push(payload map[string]any) {
	f.mu.Lock()
	observers := make([]func(map[string]any), len(f.observers))
	copy(observers, f.observers)
	f.mu.Unlock()
	for _, fn := range observers {
		if fn != nil {
			fn(payload)
		}
	}
}

func TestManager_ForwardsNamedEvents(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	stream := &fakeStream{}

	m.Subscribe(StreamChatState, stream.register)
	stream.push(map[string]any{"isChatting": true})

	waitFor(t, func() bool { return sink.count() == 1 })
	events, loads := sink.snapshot()
	assert.Equal(t, "ObserveChatState", events[0])
	assert.Equal(t, true, loads[0]["isChatting"])
}

func TestManager_EmissionOrderPreserved(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	stream := &fakeStream{}

	m.Subscribe(StreamAccountState, stream.register)
	for i := 0; i < 20; i++ {
		stream.push(map[string]any{"seq": i})
	}

	waitFor(t, func() bool { return sink.count() == 20 })
	_, loads := sink.snapshot()
	for i, payload := range loads {
		assert.Equal(t, i, payload["seq"], "emission %d out of order", i)
	}
}

func TestScope_CancelStopsNewEmissions(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	stream := &fakeStream{}

	scope := m.Subscribe(StreamChatState, stream.register)
	stream.push(map[string]any{"n": 1})
	waitFor(t, func() bool { return sink.count() == 1 })

	scope.Cancel()

	// Everything pushed strictly after Cancel returns must not arrive.
	for i := 0; i < 5; i++ {
		stream.push(map[string]any{"late": true})
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, 0, m.ActiveCount(StreamChatState))
}

func TestScope_CancelIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	stream := &fakeStream{}

	scope := m.Subscribe(StreamChatState, stream.register)
	scope.Cancel()
	scope.Cancel()

	assert.Equal(t, 0, m.ActiveCount(StreamChatState))
}

func TestManager_DuplicateScopesEmitPerScope(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	stream := &fakeStream{}

	first := m.Subscribe(StreamChatState, stream.register)
	second := m.Subscribe(StreamChatState, stream.register)
	require.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 2, m.ActiveCount(StreamChatState))

	stream.push(map[string]any{"n": 1})
	waitFor(t, func() bool { return sink.count() == 2 })

	// Cancelling one scope halves the fan-out.
	first.Cancel()
	stream.push(map[string]any{"n": 2})
	waitFor(t, func() bool { return sink.count() == 3 })
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 3, sink.count())
}

func TestManager_CancelAll(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	stream := &fakeStream{}

	m.Subscribe(StreamAccountState, stream.register)
	m.Subscribe(StreamAccountState, stream.register)
	m.Subscribe(StreamChatState, stream.register)

	cancelled := m.CancelAll(StreamAccountState)
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, 0, m.ActiveCount(StreamAccountState))
	assert.Equal(t, 1, m.ActiveCount(StreamChatState))
}

func TestManager_KindsAreIsolated(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(sink, nil)
	defer m.Close()
	accountStream := &fakeStream{}
	chatStream := &fakeStream{}

	m.Subscribe(StreamAccountState, accountStream.register)
	m.Subscribe(StreamChatState, chatStream.register)

	accountStream.push(map[string]any{"status": "ONLINE"})
	waitFor(t, func() bool { return sink.count() == 1 })

	events, _ := sink.snapshot()
	assert.Equal(t, "ObserveAccountState", events[0])
}
