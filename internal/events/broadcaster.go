// ABOUTME: In-memory fan-out of named host events to connected subscribers
// ABOUTME: Fire-and-forget: slow subscribers drop events rather than block emitters

package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// Event is one named notification on the host event channel, carrying the
// converted domain snapshot that produced it.
type Event struct {
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload"`
	Time    time.Time      `json:"time"`
}

// Broadcaster fans named events out to every subscribed host connection.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
	logger      *slog.Logger
	closed      bool
}

// NewBroadcaster creates a broadcaster. Pass nil logger for the default.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subscribers: make(map[string]chan Event),
		logger:      logger.With("component", "events"),
	}
}

// Subscribe registers a host connection. The subscription is cleaned up
// when ctx is cancelled; Unsubscribe may also be called directly.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.New().String()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = ch
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		<-ctx.Done()
		b.Unsubscribe(subID)
	}()

	return ch, subID
}

// Emit publishes a named event to all subscribers. Non-blocking: the event
// is dropped for subscribers whose channels are full.
func (b *Broadcaster) Emit(name string, payload map[string]any) {
	event := Event{Name: name, Payload: payload, Time: time.Now()}

	// Sends are non-blocking, so holding the read lock keeps Unsubscribe
	// from closing a channel mid-send without stalling emitters.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("dropped event for slow subscriber", "event", name)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// Close shuts down the broadcaster and closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for subID, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, subID)
	}
	b.logger.Debug("broadcaster closed")
}
