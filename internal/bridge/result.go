// ABOUTME: Callback-to-deferred adapter for backend async operations
// ABOUTME: Guarantees at-most-once settlement and hook-before-exposure ordering

package bridge

import (
	"context"
	"sync"

	"github.com/visitlink/chat-bridge/internal/chat"
)

// Result is the single settlement of one backend operation: pending until
// exactly one of the backend's callbacks fires, then resolved with a value
// or rejected with the backend's structured error. Duplicate callback
// invocations are ignored.
type Result[T any] struct {
	once sync.Once
	done chan struct{}

	value   T
	errResp *chat.ErrorResponse
}

// Invoke starts a backend operation and adapts its two callbacks into a
// Result. The start function receives the success and failure callbacks to
// hand to the backend. On success, hook runs before the result becomes
// observable, so dependent state (session flags) is updated before the host
// can issue a follow-up command. hook may be nil.
func Invoke[T any](hook func(T), start func(succeed func(T), fail func(*chat.ErrorResponse))) *Result[T] {
	r := &Result[T]{done: make(chan struct{})}

	succeed := func(v T) {
		r.once.Do(func() {
			if hook != nil {
				hook(v)
			}
			r.value = v
			close(r.done)
		})
	}
	fail := func(errResp *chat.ErrorResponse) {
		r.once.Do(func() {
			r.errResp = errResp
			close(r.done)
		})
	}

	start(succeed, fail)
	return r
}

// Resolved returns an already-settled successful Result.
func Resolved[T any](v T) *Result[T] {
	r := &Result[T]{done: make(chan struct{}), value: v}
	close(r.done)
	return r
}

// Rejected returns an already-settled failed Result.
func Rejected[T any](errResp *chat.ErrorResponse) *Result[T] {
	r := &Result[T]{done: make(chan struct{}), errResp: errResp}
	close(r.done)
	return r
}

// Done is closed once the result has settled.
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Await blocks until the result settles or ctx is cancelled. On rejection
// the returned error is the backend's *chat.ErrorResponse.
func (r *Result[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		if r.errResp != nil {
			var zero T
			return zero, r.errResp
		}
		return r.value, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
