// ABOUTME: Tests for the callback-to-deferred adapter
// ABOUTME: Covers single settlement, duplicate callback suppression, hook ordering

package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlink/chat-bridge/internal/chat"
)

func TestInvoke_ResolvesWithValue(t *testing.T) {
	res := Invoke(nil, func(succeed func(string), fail func(*chat.ErrorResponse)) {
		succeed("Successful")
	})

	v, err := res.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Successful", v)
}

func TestInvoke_RejectsWithBackendError(t *testing.T) {
	errResp := &chat.ErrorResponse{Code: "500", Message: "backend exploded"}
	res := Invoke(nil, func(succeed func(string), fail func(*chat.ErrorResponse)) {
		fail(errResp)
	})

	_, err := res.Await(context.Background())
	require.Error(t, err)
	assert.Same(t, errResp, err)
}

func TestInvoke_SecondCallbackIgnored(t *testing.T) {
	res := Invoke(nil, func(succeed func(string), fail func(*chat.ErrorResponse)) {
		succeed("first")
		fail(&chat.ErrorResponse{Message: "late failure"})
		succeed("second")
	})

	v, err := res.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestInvoke_HookRunsBeforeExposure(t *testing.T) {
	var flag bool

	// Backend settles from its own goroutine, as the real SDK does.
	res := Invoke(func(string) {
		time.Sleep(10 * time.Millisecond)
		flag = true
	}, func(succeed func(string), fail func(*chat.ErrorResponse)) {
		go succeed("ok")
	})

	<-res.Done()
	assert.True(t, flag, "hook must complete before Done unblocks")
}

func TestInvoke_ConcurrentCallbacksSettleOnce(t *testing.T) {
	start := make(chan struct{})
	var hookCalls int

	res := Invoke(func(int) { hookCalls++ }, func(succeed func(int), fail func(*chat.ErrorResponse)) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				<-start
				if n%2 == 0 {
					succeed(n)
				} else {
					fail(&chat.ErrorResponse{Message: "race"})
				}
			}(i)
		}
		close(start)
		wg.Wait()
	})

	<-res.Done()
	assert.Equal(t, 1, hookCalls+boolToInt(res.errResp != nil), "exactly one settlement branch ran")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestAwait_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	res := Invoke(nil, func(succeed func(string), fail func(*chat.ErrorResponse)) {
		// Backend never settles.
	})

	cancel()
	_, err := res.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolvedAndRejected(t *testing.T) {
	v, err := Resolved("Successful").Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Successful", v)

	_, err = Rejected[string](&chat.ErrorResponse{Message: "nope"}).Await(context.Background())
	assert.EqualError(t, err, "nope")
}
