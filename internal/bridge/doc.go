// Package bridge converts the backend's two-callback idiom into deferred
// results.
//
// Every backend async operation accepts one success callback and one failure
// callback, fired at most once on a backend-managed goroutine. Invoke is the
// single place where that idiom is adapted: it supplies both callbacks and
// settles a Result on whichever fires first. A second invocation of either
// callback is ignored.
//
//	res := bridge.Invoke(func(struct{}) { gate.MarkVisitorInfoSet() },
//		func(succeed func(struct{}), fail func(*chat.ErrorResponse)) {
//			profile.SetVisitorInfo(info, func() { succeed(struct{}{}) }, fail)
//		})
//	value, err := res.Await(ctx)
//
// The settlement hook runs before Done is observable, so session state is
// current by the time any waiter sees the outcome. No retries happen here;
// a backend error is relayed as-is.
package bridge
