// Package observe turns continuous backend state-change notifications into
// cancellable subscriptions feeding the host event channel.
//
// A Scope represents one live subscription: created on Subscribe, it emits
// zero or more named events, and Cancel is terminal. Emissions for a scope
// are forwarded asynchronously in emission order; cancellation only
// guarantees that nothing emitted after Cancel returns is delivered —
// an emission already in flight may still arrive.
//
// The manager tracks active scopes per stream kind. More than one scope per
// kind is permitted: each backend change then produces one event per scope,
// which is the caller's choice to make.
package observe
