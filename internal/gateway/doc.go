// Package gateway is the precondition-gated command surface over the chat
// backend.
//
// # Overview
//
// Four gateways share one session gate:
//
//   - Account: Initialize, fetch/cache the Account, departments, status
//   - Visitor profile: identity and tags
//   - Chat session: department assignment, lifecycle, rating, offline form
//   - Messaging: pass-through message operations
//
// Every gated command follows the same shape: validate input, consult the
// session gate, delegate through the callback bridge, and on confirmed
// success flip the corresponding flag before the result is observable.
//
// # Rejections
//
// A precondition failure is synchronous and local: no backend call is
// made, and the returned *Rejection carries code "400" with a diagnostic
// specific to the failed check ("visitor info is not provided", "fetch
// getAccount() first", ...). Backend errors are relayed as
// *chat.ErrorResponse without translation and never change gate state.
//
// # Observation
//
// ObserveChatState and ObserveAccountState open cancellable scopes whose
// emissions surface as named events ("ObserveChatState",
// "ObserveAccountState") on the host event channel.
package gateway
