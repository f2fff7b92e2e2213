// Package chat defines the boundary to the remote customer-chat backend.
//
// # Overview
//
// The chat package specifies the backend SDK surface this layer mediates:
// three providers (account, profile, chat), the domain value objects they
// exchange, and the backend's two idioms for delivering results:
//
//   - Single-shot callbacks: every async operation takes exactly one
//     success callback and one failure callback. The backend invokes one of
//     them, at most once, on a backend-managed goroutine.
//   - Live observation: ObserveAccount and ObserveChatState register a
//     continuous observer and return a stop function.
//
// The actual network transport behind these interfaces is an external
// collaborator and not implemented here. MemoryBackend provides a complete
// in-process implementation for tests and local serving.
//
// # Providers
//
//	backend.Init("account-key", "app-id")
//	accounts := backend.AccountProvider()
//	accounts.GetAccount(
//		func(a chat.Account) { ... },
//		func(err *chat.ErrorResponse) { ... },
//	)
//
// Callers should not assume which goroutine invokes a callback.
package chat
