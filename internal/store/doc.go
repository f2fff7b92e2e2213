// Package store persists the outcome of every dispatched command: the
// operation name, whether it resolved, was rejected, or failed at the
// backend, and a short diagnostic. Chat content and visitor identity are
// never written; the backend remains the single source of truth for
// conversation state.
//
// The ledger exists for operational visibility. It answers "what did the
// host ask for and how did it go", which is the first question asked when
// a host integration misbehaves.
package store
