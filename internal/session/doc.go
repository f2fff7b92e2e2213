// Package session owns the precondition flags shared by every gateway.
//
// The flags record what the host has successfully set up so far: backend
// initialized, visitor identified, account fetched, department assigned,
// chat requested. Gateways consult the gate before delegating a command
// and flip flags only from a confirmed settlement, so a failed backend
// call leaves the flags exactly as they were. The gate also caches the
// last fetched Account, which is the source for the synchronous account
// read operations.
package session
