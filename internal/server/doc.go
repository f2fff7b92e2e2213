// Package server exposes the gateway to host applications over HTTP.
//
// Commands are dispatched via POST /api/commands/{name} with a JSON
// argument object. A resolved command answers 200 with
// {"status":"resolved","value":...}; a gating rejection or backend error
// answers 400 with {"code":"400","message":...}. Live observation events
// flow through GET /api/events (SSE) and GET /api/events/ws (websocket),
// and the command ledger is readable at GET /api/ledger.
//
// When a JWT secret is configured all /api routes require a bearer token.
package server
