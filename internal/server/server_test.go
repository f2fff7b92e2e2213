// ABOUTME: Tests for the HTTP server surface
// ABOUTME: Covers health, readiness, auth enforcement, and the ledger endpoint

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlink/chat-bridge/internal/auth"
	"github.com/visitlink/chat-bridge/internal/chat"
	"github.com/visitlink/chat-bridge/internal/events"
	"github.com/visitlink/chat-bridge/internal/gateway"
	"github.com/visitlink/chat-bridge/internal/store"
)

type testServer struct {
	server  *Server
	backend *chat.MemoryBackend
	ledger  store.Store
}

func newTestServer(t *testing.T, verifier auth.TokenVerifier) *testServer {
	t.Helper()

	backend := chat.NewMemoryBackend()
	broadcaster := events.NewBroadcaster(nil)
	t.Cleanup(broadcaster.Close)

	g := gateway.New(backend, broadcaster, nil)
	t.Cleanup(g.Close)

	ledger, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	s := New(Options{
		Addr:        ":0",
		Gateway:     g,
		Ledger:      ledger,
		Broadcaster: broadcaster,
		Verifier:    verifier,
	})
	return &testServer{server: s, backend: backend, ledger: ledger}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestReady(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/commands/init", `{"accountKey":"k","appID":"a"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeBody(t, rec)["status"])
}

func TestAuthEnforcement(t *testing.T) {
	v := auth.NewJWTVerifier([]byte("test-secret"))
	ts := newTestServer(t, v)

	// Health stays open.
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// API routes require a token.
	rec = ts.do(t, http.MethodPost, "/api/commands/isChatting", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := v.Generate("host-app", time.Hour)
	require.NoError(t, err)
	rec = ts.do(t, http.MethodPost, "/api/commands/isChatting", "", map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLedgerEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/commands/init", `{"accountKey":"k","appID":"a"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/commands/getVisitorInfo", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/ledger", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	commands, ok := body["commands"].([]any)
	require.True(t, ok)
	require.Len(t, commands, 2)

	ops := map[string]string{}
	for _, raw := range commands {
		entry := raw.(map[string]any)
		ops[entry["operation"].(string)] = entry["status"].(string)
	}
	assert.Equal(t, "resolved", ops["init"])
	assert.Equal(t, "rejected", ops["getVisitorInfo"])
}

func TestLedgerEndpoint_InvalidLimit(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/ledger?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
