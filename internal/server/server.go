// ABOUTME: HTTP server exposing the gateway command surface to host apps
// ABOUTME: chi router with optional JWT auth, SSE and websocket event feeds

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/visitlink/chat-bridge/internal/auth"
	"github.com/visitlink/chat-bridge/internal/events"
	"github.com/visitlink/chat-bridge/internal/gateway"
	"github.com/visitlink/chat-bridge/internal/store"
)

// defaultCommandTimeout bounds how long a dispatched command waits for the
// backend to settle.
const defaultCommandTimeout = 15 * time.Second

// Server wires the gateway, the command ledger, and the event broadcaster
// behind an HTTP surface.
type Server struct {
	gateway     *gateway.Gateway
	ledger      store.Store
	broadcaster *events.Broadcaster
	verifier    auth.TokenVerifier
	logger      *slog.Logger

	httpServer *http.Server
}

// Options configures a Server. Verifier and Ledger may be nil; a nil
// Verifier disables authentication and a nil Ledger disables the audit
// trail.
type Options struct {
	Addr        string
	Gateway     *gateway.Gateway
	Ledger      store.Store
	Broadcaster *events.Broadcaster
	Verifier    auth.TokenVerifier
	Logger      *slog.Logger
}

// New creates a Server from the given options.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		gateway:     opts.Gateway,
		ledger:      opts.Ledger,
		broadcaster: opts.Broadcaster,
		verifier:    opts.Verifier,
		logger:      logger.With("component", "server"),
	}
	s.httpServer = &http.Server{
		Addr:    opts.Addr,
		Handler: s.Router(),
	}
	return s
}

// Router builds the chi router for the full API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.verifier != nil {
			r.Use(auth.HTTPAuthMiddleware(s.verifier))
		}
		r.Post("/commands/{name}", s.handleCommand)
		r.Get("/events", s.handleEventsSSE)
		r.Get("/events/ws", s.handleEventsWS)
		r.Get("/ledger", s.handleLedger)
	})

	return r
}

// Start begins serving and blocks until the context is cancelled or the
// listener fails, then drains with the given grace period.
func (s *Server) Start(ctx context.Context, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleReady reports readiness: the backend session must be initialized
// before gated commands can succeed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.gateway.IsAccountInitialized() {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "waiting",
			"reason": "backend session not initialized",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"commands": []any{}})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.sendJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := s.ledger.RecentCommands(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read ledger", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]map[string]any, len(records))
	for i, rec := range records {
		out[i] = map[string]any{
			"id":         rec.ID,
			"operation":  rec.Operation,
			"status":     string(rec.Status),
			"detail":     rec.Detail,
			"subject":    rec.Subject,
			"created_at": rec.CreatedAt.Format(time.RFC3339),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"commands": out})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write JSON response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
