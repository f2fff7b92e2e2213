// ABOUTME: Live event feeds: SSE and websocket bridges over the broadcaster
// ABOUTME: Observation scope emissions reach hosts through these endpoints

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/coder/websocket"

	"github.com/visitlink/chat-bridge/internal/events"
)

// handleEventsSSE streams broadcast events as Server-Sent Events until the
// client disconnects.
func (s *Server) handleEventsSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ch, subID := s.broadcaster.Subscribe(r.Context())
	s.logger.Debug("SSE subscriber connected", "sub_id", subID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.writeSSEEvent(w, "connected", map[string]string{"subscription_id": subID})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.writeSSEEvent(w, event.Name, event.Payload)
			flusher.Flush()
		}
	}
}

func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}

// handleEventsWS streams broadcast events over a websocket, one JSON
// event per text message.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Error("failed to accept websocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "feed closed"); closeErr != nil {
			s.logger.Debug("failed to close websocket", "error", closeErr)
		}
	}()

	ch, subID := s.broadcaster.Subscribe(r.Context())
	s.logger.Debug("websocket subscriber connected", "sub_id", subID)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := s.writeWSEvent(r.Context(), ws, event); err != nil {
				s.logger.Debug("websocket write failed", "error", err, "sub_id", subID)
				return
			}
		}
	}
}

func (s *Server) writeWSEvent(ctx context.Context, ws *websocket.Conn, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
