// ABOUTME: Messaging gateway: direct pass-throughs with no added gating
// ABOUTME: Send, resend, delete-failed, and the typing indicator

package gateway

import "github.com/visitlink/chat-bridge/internal/adapter"

// SendMessage sends a message and returns the resulting transcript entry.
func (g *Gateway) SendMessage(message string) map[string]any {
	return adapter.ChatLogToMap(g.chats.SendMessage(message))
}

// ReSendMessage retries a failed transcript entry by ID.
func (g *Gateway) ReSendMessage(failedID string) (map[string]any, bool) {
	log, ok := g.chats.ResendFailedMessage(failedID)
	if !ok {
		return nil, false
	}
	return adapter.ChatLogToMap(log), true
}

// DeleteFailedMessage removes a failed transcript entry by ID.
func (g *Gateway) DeleteFailedMessage(failedID string) bool {
	return g.chats.DeleteFailedMessage(failedID)
}

// SetTyping updates the visitor's typing indicator.
func (g *Gateway) SetTyping(typing bool) {
	g.chats.SetTyping(typing)
}
