// ABOUTME: Visitor profile gateway: identity submission and visitor tags
// ABOUTME: Phone numbers are normalized by stripping a leading plus sign

package gateway

import (
	"strings"

	"github.com/visitlink/chat-bridge/internal/adapter"
	"github.com/visitlink/chat-bridge/internal/bridge"
	"github.com/visitlink/chat-bridge/internal/chat"
)

// SetVisitorInfo submits the visitor identity to the backend. Requires an
// initialized account; flips the visitor-info flag only on confirmed
// success.
func (g *Gateway) SetVisitorInfo(input VisitorInfoInput) (*bridge.Result[string], error) {
	if !g.gate.Flags().AccountInitialized {
		return nil, reject(msgAccountNotInitialized)
	}

	info := chat.VisitorInfo{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: strings.TrimPrefix(input.PhoneNumber, "+"),
	}
	return ackInvoke(g.gate.MarkVisitorInfoSet, func(success func(), failure func(*chat.ErrorResponse)) {
		g.profile.SetVisitorInfo(info, success, failure)
	}), nil
}

// IsVisitorInfoSet reports whether a visitor identity has been accepted.
func (g *Gateway) IsVisitorInfoSet() bool {
	return g.gate.Flags().VisitorInfoSet
}

// GetVisitorInfo returns the identity last accepted by the backend.
func (g *Gateway) GetVisitorInfo() (map[string]any, error) {
	if !g.gate.Flags().VisitorInfoSet {
		return nil, reject(msgVisitorInfoNotProvided)
	}
	return adapter.VisitorInfoToMap(g.profile.VisitorInfo()), nil
}

// AddVisitorTags attaches tags to the visitor.
func (g *Gateway) AddVisitorTags(tags []string) (*bridge.Result[string], error) {
	if !g.gate.Flags().VisitorInfoSet {
		return nil, reject(msgVisitorInfoNotProvided)
	}
	return ackInvoke(nil, func(success func(), failure func(*chat.ErrorResponse)) {
		g.profile.AddVisitorTags(tags, success, failure)
	}), nil
}

// RemoveVisitorTags detaches tags from the visitor.
func (g *Gateway) RemoveVisitorTags(tags []string) (*bridge.Result[string], error) {
	if !g.gate.Flags().VisitorInfoSet {
		return nil, reject(msgVisitorInfoNotProvided)
	}
	return ackInvoke(nil, func(success func(), failure func(*chat.ErrorResponse)) {
		g.profile.RemoveVisitorTags(tags, success, failure)
	}), nil
}
