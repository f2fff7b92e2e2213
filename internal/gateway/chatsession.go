// ABOUTME: Chat session gateway: departments, chat lifecycle, rating, offline form
// ABOUTME: sendOfflineForm checks its preconditions in a fixed, host-visible order

package gateway

import (
	"github.com/visitlink/chat-bridge/internal/adapter"
	"github.com/visitlink/chat-bridge/internal/bridge"
	"github.com/visitlink/chat-bridge/internal/chat"
	"github.com/visitlink/chat-bridge/internal/observe"
)

// departmentGate applies the shared preconditions for department changes:
// visitor identity exists and a chat is in progress.
func (g *Gateway) departmentGate() error {
	if !g.gate.Flags().VisitorInfoSet {
		return reject(msgVisitorInfoNotProvided)
	}
	if !g.chats.ChatState().IsChatting {
		return reject(msgNotChatting)
	}
	return nil
}

// SetDepartmentByName assigns the chat to the named department.
func (g *Gateway) SetDepartmentByName(name string) (*bridge.Result[string], error) {
	if err := g.departmentGate(); err != nil {
		return nil, err
	}
	return ackInvoke(func() { g.gate.SetDepartmentSet(true) }, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.SetDepartment(name, success, failure)
	}), nil
}

// SetDepartmentByID assigns the chat to the department with the given
// numeric identifier. Same postcondition as SetDepartmentByName.
func (g *Gateway) SetDepartmentByID(id int64) (*bridge.Result[string], error) {
	if err := g.departmentGate(); err != nil {
		return nil, err
	}
	return ackInvoke(func() { g.gate.SetDepartmentSet(true) }, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.SetDepartmentID(id, success, failure)
	}), nil
}

// IsDepartmentSet reports whether a department assignment has been
// confirmed.
func (g *Gateway) IsDepartmentSet() bool {
	return g.gate.Flags().DepartmentSet
}

// ClearDepartment removes the department assignment.
func (g *Gateway) ClearDepartment() (*bridge.Result[string], error) {
	if err := g.departmentGate(); err != nil {
		return nil, err
	}
	return ackInvoke(func() { g.gate.SetDepartmentSet(false) }, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.ClearDepartment(success, failure)
	}), nil
}

// SendRequestChat asks the backend to start a chat. Fire and forget; the
// backend drives the session status from here.
func (g *Gateway) SendRequestChat() string {
	g.chats.RequestChat()
	g.gate.MarkSessionStarted()
	return Acknowledged
}

// EndChat ends the current chat.
func (g *Gateway) EndChat() *bridge.Result[string] {
	return ackInvoke(nil, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.EndChat(success, failure)
	})
}

// ratingFromString maps the host's rating string to the backend's
// two-valued rating. Only the exact literals "good" and "GOOD" count as
// good; everything else, mixed case included, is bad.
func ratingFromString(s string) chat.ChatRating {
	if s == "good" || s == "GOOD" {
		return chat.RatingGood
	}
	return chat.RatingBad
}

// SendChatRating rates the current chat. A confirmed rating also drops the
// department assignment.
func (g *Gateway) SendChatRating(rating string) *bridge.Result[string] {
	return ackInvoke(func() { g.gate.SetDepartmentSet(false) }, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.SendChatRating(ratingFromString(rating), success, failure)
	})
}

// SendChatComment attaches a comment to the current chat.
func (g *Gateway) SendChatComment(comment string) *bridge.Result[string] {
	return ackInvoke(nil, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.SendChatComment(comment, success, failure)
	})
}

// SendEmailTranscript asks the backend to email the transcript.
func (g *Gateway) SendEmailTranscript(email string) *bridge.Result[string] {
	return ackInvoke(nil, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.SendEmailTranscript(email, success, failure)
	})
}

// SendOfflineForm submits an offline form. The preconditions are checked
// in a fixed order — department offline, account offline, visitor info,
// department set — and the first failure is the one reported; each yields
// a distinct diagnostic.
func (g *Gateway) SendOfflineForm(message string) (*bridge.Result[string], error) {
	department := g.chats.ChatState().Department
	if department == nil || department.Status != chat.StatusOffline {
		return nil, reject(msgDepartmentOnline)
	}
	if !g.IsAccountOffline() {
		return nil, reject(msgAccountOnline)
	}
	if !g.gate.Flags().VisitorInfoSet {
		return nil, reject(msgSetVisitorInfoFirst)
	}
	if !g.gate.Flags().DepartmentSet {
		return nil, reject(msgSetDepartmentFirst)
	}

	form := chat.OfflineForm{Message: message, DepartmentID: department.ID}
	return ackInvoke(nil, func(success func(), failure func(*chat.ErrorResponse)) {
		g.chats.SendOfflineForm(form, success, failure)
	}), nil
}

// GetChatState returns the current chat snapshot.
func (g *Gateway) GetChatState() map[string]any {
	return adapter.ChatStateToMap(g.chats.ChatState())
}

// GetChatID returns the current chat's identifier.
func (g *Gateway) GetChatID() string {
	return g.chats.ChatState().ChatID
}

// GetAgents returns the agents in the current chat.
func (g *Gateway) GetAgents() []map[string]any {
	state := g.chats.ChatState()
	agents := make([]map[string]any, len(state.Agents))
	for i, a := range state.Agents {
		agents[i] = adapter.AgentToMap(a)
	}
	return agents
}

// GetChatLogs returns the current chat transcript.
func (g *Gateway) GetChatLogs() []map[string]any {
	state := g.chats.ChatState()
	logs := make([]map[string]any, len(state.ChatLogs))
	for i, l := range state.ChatLogs {
		logs[i] = adapter.ChatLogToMap(l)
	}
	return logs
}

// GetChatSessionStatus returns the backend-driven session status.
func (g *Gateway) GetChatSessionStatus() string {
	return string(g.chats.ChatState().ChatSessionStatus)
}

// IsChatting reports whether a chat is in progress.
func (g *Gateway) IsChatting() bool {
	return g.chats.ChatState().IsChatting
}

// GetQueuePosition returns the visitor's place in the queue.
func (g *Gateway) GetQueuePosition() int {
	return g.chats.ChatState().QueuePosition
}

// GetChatComment returns the comment on the current chat.
func (g *Gateway) GetChatComment() string {
	return g.chats.ChatState().ChatComment
}

// GetChatRating returns the rating on the current chat.
func (g *Gateway) GetChatRating() string {
	return string(g.chats.ChatState().ChatRating)
}

// GetDepartment returns the chat's assigned department, if any.
func (g *Gateway) GetDepartment() (map[string]any, bool) {
	department := g.chats.ChatState().Department
	if department == nil {
		return nil, false
	}
	return adapter.DepartmentToMap(*department), true
}

// IsDepartmentOffline reports whether the assigned department is offline.
// No assignment counts as not offline.
func (g *Gateway) IsDepartmentOffline() bool {
	department := g.chats.ChatState().Department
	return department != nil && department.Status == chat.StatusOffline
}

// ObserveChatState opens a live subscription to chat state changes,
// emitted as "ObserveChatState" events.
func (g *Gateway) ObserveChatState() *observe.Scope {
	return g.scopes.Subscribe(observe.StreamChatState, func(emit func(map[string]any)) func() {
		return g.chats.ObserveChatState(func(st chat.ChatState) {
			emit(adapter.ChatStateToMap(st))
		})
	})
}

// CancelObserveChatState cancels every live chat state subscription.
func (g *Gateway) CancelObserveChatState() string {
	g.scopes.CancelAll(observe.StreamChatState)
	return Acknowledged
}
