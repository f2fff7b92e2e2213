// ABOUTME: Bidirectional converters between backend value objects and host maps
// ABOUTME: Host representation is maps, arrays, and primitives only

package adapter

import (
	"time"

	"github.com/visitlink/chat-bridge/internal/chat"
)

// DepartmentToMap converts a department to its host representation.
func DepartmentToMap(d chat.Department) map[string]any {
	return map[string]any{
		"id":     d.ID,
		"name":   d.Name,
		"status": string(d.Status),
	}
}

// DepartmentFromMap rebuilds a department from its host representation.
func DepartmentFromMap(m map[string]any) chat.Department {
	return chat.Department{
		ID:     toInt64(m["id"]),
		Name:   toString(m["name"]),
		Status: chat.Status(toString(m["status"])),
	}
}

// AccountToMap converts an account to its host representation. Department
// order is preserved.
func AccountToMap(a chat.Account) map[string]any {
	departments := make([]any, len(a.Departments))
	for i, d := range a.Departments {
		departments[i] = DepartmentToMap(d)
	}
	return map[string]any{
		"status":      string(a.Status),
		"departments": departments,
	}
}

// AccountFromMap rebuilds an account from its host representation.
func AccountFromMap(m map[string]any) chat.Account {
	a := chat.Account{Status: chat.Status(toString(m["status"]))}
	raw, _ := m["departments"].([]any)
	for _, entry := range raw {
		if dm, ok := entry.(map[string]any); ok {
			a.Departments = append(a.Departments, DepartmentFromMap(dm))
		}
	}
	return a
}

// VisitorInfoToMap converts a visitor identity to its host representation.
func VisitorInfoToMap(v chat.VisitorInfo) map[string]any {
	return map[string]any{
		"name":        v.Name,
		"email":       v.Email,
		"phoneNumber": v.PhoneNumber,
	}
}

// AgentToMap converts an agent to its host representation.
func AgentToMap(a chat.AgentInfo) map[string]any {
	return map[string]any{
		"nick":        a.Nick,
		"displayName": a.DisplayName,
		"isTyping":    a.IsTyping,
	}
}

// ChatLogToMap converts a chat log entry to its host representation.
func ChatLogToMap(l chat.ChatLog) map[string]any {
	return map[string]any{
		"id":        l.ID,
		"nick":      l.Nick,
		"message":   l.Message,
		"failed":    l.Failed,
		"timestamp": l.Timestamp.UTC().Format(time.RFC3339),
	}
}

// ChatStateToMap converts a chat state snapshot to its host representation.
func ChatStateToMap(st chat.ChatState) map[string]any {
	agents := make([]any, len(st.Agents))
	for i, a := range st.Agents {
		agents[i] = AgentToMap(a)
	}
	logs := make([]any, len(st.ChatLogs))
	for i, l := range st.ChatLogs {
		logs[i] = ChatLogToMap(l)
	}
	m := map[string]any{
		"isChatting":        st.IsChatting,
		"chatId":            st.ChatID,
		"agents":            agents,
		"chatLogs":          logs,
		"chatSessionStatus": string(st.ChatSessionStatus),
		"queuePosition":     st.QueuePosition,
		"chatComment":       st.ChatComment,
		"chatRating":        string(st.ChatRating),
	}
	if st.Department != nil {
		m["department"] = DepartmentToMap(*st.Department)
	}
	return m
}

// ErrorToMap converts a backend error to the generic host error shape.
func ErrorToMap(e *chat.ErrorResponse) map[string]any {
	m := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		m["details"] = e.Details
	}
	return m
}

// toString tolerates absent or mistyped host values.
func toString(v any) string {
	s, _ := v.(string)
	return s
}

// toInt64 accepts the numeric types a host payload may carry. JSON decoding
// yields float64.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
