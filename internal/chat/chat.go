// ABOUTME: Backend SDK boundary: provider interfaces and domain value objects
// ABOUTME: Async operations take one success and one failure callback, fired at most once

package chat

import "time"

// Status is the online/offline state of an account or department.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
	StatusUnknown Status = "UNKNOWN"
)

// ChatRating is the visitor's two-valued rating of a chat.
type ChatRating string

const (
	RatingGood ChatRating = "GOOD"
	RatingBad  ChatRating = "BAD"
	RatingNone ChatRating = "NONE"
)

// SessionStatus is the backend-driven lifecycle of a chat session.
// This layer only reads it.
type SessionStatus string

const (
	SessionInitializing SessionStatus = "INITIALIZING"
	SessionConfiguring  SessionStatus = "CONFIGURING"
	SessionStarted      SessionStatus = "STARTED"
	SessionEnding       SessionStatus = "ENDING"
	SessionEnded        SessionStatus = "ENDED"
)

// ErrorResponse is the structured error delivered by a backend failure callback.
type ErrorResponse struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// Department is a routing target within the account.
type Department struct {
	ID     int64
	Name   string
	Status Status
}

// Account is the backend account snapshot, fetched on demand.
type Account struct {
	Status      Status
	Departments []Department
}

// VisitorInfo is the visitor identity submitted to the backend.
// Immutable once built; a new submission replaces the backend value.
type VisitorInfo struct {
	Name        string
	Email       string
	PhoneNumber string
}

// AgentInfo describes an agent participating in the current chat.
type AgentInfo struct {
	Nick        string
	DisplayName string
	IsTyping    bool
}

// ChatLog is a single entry in the chat transcript.
type ChatLog struct {
	ID        string
	Nick      string
	Message   string
	Failed    bool
	Timestamp time.Time
}

// ChatState is a transient snapshot of the current chat, read on demand
// from the backend and never cached by this layer.
type ChatState struct {
	IsChatting        bool
	ChatID            string
	Agents            []AgentInfo
	ChatLogs          []ChatLog
	ChatSessionStatus SessionStatus
	QueuePosition     int
	ChatComment       string
	ChatRating        ChatRating
	Department        *Department
}

// OfflineForm is submitted when the department and account are offline.
type OfflineForm struct {
	Message      string
	DepartmentID int64
}

// AccountProvider exposes the backend's account operations.
type AccountProvider interface {
	// GetAccount fetches the account; exactly one of the callbacks fires.
	GetAccount(success func(Account), failure func(*ErrorResponse))

	// ObserveAccount registers an observer for account changes and returns
	// a stop function that deregisters it.
	ObserveAccount(fn func(Account)) (stop func())
}

// ProfileProvider exposes the backend's visitor identity operations.
type ProfileProvider interface {
	SetVisitorInfo(info VisitorInfo, success func(), failure func(*ErrorResponse))

	// VisitorInfo returns the last identity accepted by the backend.
	VisitorInfo() VisitorInfo

	AddVisitorTags(tags []string, success func(), failure func(*ErrorResponse))
	RemoveVisitorTags(tags []string, success func(), failure func(*ErrorResponse))
}

// ChatProvider exposes the backend's chat session and messaging operations.
type ChatProvider interface {
	SetDepartment(name string, success func(), failure func(*ErrorResponse))
	SetDepartmentID(id int64, success func(), failure func(*ErrorResponse))
	ClearDepartment(success func(), failure func(*ErrorResponse))

	// RequestChat asks the backend to start a chat. Fire and forget.
	RequestChat()

	EndChat(success func(), failure func(*ErrorResponse))
	SendChatRating(rating ChatRating, success func(), failure func(*ErrorResponse))
	SendChatComment(comment string, success func(), failure func(*ErrorResponse))
	SendEmailTranscript(email string, success func(), failure func(*ErrorResponse))
	SendOfflineForm(form OfflineForm, success func(), failure func(*ErrorResponse))

	// Message operations are synchronous pass-throughs.
	SendMessage(message string) ChatLog
	ResendFailedMessage(id string) (ChatLog, bool)
	DeleteFailedMessage(id string) bool
	SetTyping(typing bool)

	// ChatState returns the current snapshot.
	ChatState() ChatState

	// ObserveChatState registers an observer for chat state changes and
	// returns a stop function that deregisters it.
	ObserveChatState(fn func(ChatState)) (stop func())
}

// Backend is the root of the backend SDK surface.
type Backend interface {
	// Init establishes the backend session for the given account key and
	// application ID. Must be called before the providers are used.
	Init(accountKey, appID string) error

	AccountProvider() AccountProvider
	ProfileProvider() ProfileProvider
	ChatProvider() ChatProvider
}
