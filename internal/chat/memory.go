// ABOUTME: In-memory Backend implementation for tests and local serving
// ABOUTME: Supports state pushes to observers, error injection, and call recording

package chat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotInitialized is returned by Init-dependent operations before Init.
var ErrNotInitialized = errors.New("backend not initialized")

// MemoryBackend is an in-process Backend. It implements all three provider
// interfaces itself and delivers callbacks synchronously, which keeps tests
// deterministic while preserving the at-most-once callback contract.
type MemoryBackend struct {
	mu sync.Mutex

	initialized bool
	accountKey  string
	appID       string

	account Account
	visitor VisitorInfo
	tags    []string
	state   ChatState

	accountObservers map[string]func(Account)
	chatObservers    map[string]func(ChatState)

	// failures maps an operation name to an error injected on its next call.
	failures map[string]*ErrorResponse

	// calls records every backend operation invoked, in order.
	calls []string
}

// NewMemoryBackend creates a MemoryBackend with an offline account and an
// idle chat state.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		account:          Account{Status: StatusOffline},
		state:            ChatState{ChatSessionStatus: SessionInitializing, ChatRating: RatingNone},
		accountObservers: make(map[string]func(Account)),
		chatObservers:    make(map[string]func(ChatState)),
		failures:         make(map[string]*ErrorResponse),
	}
}

// Init establishes the simulated session.
func (b *MemoryBackend) Init(accountKey, appID string) error {
	if accountKey == "" || appID == "" {
		return fmt.Errorf("init: account key and app ID are required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	b.accountKey = accountKey
	b.appID = appID
	b.calls = append(b.calls, "init")
	return nil
}

func (b *MemoryBackend) AccountProvider() AccountProvider { return b }
func (b *MemoryBackend) ProfileProvider() ProfileProvider { return b }
func (b *MemoryBackend) ChatProvider() ChatProvider       { return b }

// record appends the call and returns an injected failure, if any.
// Must be called with mu held.
func (b *MemoryBackend) record(op string) *ErrorResponse {
	b.calls = append(b.calls, op)
	if errResp, ok := b.failures[op]; ok {
		delete(b.failures, op)
		return errResp
	}
	return nil
}

// settle runs the standard call pattern for a void async operation:
// record, deliver injected failure or apply and succeed.
func (b *MemoryBackend) settle(op string, apply func(), success func(), failure func(*ErrorResponse)) {
	b.mu.Lock()
	errResp := b.record(op)
	if errResp == nil && apply != nil {
		apply()
	}
	b.mu.Unlock()

	if errResp != nil {
		failure(errResp)
		return
	}
	success()
}

// --- AccountProvider ---

func (b *MemoryBackend) GetAccount(success func(Account), failure func(*ErrorResponse)) {
	b.mu.Lock()
	errResp := b.record("getAccount")
	acct := b.account
	b.mu.Unlock()

	if errResp != nil {
		failure(errResp)
		return
	}
	success(acct)
}

func (b *MemoryBackend) ObserveAccount(fn func(Account)) (stop func()) {
	id := uuid.New().String()
	b.mu.Lock()
	b.accountObservers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.accountObservers, id)
		b.mu.Unlock()
	}
}

// --- ProfileProvider ---

func (b *MemoryBackend) SetVisitorInfo(info VisitorInfo, success func(), failure func(*ErrorResponse)) {
	b.settle("setVisitorInfo", func() { b.visitor = info }, success, failure)
}

func (b *MemoryBackend) VisitorInfo() VisitorInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.visitor
}

func (b *MemoryBackend) AddVisitorTags(tags []string, success func(), failure func(*ErrorResponse)) {
	b.settle("addVisitorTags", func() { b.tags = append(b.tags, tags...) }, success, failure)
}

func (b *MemoryBackend) RemoveVisitorTags(tags []string, success func(), failure func(*ErrorResponse)) {
	b.settle("removeVisitorTags", func() {
		kept := b.tags[:0]
		for _, existing := range b.tags {
			remove := false
			for _, t := range tags {
				if t == existing {
					remove = true
					break
				}
			}
			if !remove {
				kept = append(kept, existing)
			}
		}
		b.tags = kept
	}, success, failure)
}

// --- ChatProvider ---

func (b *MemoryBackend) SetDepartment(name string, success func(), failure func(*ErrorResponse)) {
	b.settle("setDepartment", func() { b.assignDepartmentLocked(func(d Department) bool { return d.Name == name }) }, success, failure)
}

func (b *MemoryBackend) SetDepartmentID(id int64, success func(), failure func(*ErrorResponse)) {
	b.settle("setDepartmentId", func() { b.assignDepartmentLocked(func(d Department) bool { return d.ID == id }) }, success, failure)
}

// assignDepartmentLocked points the chat state at the matching account
// department, if any. Must be called with mu held.
func (b *MemoryBackend) assignDepartmentLocked(match func(Department) bool) {
	for _, d := range b.account.Departments {
		if match(d) {
			dep := d
			b.state.Department = &dep
			return
		}
	}
}

func (b *MemoryBackend) ClearDepartment(success func(), failure func(*ErrorResponse)) {
	b.settle("clearDepartment", func() { b.state.Department = nil }, success, failure)
}

func (b *MemoryBackend) RequestChat() {
	b.mu.Lock()
	b.record("requestChat")
	b.state.ChatSessionStatus = SessionConfiguring
	b.mu.Unlock()
}

func (b *MemoryBackend) EndChat(success func(), failure func(*ErrorResponse)) {
	b.settle("endChat", func() {
		b.state.IsChatting = false
		b.state.ChatSessionStatus = SessionEnded
	}, success, failure)
}

func (b *MemoryBackend) SendChatRating(rating ChatRating, success func(), failure func(*ErrorResponse)) {
	b.settle("sendChatRating", func() { b.state.ChatRating = rating }, success, failure)
}

func (b *MemoryBackend) SendChatComment(comment string, success func(), failure func(*ErrorResponse)) {
	b.settle("sendChatComment", func() { b.state.ChatComment = comment }, success, failure)
}

func (b *MemoryBackend) SendEmailTranscript(email string, success func(), failure func(*ErrorResponse)) {
	b.settle("sendEmailTranscript", nil, success, failure)
}

func (b *MemoryBackend) SendOfflineForm(form OfflineForm, success func(), failure func(*ErrorResponse)) {
	b.settle("sendOfflineForm", nil, success, failure)
}

func (b *MemoryBackend) SendMessage(message string) ChatLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("sendMessage")
	log := ChatLog{
		ID:        uuid.New().String(),
		Nick:      "visitor",
		Message:   message,
		Timestamp: time.Now(),
	}
	b.state.ChatLogs = append(b.state.ChatLogs, log)
	return log
}

func (b *MemoryBackend) ResendFailedMessage(id string) (ChatLog, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("resendFailedMessage")
	for i, log := range b.state.ChatLogs {
		if log.ID == id && log.Failed {
			b.state.ChatLogs[i].Failed = false
			return b.state.ChatLogs[i], true
		}
	}
	return ChatLog{}, false
}

func (b *MemoryBackend) DeleteFailedMessage(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("deleteFailedMessage")
	for i, log := range b.state.ChatLogs {
		if log.ID == id && log.Failed {
			b.state.ChatLogs = append(b.state.ChatLogs[:i], b.state.ChatLogs[i+1:]...)
			return true
		}
	}
	return false
}

func (b *MemoryBackend) SetTyping(typing bool) {
	b.mu.Lock()
	b.record("setTyping")
	b.mu.Unlock()
}

func (b *MemoryBackend) ChatState() ChatState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *MemoryBackend) ObserveChatState(fn func(ChatState)) (stop func()) {
	id := uuid.New().String()
	b.mu.Lock()
	b.chatObservers[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.chatObservers, id)
		b.mu.Unlock()
	}
}

// --- test and simulation helpers ---

// SetAccount replaces the simulated account without notifying observers.
func (b *MemoryBackend) SetAccount(a Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.account = a
}

// PushAccount replaces the simulated account and notifies account observers.
func (b *MemoryBackend) PushAccount(a Account) {
	b.mu.Lock()
	b.account = a
	observers := make([]func(Account), 0, len(b.accountObservers))
	for _, fn := range b.accountObservers {
		observers = append(observers, fn)
	}
	b.mu.Unlock()

	for _, fn := range observers {
		fn(a)
	}
}

// SetChatState replaces the simulated chat state without notifying observers.
func (b *MemoryBackend) SetChatState(st ChatState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = st
}

// PushChatState replaces the simulated chat state and notifies chat observers.
func (b *MemoryBackend) PushChatState(st ChatState) {
	b.mu.Lock()
	b.state = st
	observers := make([]func(ChatState), 0, len(b.chatObservers))
	for _, fn := range b.chatObservers {
		observers = append(observers, fn)
	}
	b.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}

// FailNext injects an error for the next invocation of the named operation.
func (b *MemoryBackend) FailNext(op string, errResp *ErrorResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = errResp
}

// Calls returns the operations invoked so far, in order.
func (b *MemoryBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// Tags returns the visitor tags currently held by the backend.
func (b *MemoryBackend) Tags() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.tags))
	copy(out, b.tags)
	return out
}
