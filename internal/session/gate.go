// ABOUTME: Session gate owning the precondition flags and the cached Account
// ABOUTME: Flags flip only on confirmed settlement; gate checks are pure reads

package session

import (
	"sync"

	"github.com/visitlink/chat-bridge/internal/chat"
)

// Flags are the boolean preconditions gating which commands are legal.
type Flags struct {
	AccountInitialized bool
	VisitorInfoSet     bool
	AccountFetched     bool
	DepartmentSet      bool
	SessionStarted     bool
}

// Requirement is a set of flags an operation needs before it may delegate
// to the backend.
type Requirement uint8

const (
	RequireInitialized Requirement = 1 << iota
	RequireVisitorInfo
	RequireAccountFetched
	RequireDepartment
)

// Gate is the single owner of session flags and the last fetched Account.
// One Gate exists per host session; gateways never mutate flags directly.
type Gate struct {
	mu      sync.Mutex
	flags   Flags
	account *chat.Account
}

// New returns a Gate with all flags down.
func New() *Gate {
	return &Gate{}
}

// Flags returns a snapshot of the current flags.
func (g *Gate) Flags() Flags {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flags
}

// CanPerform reports whether every flag in req is currently up.
func (g *Gate) CanPerform(req Requirement) bool {
	f := g.Flags()
	if req&RequireInitialized != 0 && !f.AccountInitialized {
		return false
	}
	if req&RequireVisitorInfo != 0 && !f.VisitorInfoSet {
		return false
	}
	if req&RequireAccountFetched != 0 && !f.AccountFetched {
		return false
	}
	if req&RequireDepartment != 0 && !f.DepartmentSet {
		return false
	}
	return true
}

// MarkInitialized records a confirmed backend Init.
func (g *Gate) MarkInitialized() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags.AccountInitialized = true
}

// MarkVisitorInfoSet records a confirmed visitor identity submission.
func (g *Gate) MarkVisitorInfoSet() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags.VisitorInfoSet = true
}

// MarkAccountFetched caches the fetched account. Fetching implies the
// session is initialized.
func (g *Gate) MarkAccountFetched(a chat.Account) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags.AccountInitialized = true
	g.flags.AccountFetched = true
	acct := a
	acct.Departments = make([]chat.Department, len(a.Departments))
	copy(acct.Departments, a.Departments)
	g.account = &acct
}

// SetDepartmentSet flips the department flag. Setting a department implies
// visitor identity exists.
func (g *Gate) SetDepartmentSet(set bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if set {
		g.flags.VisitorInfoSet = true
	}
	g.flags.DepartmentSet = set
}

// MarkSessionStarted records that a chat request was issued.
func (g *Gate) MarkSessionStarted() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags.SessionStarted = true
}

// Account returns the cached account, if one was fetched. Staleness is the
// caller's responsibility; there is no auto-refresh.
func (g *Gate) Account() (chat.Account, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.account == nil {
		return chat.Account{}, false
	}
	return *g.account, true
}
