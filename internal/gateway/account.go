// ABOUTME: Account gateway: session init, account fetch/cache, departments, status
// ABOUTME: Cached account lives in the session gate; staleness is the caller's problem

package gateway

import (
	"github.com/visitlink/chat-bridge/internal/adapter"
	"github.com/visitlink/chat-bridge/internal/bridge"
	"github.com/visitlink/chat-bridge/internal/chat"
	"github.com/visitlink/chat-bridge/internal/observe"
)

// Initialize establishes the backend session. Must succeed before any
// gated command is accepted.
func (g *Gateway) Initialize(accountKey, appID string) error {
	if accountKey == "" || appID == "" {
		return reject("accountKey & appID required")
	}
	if err := g.backend.Init(accountKey, appID); err != nil {
		return err
	}
	g.gate.MarkInitialized()
	g.logger.Info("backend session initialized", "app_id", appID)
	return nil
}

// IsAccountInitialized reports whether Initialize has succeeded.
func (g *Gateway) IsAccountInitialized() bool {
	return g.gate.Flags().AccountInitialized
}

// GetAccount fetches the account from the backend. On success the account
// is cached in the session gate before the result is observable.
func (g *Gateway) GetAccount() *bridge.Result[map[string]any] {
	return bridge.Invoke(nil, func(succeed func(map[string]any), fail func(*chat.ErrorResponse)) {
		g.accounts.GetAccount(func(a chat.Account) {
			g.gate.MarkAccountFetched(a)
			succeed(adapter.AccountToMap(a))
		}, fail)
	})
}

// GetCachedAccount returns the last fetched account without contacting the
// backend.
func (g *Gateway) GetCachedAccount() (map[string]any, error) {
	acct, ok := g.gate.Account()
	if !ok {
		return nil, reject(msgFetchAccountFirst)
	}
	return adapter.AccountToMap(acct), nil
}

// GetDepartments returns the cached account's departments in order.
func (g *Gateway) GetDepartments() ([]map[string]any, error) {
	acct, ok := g.gate.Account()
	if !ok {
		return nil, reject(msgFetchAccountFirst)
	}
	departments := make([]map[string]any, len(acct.Departments))
	for i, d := range acct.Departments {
		departments[i] = adapter.DepartmentToMap(d)
	}
	return departments, nil
}

// GetAccountStatus returns the cached account's online/offline status.
func (g *Gateway) GetAccountStatus() (string, error) {
	acct, ok := g.gate.Account()
	if !ok {
		return "", reject(msgFetchAccountFirst)
	}
	return string(acct.Status), nil
}

// IsAccountOffline reports whether the cached account is offline. An
// unfetched account counts as offline, which keeps sendOfflineForm usable
// before an explicit fetch.
func (g *Gateway) IsAccountOffline() bool {
	acct, ok := g.gate.Account()
	if !ok {
		return true
	}
	return acct.Status == chat.StatusOffline
}

// ObserveAccountState opens a live subscription to account changes,
// emitted as "ObserveAccountState" events.
func (g *Gateway) ObserveAccountState() *observe.Scope {
	return g.scopes.Subscribe(observe.StreamAccountState, func(emit func(map[string]any)) func() {
		return g.accounts.ObserveAccount(func(a chat.Account) {
			emit(adapter.AccountToMap(a))
		})
	})
}

// CancelObserveAccountState cancels every live account subscription.
func (g *Gateway) CancelObserveAccountState() string {
	g.scopes.CancelAll(observe.StreamAccountState)
	return Acknowledged
}
