// ABOUTME: Tests for the account gateway operations
// ABOUTME: Covers initialization, fetch-then-cache, and fetch-first gating

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlink/chat-bridge/internal/chat"
)

func onlineAccount() chat.Account {
	return chat.Account{
		Status: chat.StatusOnline,
		Departments: []chat.Department{
			{ID: 1, Name: "sales", Status: chat.StatusOnline},
			{ID: 42, Name: "billing", Status: chat.StatusOffline},
		},
	}
}

func TestInitialize(t *testing.T) {
	g, _, _ := newTestGateway(t)

	assert.False(t, g.IsAccountInitialized())
	require.NoError(t, g.Initialize("key", "app"))
	assert.True(t, g.IsAccountInitialized())
}

func TestInitialize_RequiresBothArguments(t *testing.T) {
	g, backend, _ := newTestGateway(t)

	err := g.Initialize("", "app")
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "400", rej.Code)
	assert.False(t, calledBackend(backend, "init"))
}

func TestGetAccount_CachesOnSuccess(t *testing.T) {
	g, backend, _ := initialized(t)
	backend.SetAccount(onlineAccount())

	value, err := g.GetAccount().Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ONLINE", value["status"])

	cached, err := g.GetCachedAccount()
	require.NoError(t, err)
	assert.Equal(t, value, cached)
}

func TestGetCachedAccount_RequiresFetch(t *testing.T) {
	g, _, _ := initialized(t)

	_, err := g.GetCachedAccount()
	assert.EqualError(t, err, "fetch getAccount() first")
}

func TestGetAccount_BackendErrorDoesNotCache(t *testing.T) {
	g, backend, _ := initialized(t)
	backend.FailNext("getAccount", &chat.ErrorResponse{Code: "503", Message: "unavailable"})

	_, err := g.GetAccount().Await(context.Background())
	require.EqualError(t, err, "unavailable")

	_, err = g.GetCachedAccount()
	assert.EqualError(t, err, "fetch getAccount() first")
	assert.False(t, g.Gate().Flags().AccountFetched)
}

func TestGetDepartments_PreservesOrder(t *testing.T) {
	g, backend, _ := initialized(t)
	backend.SetAccount(onlineAccount())
	_, err := g.GetAccount().Await(context.Background())
	require.NoError(t, err)

	departments, err := g.GetDepartments()
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "sales", departments[0]["name"])
	assert.Equal(t, int64(42), departments[1]["id"])
}

func TestGetDepartments_RequiresFetch(t *testing.T) {
	g, backend, _ := initialized(t)

	_, err := g.GetDepartments()
	assert.EqualError(t, err, "fetch getAccount() first")
	assert.False(t, calledBackend(backend, "getAccount"))
}

func TestGetAccountStatus(t *testing.T) {
	g, backend, _ := initialized(t)

	_, err := g.GetAccountStatus()
	assert.EqualError(t, err, "fetch getAccount() first")

	backend.SetAccount(onlineAccount())
	_, err = g.GetAccount().Await(context.Background())
	require.NoError(t, err)

	status, err := g.GetAccountStatus()
	require.NoError(t, err)
	assert.Equal(t, "ONLINE", status)
}

func TestIsAccountOffline(t *testing.T) {
	g, backend, _ := initialized(t)

	// Unfetched counts as offline.
	assert.True(t, g.IsAccountOffline())

	backend.SetAccount(onlineAccount())
	_, err := g.GetAccount().Await(context.Background())
	require.NoError(t, err)
	assert.False(t, g.IsAccountOffline())
}

func TestObserveAccountState_EmitsAndCancels(t *testing.T) {
	g, backend, sink := initialized(t)

	scope := g.ObserveAccountState()
	backend.PushAccount(onlineAccount())

	deadline := time.Now().Add(time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, sink.count())

	scope.Cancel()
	backend.PushAccount(chat.Account{Status: chat.StatusOffline})
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, sink.count())
}

func TestCancelObserveAccountState_CancelsAllScopes(t *testing.T) {
	g, backend, sink := initialized(t)

	g.ObserveAccountState()
	g.ObserveAccountState()

	ack := g.CancelObserveAccountState()
	assert.Equal(t, "Successful", ack)

	backend.PushAccount(onlineAccount())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, sink.count())
}
