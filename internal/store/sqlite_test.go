// ABOUTME: Tests for the SQLite command ledger
// ABOUTME: Covers schema creation, append, ordering, and limits

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveCommand_FillsDefaults(t *testing.T) {
	s := newTestStore(t)

	err := s.SaveCommand(context.Background(), CommandRecord{
		Operation: "getAccount",
		Status:    StatusResolved,
	})
	require.NoError(t, err)

	records, err := s.RecentCommands(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].CreatedAt.IsZero())
	assert.Equal(t, "getAccount", records[0].Operation)
	assert.Equal(t, StatusResolved, records[0].Status)
}

func TestRecentCommands_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	ops := []string{"init", "setVisitorInfo", "requestChat"}
	for i, op := range ops {
		err := s.SaveCommand(context.Background(), CommandRecord{
			Operation: op,
			Status:    StatusResolved,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	records, err := s.RecentCommands(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "requestChat", records[0].Operation)
	assert.Equal(t, "init", records[2].Operation)
}

func TestRecentCommands_Limit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveCommand(context.Background(), CommandRecord{
			Operation: "sendChatComment",
			Status:    StatusRejected,
			Detail:    "visitor info is not provided",
		}))
	}

	records, err := s.RecentCommands(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecentCommands_Empty(t *testing.T) {
	s := newTestStore(t)

	records, err := s.RecentCommands(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveCommand_RecordsRejectionDetail(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveCommand(context.Background(), CommandRecord{
		Operation: "sendOfflineForm",
		Status:    StatusRejected,
		Detail:    "Department is ONLINE",
		Subject:   "host-app",
	}))

	records, err := s.RecentCommands(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Department is ONLINE", records[0].Detail)
	assert.Equal(t, "host-app", records[0].Subject)
}
