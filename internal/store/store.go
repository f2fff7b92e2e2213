// ABOUTME: Store interface and record types for the command outcome ledger
// ABOUTME: Records operation names and outcomes only, never message content

package store

import (
	"context"
	"time"
)

// CommandStatus is the terminal state of a dispatched command.
type CommandStatus string

const (
	StatusResolved CommandStatus = "resolved"
	StatusRejected CommandStatus = "rejected"
	StatusFailed   CommandStatus = "failed"
)

// CommandRecord is one ledger entry: which operation ran and how it ended.
// Payload contents are deliberately not recorded.
type CommandRecord struct {
	ID        string
	Operation string
	Status    CommandStatus
	Detail    string
	Subject   string
	CreatedAt time.Time
}

// Store persists command outcomes.
type Store interface {
	SaveCommand(ctx context.Context, rec CommandRecord) error
	RecentCommands(ctx context.Context, limit int) ([]CommandRecord, error)
	Close() error
}
