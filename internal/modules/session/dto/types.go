package dto

import (
	"time"

	"lootledger/internal/modules/session/domain"
)

type StartInput struct {
	Identity string
}

type SessionOutput struct {
	ID          string
	Identity    string
	StartedAt   time.Time
	EndedAt     *time.Time
	Status      string
	DurationSec int64
	Cash        int64
	Inventory   int64
	NetWorth    int64
	Income      int64
	Expenses    int64
	Realized    int64
	MergedFrom  []string
}

// Signal kinds accepted by SignalInput.Kind.
const (
	SignalItemAcquired    = "item_acquired"
	SignalItemSold        = "item_sold"
	SignalItemRemoved     = "item_removed"
	SignalCurrencyChanged = "currency_changed"
	SignalCounterObserved = "counter_observed"
)

type SignalInput struct {
	Identity string
	Kind     string
	ItemID   int64
	Count    int64
	Proceeds int64
	Reason   string
	Amount   int64
	Source   string
	Name     string
	Value    int64
	Max      int64
}

type SignalOutput struct {
	SessionID    string
	Kind         string
	Bucket       string
	ValuePerUnit int64
	Reversed     int64
	CounterDelta int64
	NetWorth     int64
}

type UndoToken struct {
	Token     string
	Kind      string
	ExpiresAt time.Time
}

type MergeOutput struct {
	Session SessionOutput
	Undo    UndoToken
}

type UndoOutput struct {
	Kind      string
	Restored  []string
	Discarded []string
}

type ListInput struct {
	Identity        string
	IncludeArchived bool
}

// SnapshotInput selects a session by ID or, when SessionID is empty, the
// active session of Identity.
type SnapshotInput struct {
	Identity  string
	SessionID string
}

// Snapshot is a deep copy of a session taken under the session lock.
type Snapshot struct {
	Session *domain.Session
	At      time.Time
}

type ReportOutput struct {
	SessionID string
	Path      string
}
