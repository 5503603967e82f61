package domain

import "time"

// Summary is the flat view of a session kept in the history index.
type Summary struct {
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

const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusStopped  = "stopped"
	StatusArchived = "archived"
)

func (s *Session) Status() string {
	switch {
	case s.Archived:
		return StatusArchived
	case s.Stopped():
		return StatusStopped
	case s.Paused():
		return StatusPaused
	default:
		return StatusActive
	}
}

func (s *Session) Summarize(now time.Time) Summary {
	return Summary{
		ID:          s.ID,
		Identity:    s.Identity,
		StartedAt:   s.StartedAt,
		EndedAt:     cloneTime(s.EndedAt),
		Status:      s.Status(),
		DurationSec: int64(s.DurationAt(now) / time.Second),
		Cash:        s.Cash(),
		Inventory:   s.Holdings.TotalExpectedValue(),
		NetWorth:    s.NetWorth(),
		Income:      s.Ledger.SumMatching(IncomePattern),
		Expenses:    s.Ledger.SumMatching(ExpensePattern),
		Realized:    s.Realized(),
		MergedFrom:  append([]string(nil), s.MergedFrom...),
	}
}
