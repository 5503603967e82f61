package dto

import "time"

// MetricsInput selects a session by ID, or the active session of Identity
// when SessionID is empty.
type MetricsInput struct {
	Identity  string
	SessionID string
}

type Line struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

type Breakdown struct {
	Lines []Line `json:"lines"`
	More  int    `json:"more"`
}

type Category struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Rate  int64  `json:"rate_per_hour"`
}

type Counter struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Rate  int64  `json:"rate_per_hour"`
}

type Metrics struct {
	SessionID   string     `json:"session_id"`
	Identity    string     `json:"identity"`
	Status      string     `json:"status"`
	At          time.Time  `json:"at"`
	DurationSec int64      `json:"duration_sec"`
	Categories  []Category `json:"categories"`
	Buckets     []Line     `json:"buckets"`
	TopItems    Breakdown  `json:"top_items"`
	TopIncome   Breakdown  `json:"top_income"`
	TopExpenses Breakdown  `json:"top_expenses"`
	Counters    []Counter  `json:"counters"`
}

// Total returns the named category total, or zero.
func (m Metrics) Total(name string) int64 {
	for _, c := range m.Categories {
		if c.Name == name {
			return c.Total
		}
	}
	return 0
}
