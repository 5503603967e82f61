package domain

import (
	"fmt"
	"sort"
	"time"

	apperrors "lootledger/internal/platform/errors"
)

// Merge folds stopped sessions of one identity into a new stopped session.
// Inputs are not modified. Lots keep chronological order per item.
func Merge(id string, sessions []*Session) (*Session, error) {
	if len(sessions) < 2 {
		return nil, fmt.Errorf("%w: merge needs at least two sessions", apperrors.ErrInvalidInput)
	}
	ordered := append([]*Session(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartedAt.Before(ordered[j].StartedAt) })

	identity := ordered[0].Identity
	seen := map[string]struct{}{}
	for _, s := range ordered {
		if s.Identity != identity {
			return nil, fmt.Errorf("%w: %s and %s", apperrors.ErrMergeOwnerMismatch, identity, s.Identity)
		}
		if !s.Stopped() {
			return nil, fmt.Errorf("%w: session %s is still open", apperrors.ErrActiveSessionConflict, s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: session %s listed twice", apperrors.ErrInvalidInput, s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	merged := ordered[0].Clone()
	merged.ID = id
	merged.Archived = false
	merged.MergedFrom = nil
	merged.Counters = map[string]*Counter{}
	var ended time.Time
	for i, s := range ordered {
		merged.MergedFrom = append(merged.MergedFrom, s.ID)
		merged.MergedFrom = append(merged.MergedFrom, s.MergedFrom...)
		if s.EndedAt.After(ended) {
			ended = *s.EndedAt
		}
		for name, c := range s.Counters {
			total, ok := merged.Counters[name]
			if !ok {
				total = &Counter{}
				merged.Counters[name] = total
			}
			total.Total += c.Total
			total.Last, total.LastMax, total.Seen = c.Last, c.LastMax, total.Seen || c.Seen
		}
		if i == 0 {
			continue
		}
		merged.Accumulated += s.Accumulated
		merged.Ledger.Absorb(s.Ledger)
		merged.Holdings.Absorb(s.Holdings)
		for itemID, agg := range s.Items {
			target := merged.aggregate(itemID)
			if agg.Name != "" {
				target.Name = agg.Name
			}
			if agg.Bucket != "" {
				target.Bucket = agg.Bucket
			}
			target.AcquiredCount += agg.AcquiredCount
			target.AcquiredValue += agg.AcquiredValue
			target.DisposedCount += agg.DisposedCount
			target.Proceeds += agg.Proceeds
		}
	}
	merged.EndedAt = &ended
	return merged, nil
}
