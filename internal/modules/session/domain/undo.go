package domain

import (
	"fmt"
	"time"

	apperrors "lootledger/internal/platform/errors"
)

type UndoKind string

const (
	UndoArchive UndoKind = "archive"
	UndoDelete  UndoKind = "delete"
	UndoMerge   UndoKind = "merge"
)

// UndoEntry holds deep snapshots taken before a destructive operation.
// Undo writes Restore back as-is and removes the sessions in Discard.
type UndoEntry struct {
	Token     string
	Kind      UndoKind
	CreatedAt time.Time
	ExpiresAt time.Time
	Restore   []*Session
	Discard   []string
}

// Usable reports ErrUndoExpired once now is past the expiry.
func (e UndoEntry) Usable(now time.Time) error {
	if now.After(e.ExpiresAt) {
		return fmt.Errorf("%w: token %s expired at %s", apperrors.ErrUndoExpired, e.Token, e.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
