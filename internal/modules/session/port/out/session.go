package out

import (
	"context"
	"time"

	"lootledger/internal/modules/session/domain"
)

// SessionStore persists full session records. Load returns ErrNotFound for
// unknown IDs; Delete of an unknown ID succeeds.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Load(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Session, error)
}

// ArchiveStore holds archived sessions with the same contract as
// SessionStore.
type ArchiveStore interface {
	SessionStore
}

// ActiveSessionStore tracks the open session per identity.
type ActiveSessionStore interface {
	SaveActive(ctx context.Context, identity, sessionID string) error
	LoadActive(ctx context.Context, identity string) (string, error)
	ClearActive(ctx context.Context, identity string) error
}

type UndoJournal interface {
	Push(ctx context.Context, entry domain.UndoEntry, depth int) error
	Take(ctx context.Context, token string) (domain.UndoEntry, error)
	Prune(ctx context.Context, now time.Time) error
}

type HistoryProjector interface {
	Upsert(ctx context.Context, summary domain.Summary) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, identity string, includeArchived bool) ([]domain.Summary, error)
	Reset(ctx context.Context) error
}

type ReportStore interface {
	Write(ctx context.Context, session *domain.Session, summary domain.Summary) (string, error)
}

// Appraiser resolves and values an item at acquisition time.
type Appraiser interface {
	Appraise(ctx context.Context, itemID int64) (domain.Appraisal, error)
}
