package domain

import (
	"fmt"
	"strings"
	"time"

	holdings "lootledger/internal/modules/holdings/domain"
	ledger "lootledger/internal/modules/ledger/domain"
	apperrors "lootledger/internal/platform/errors"
)

const SchemaVersion = 1

// Session is one timed play session of a single character. It is mutable
// only until Stop.
type Session struct {
	ID          string
	Identity    string
	StartedAt   time.Time
	EndedAt     *time.Time
	Archived    bool
	MergedFrom  []string
	Accumulated time.Duration
	LoginAt     *time.Time
	PausedAt    *time.Time
	Ledger      *ledger.Ledger
	Holdings    *holdings.Holdings
	Items       map[int64]*ItemAggregate
	Counters    map[string]*Counter
}

// New opens a session with a login segment anchored at now.
func New(id, identity string, now time.Time) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	login := now
	return &Session{
		ID:        id,
		Identity:  identity,
		StartedAt: now,
		LoginAt:   &login,
		Ledger:    ledger.New(),
		Holdings:  holdings.New(),
		Items:     map[int64]*ItemAggregate{},
		Counters:  map[string]*Counter{},
	}, nil
}

// ValidateIdentity accepts character keys of the form Name-Realm.
func ValidateIdentity(identity string) error {
	name, realm, ok := strings.Cut(strings.TrimSpace(identity), "-")
	if !ok || name == "" || realm == "" {
		return fmt.Errorf("%w: identity must be Name-Realm, got %q", apperrors.ErrInvalidInput, identity)
	}
	return nil
}

func (s *Session) Stopped() bool {
	return s.EndedAt != nil
}

func (s *Session) Paused() bool {
	return s.PausedAt != nil
}

// Mutable returns ErrInvalidSession for nil or stopped sessions.
func (s *Session) Mutable() error {
	if s == nil {
		return fmt.Errorf("%w: session is nil", apperrors.ErrInvalidSession)
	}
	if s.Stopped() {
		return fmt.Errorf("%w: session %s is stopped", apperrors.ErrInvalidSession, s.ID)
	}
	return nil
}

// Clone deep-copies the session. Snapshots handed to readers and undo
// entries are always clones.
func (s *Session) Clone() *Session {
	out := &Session{
		ID:          s.ID,
		Identity:    s.Identity,
		StartedAt:   s.StartedAt,
		EndedAt:     cloneTime(s.EndedAt),
		Archived:    s.Archived,
		MergedFrom:  append([]string(nil), s.MergedFrom...),
		Accumulated: s.Accumulated,
		LoginAt:     cloneTime(s.LoginAt),
		PausedAt:    cloneTime(s.PausedAt),
		Ledger:      s.Ledger.Clone(),
		Holdings:    s.Holdings.Clone(),
		Items:       make(map[int64]*ItemAggregate, len(s.Items)),
		Counters:    make(map[string]*Counter, len(s.Counters)),
	}
	for id, agg := range s.Items {
		copied := *agg
		out.Items[id] = &copied
	}
	for name, c := range s.Counters {
		copied := *c
		out.Counters[name] = &copied
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
