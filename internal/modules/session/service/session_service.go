package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lootledger/internal/modules/session/domain"
	"lootledger/internal/modules/session/dto"
	sessionout "lootledger/internal/modules/session/port/out"
	"lootledger/internal/platform/clock"
	apperrors "lootledger/internal/platform/errors"
	"lootledger/internal/platform/id"
)

type SessionService struct {
	clock     clock.Clock
	idGen     id.Generator
	appraiser sessionout.Appraiser
	logger    *slog.Logger
}

func NewSessionService(clock clock.Clock, idGen id.Generator, appraiser sessionout.Appraiser, logger *slog.Logger) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, appraiser: appraiser, logger: logger}
}

func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}

func (s *SessionService) Start(identity string) (*domain.Session, error) {
	session, err := domain.New(s.idGen.New(), identity, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("session started", "session", session.ID, "identity", identity)
	return session, nil
}

// Transition applies a clock-driven lifecycle change.
func (s *SessionService) Transition(session *domain.Session, name string, fn func(*domain.Session, time.Time) error) error {
	if err := fn(session, s.clock.Now()); err != nil {
		return err
	}
	s.logger.Info("session "+name, "session", session.ID, "identity", session.Identity)
	return nil
}

// Apply books one signal. Acquisitions are appraised before anything is
// posted, so an unresolved item leaves the session untouched.
func (s *SessionService) Apply(ctx context.Context, session *domain.Session, signal domain.Signal) (dto.SignalOutput, error) {
	if err := session.Mutable(); err != nil {
		return dto.SignalOutput{}, err
	}
	if err := signal.Validate(); err != nil {
		return dto.SignalOutput{}, err
	}
	out := dto.SignalOutput{SessionID: session.ID, Kind: signal.Kind()}
	realizedBefore := session.Realized()

	switch sig := signal.(type) {
	case domain.ItemAcquired:
		if s.appraiser == nil {
			return dto.SignalOutput{}, fmt.Errorf("%w: no appraiser configured", apperrors.ErrUnresolvedItem)
		}
		appraisal, err := s.appraiser.Appraise(ctx, sig.ItemID)
		if err != nil {
			return dto.SignalOutput{}, err
		}
		if err := session.BookAcquired(sig, appraisal); err != nil {
			return dto.SignalOutput{}, err
		}
		out.Bucket = appraisal.Bucket
		out.ValuePerUnit = appraisal.ValuePerUnit
	case domain.ItemSold:
		if err := session.BookSold(sig); err != nil {
			return dto.SignalOutput{}, err
		}
	case domain.ItemRemoved:
		if err := session.BookRemoved(sig); err != nil {
			return dto.SignalOutput{}, err
		}
	case domain.CurrencyChanged:
		if err := session.BookCurrency(sig); err != nil {
			return dto.SignalOutput{}, err
		}
	case domain.CounterObserved:
		delta, err := session.ObserveCounter(sig)
		if err != nil {
			return dto.SignalOutput{}, err
		}
		out.CounterDelta = delta
	default:
		return dto.SignalOutput{}, fmt.Errorf("%w: unknown signal %T", apperrors.ErrInvalidInput, signal)
	}

	out.Reversed = session.Realized() - realizedBefore
	out.NetWorth = session.NetWorth()
	s.logger.Debug("signal applied", "session", session.ID, "kind", out.Kind, "bucket", out.Bucket, "reversed", out.Reversed, "net_worth", out.NetWorth)
	return out, nil
}

func (s *SessionService) Merge(sessions []*domain.Session) (*domain.Session, error) {
	merged, err := domain.Merge(s.idGen.New(), sessions)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sessions merged", "session", merged.ID, "identity", merged.Identity, "from", merged.MergedFrom)
	return merged, nil
}

// NewUndo snapshots restore before the caller mutates anything.
func (s *SessionService) NewUndo(kind domain.UndoKind, window time.Duration, restore []*domain.Session, discard []string) domain.UndoEntry {
	now := s.clock.Now()
	snapshots := make([]*domain.Session, 0, len(restore))
	for _, session := range restore {
		snapshots = append(snapshots, session.Clone())
	}
	return domain.UndoEntry{
		Token:     s.idGen.New(),
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(window),
		Restore:   snapshots,
		Discard:   append([]string(nil), discard...),
	}
}

func (s *SessionService) Summarize(session *domain.Session) domain.Summary {
	return session.Summarize(s.clock.Now())
}
