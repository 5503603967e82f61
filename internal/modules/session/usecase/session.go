package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lootledger/internal/modules/session/domain"
	sessiondto "lootledger/internal/modules/session/dto"
	sessionin "lootledger/internal/modules/session/port/in"
	sessionout "lootledger/internal/modules/session/port/out"
	"lootledger/internal/modules/session/service"
	apperrors "lootledger/internal/platform/errors"
)

// UndoPolicy bounds how long and how many destructive operations stay
// reversible.
type UndoPolicy struct {
	Window time.Duration
	Depth  int
}

// Stores groups the persistence ports. History and Reports are optional.
type Stores struct {
	Sessions sessionout.SessionStore
	Archive  sessionout.ArchiveStore
	Active   sessionout.ActiveSessionStore
	Undo     sessionout.UndoJournal
	History  sessionout.HistoryProjector
	Reports  sessionout.ReportStore
}

// Interactor is the single owner of session state. Every call holds mu, so
// signals apply in delivery order and readers only see whole updates.
type Interactor struct {
	mu     sync.Mutex
	svc    *service.SessionService
	stores Stores
	policy UndoPolicy
	logger *slog.Logger
}

func NewInteractor(svc *service.SessionService, stores Stores, policy UndoPolicy, logger *slog.Logger) sessionin.Usecase {
	return &Interactor{svc: svc, stores: stores, policy: policy, logger: logger}
}

func (i *Interactor) StartSession(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := domain.ValidateIdentity(input.Identity); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	current, err := i.loadActive(ctx, input.Identity)
	switch {
	case err == nil:
		return sessiondto.SessionOutput{}, fmt.Errorf("%w: %s has session %s open", apperrors.ErrSessionAlreadyActive, input.Identity, current.ID)
	case !errors.Is(err, apperrors.ErrNoActiveSession):
		return sessiondto.SessionOutput{}, err
	}

	session, err := i.svc.Start(input.Identity)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.stores.Sessions.Save(ctx, session); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.stores.Active.SaveActive(ctx, input.Identity, session.ID); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.project(ctx, session)
}

func (i *Interactor) PauseSession(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return i.transition(ctx, identity, "paused", (*domain.Session).Pause)
}

func (i *Interactor) ResumeSession(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return i.transition(ctx, identity, "resumed", (*domain.Session).Resume)
}

func (i *Interactor) Connect(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return i.transition(ctx, identity, "connected", (*domain.Session).Connect)
}

func (i *Interactor) Disconnect(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return i.transition(ctx, identity, "disconnected", (*domain.Session).Disconnect)
}

func (i *Interactor) StopSession(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	session, err := i.loadActive(ctx, identity)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.svc.Transition(session, "stopped", (*domain.Session).Stop); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.stores.Sessions.Save(ctx, session); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.stores.Active.ClearActive(ctx, identity); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if i.stores.Reports != nil {
		if _, err := i.stores.Reports.Write(ctx, session, i.svc.Summarize(session)); err != nil {
			i.logger.Warn("session report failed", "session", session.ID, "error", err)
		}
	}
	return i.project(ctx, session)
}

func (i *Interactor) transition(ctx context.Context, identity, name string, fn func(*domain.Session, time.Time) error) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	session, err := i.loadActive(ctx, identity)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.svc.Transition(session, name, fn); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if err := i.stores.Sessions.Save(ctx, session); err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.project(ctx, session)
}

func (i *Interactor) ApplySignal(ctx context.Context, input sessiondto.SignalInput) (sessiondto.SignalOutput, error) {
	signal, err := toSignal(input)
	if err != nil {
		return sessiondto.SignalOutput{}, err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	session, err := i.loadActive(ctx, input.Identity)
	if err != nil {
		return sessiondto.SignalOutput{}, err
	}
	out, err := i.svc.Apply(ctx, session, signal)
	if err != nil {
		return sessiondto.SignalOutput{}, err
	}
	if err := i.stores.Sessions.Save(ctx, session); err != nil {
		return sessiondto.SignalOutput{}, err
	}
	if _, err := i.project(ctx, session); err != nil {
		return sessiondto.SignalOutput{}, err
	}
	return out, nil
}

func (i *Interactor) GetSession(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	session, _, err := i.find(ctx, sessionID)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(i.svc.Summarize(session)), nil
}

func (i *Interactor) GetActive(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	session, err := i.loadActive(ctx, identity)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return toOutput(i.svc.Summarize(session)), nil
}

// ListSessions reads the history index when one is configured and falls
// back to scanning the stores.
func (i *Interactor) ListSessions(ctx context.Context, input sessiondto.ListInput) ([]sessiondto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var summaries []domain.Summary
	if i.stores.History != nil {
		listed, err := i.stores.History.List(ctx, input.Identity, input.IncludeArchived)
		if err != nil {
			return nil, err
		}
		for n, summary := range listed {
			if summary.Status != domain.StatusActive && summary.Status != domain.StatusPaused {
				continue
			}
			// Index rows for open sessions carry the duration of their last write.
			session, _, err := i.find(ctx, summary.ID)
			if err != nil {
				return nil, err
			}
			listed[n] = i.svc.Summarize(session)
		}
		summaries = listed
	} else {
		all, err := i.scan(ctx, input.IncludeArchived)
		if err != nil {
			return nil, err
		}
		for _, session := range all {
			if input.Identity == "" || session.Identity == input.Identity {
				summaries = append(summaries, i.svc.Summarize(session))
			}
		}
	}
	out := make([]sessiondto.SessionOutput, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, toOutput(summary))
	}
	return out, nil
}

func (i *Interactor) Snapshot(ctx context.Context, input sessiondto.SnapshotInput) (sessiondto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var (
		session *domain.Session
		err     error
	)
	if input.SessionID != "" {
		session, _, err = i.find(ctx, input.SessionID)
	} else {
		session, err = i.loadActive(ctx, input.Identity)
	}
	if err != nil {
		return sessiondto.Snapshot{}, err
	}
	return sessiondto.Snapshot{Session: session.Clone(), At: i.svc.Now()}, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stores.History == nil {
		return nil
	}
	all, err := i.scan(ctx, true)
	if err != nil {
		return err
	}
	if err := i.stores.History.Reset(ctx); err != nil {
		return err
	}
	for _, session := range all {
		if err := i.stores.History.Upsert(ctx, i.svc.Summarize(session)); err != nil {
			return err
		}
	}
	i.logger.Info("history reindexed", "sessions", len(all))
	return nil
}

func (i *Interactor) ExportReport(ctx context.Context, sessionID string) (sessiondto.ReportOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stores.Reports == nil {
		return sessiondto.ReportOutput{}, fmt.Errorf("report store is not configured")
	}
	session, _, err := i.find(ctx, sessionID)
	if err != nil {
		return sessiondto.ReportOutput{}, err
	}
	path, err := i.stores.Reports.Write(ctx, session, i.svc.Summarize(session))
	if err != nil {
		return sessiondto.ReportOutput{}, err
	}
	return sessiondto.ReportOutput{SessionID: session.ID, Path: path}, nil
}

// loadActive resolves the open session of identity. A pointer to a session
// that no longer exists or is already stopped is cleared as stale.
func (i *Interactor) loadActive(ctx context.Context, identity string) (*domain.Session, error) {
	id, err := i.stores.Active.LoadActive(ctx, identity)
	if err != nil {
		return nil, err
	}
	session, err := i.stores.Sessions.Load(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if err != nil || session.Stopped() {
		i.logger.Warn("clearing stale active session", "identity", identity, "session", id)
		if clearErr := i.stores.Active.ClearActive(ctx, identity); clearErr != nil {
			return nil, clearErr
		}
		return nil, apperrors.ErrNoActiveSession
	}
	return session, nil
}

// find looks in live sessions first, then in the archive.
func (i *Interactor) find(ctx context.Context, sessionID string) (*domain.Session, sessionout.SessionStore, error) {
	session, err := i.stores.Sessions.Load(ctx, sessionID)
	if err == nil {
		return session, i.stores.Sessions, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) || i.stores.Archive == nil {
		return nil, nil, err
	}
	session, err = i.stores.Archive.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, i.stores.Archive, nil
}

func (i *Interactor) scan(ctx context.Context, includeArchived bool) ([]*domain.Session, error) {
	all, err := i.stores.Sessions.List(ctx)
	if err != nil {
		return nil, err
	}
	if includeArchived && i.stores.Archive != nil {
		archived, err := i.stores.Archive.List(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, archived...)
	}
	return all, nil
}

func (i *Interactor) project(ctx context.Context, session *domain.Session) (sessiondto.SessionOutput, error) {
	summary := i.svc.Summarize(session)
	if i.stores.History != nil {
		if err := i.stores.History.Upsert(ctx, summary); err != nil {
			return sessiondto.SessionOutput{}, err
		}
	}
	return toOutput(summary), nil
}

func toOutput(summary domain.Summary) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		ID:          summary.ID,
		Identity:    summary.Identity,
		StartedAt:   summary.StartedAt,
		EndedAt:     summary.EndedAt,
		Status:      summary.Status,
		DurationSec: summary.DurationSec,
		Cash:        summary.Cash,
		Inventory:   summary.Inventory,
		NetWorth:    summary.NetWorth,
		Income:      summary.Income,
		Expenses:    summary.Expenses,
		Realized:    summary.Realized,
		MergedFrom:  summary.MergedFrom,
	}
}

func toSignal(input sessiondto.SignalInput) (domain.Signal, error) {
	switch input.Kind {
	case sessiondto.SignalItemAcquired:
		return domain.ItemAcquired{ItemID: input.ItemID, Count: input.Count}, nil
	case sessiondto.SignalItemSold:
		return domain.ItemSold{ItemID: input.ItemID, Count: input.Count, Proceeds: input.Proceeds}, nil
	case sessiondto.SignalItemRemoved:
		return domain.ItemRemoved{ItemID: input.ItemID, Count: input.Count, Reason: input.Reason}, nil
	case sessiondto.SignalCurrencyChanged:
		return domain.CurrencyChanged{Amount: input.Amount, Source: input.Source}, nil
	case sessiondto.SignalCounterObserved:
		return domain.CounterObserved{Name: input.Name, Value: input.Value, Max: input.Max}, nil
	default:
		return nil, fmt.Errorf("%w: unknown signal kind %q", apperrors.ErrInvalidInput, input.Kind)
	}
}
