package usecase

import (
	"context"
	"fmt"

	"lootledger/internal/modules/session/domain"
	sessiondto "lootledger/internal/modules/session/dto"
	apperrors "lootledger/internal/platform/errors"
)

func (i *Interactor) ArchiveSession(ctx context.Context, sessionID string) (sessiondto.UndoToken, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stores.Archive == nil {
		return sessiondto.UndoToken{}, fmt.Errorf("archive store is not configured")
	}
	session, err := i.stores.Sessions.Load(ctx, sessionID)
	if err != nil {
		return sessiondto.UndoToken{}, err
	}
	if err := i.ensureReleased(ctx, session); err != nil {
		return sessiondto.UndoToken{}, err
	}
	entry := i.svc.NewUndo(domain.UndoArchive, i.policy.Window, []*domain.Session{session}, nil)

	session.Archived = true
	if err := i.stores.Archive.Save(ctx, session); err != nil {
		return sessiondto.UndoToken{}, err
	}
	if err := i.stores.Sessions.Delete(ctx, session.ID); err != nil {
		return sessiondto.UndoToken{}, err
	}
	if _, err := i.project(ctx, session); err != nil {
		return sessiondto.UndoToken{}, err
	}
	i.logger.Info("session archived", "session", session.ID)
	return i.remember(ctx, entry)
}

func (i *Interactor) DeleteSession(ctx context.Context, sessionID string) (sessiondto.UndoToken, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	session, store, err := i.find(ctx, sessionID)
	if err != nil {
		return sessiondto.UndoToken{}, err
	}
	if err := i.ensureReleased(ctx, session); err != nil {
		return sessiondto.UndoToken{}, err
	}
	entry := i.svc.NewUndo(domain.UndoDelete, i.policy.Window, []*domain.Session{session}, nil)

	if err := store.Delete(ctx, session.ID); err != nil {
		return sessiondto.UndoToken{}, err
	}
	if i.stores.History != nil {
		if err := i.stores.History.Delete(ctx, session.ID); err != nil {
			return sessiondto.UndoToken{}, err
		}
	}
	i.logger.Info("session deleted", "session", session.ID)
	return i.remember(ctx, entry)
}

// MergeSessions replaces the given sessions with one merged session. The
// sources are removed wherever they were stored.
func (i *Interactor) MergeSessions(ctx context.Context, sessionIDs []string) (sessiondto.MergeOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sources := make([]*domain.Session, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		session, _, err := i.find(ctx, id)
		if err != nil {
			return sessiondto.MergeOutput{}, err
		}
		if err := i.ensureReleased(ctx, session); err != nil {
			return sessiondto.MergeOutput{}, err
		}
		sources = append(sources, session)
	}
	merged, err := i.svc.Merge(sources)
	if err != nil {
		return sessiondto.MergeOutput{}, err
	}
	entry := i.svc.NewUndo(domain.UndoMerge, i.policy.Window, sources, []string{merged.ID})

	if err := i.stores.Sessions.Save(ctx, merged); err != nil {
		return sessiondto.MergeOutput{}, err
	}
	for _, source := range sources {
		if err := i.remove(ctx, source.ID); err != nil {
			return sessiondto.MergeOutput{}, err
		}
	}
	out, err := i.project(ctx, merged)
	if err != nil {
		return sessiondto.MergeOutput{}, err
	}
	token, err := i.remember(ctx, entry)
	if err != nil {
		return sessiondto.MergeOutput{}, err
	}
	return sessiondto.MergeOutput{Session: out, Undo: token}, nil
}

// Undo reverts the operation behind token if its window is still open.
func (i *Interactor) Undo(ctx context.Context, token string) (sessiondto.UndoOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.stores.Undo == nil {
		return sessiondto.UndoOutput{}, apperrors.ErrUndoNotFound
	}
	entry, err := i.stores.Undo.Take(ctx, token)
	if err != nil {
		return sessiondto.UndoOutput{}, err
	}
	if err := entry.Usable(i.svc.Now()); err != nil {
		return sessiondto.UndoOutput{}, err
	}
	out := sessiondto.UndoOutput{Kind: string(entry.Kind)}
	for _, id := range entry.Discard {
		if err := i.remove(ctx, id); err != nil {
			return sessiondto.UndoOutput{}, err
		}
		out.Discarded = append(out.Discarded, id)
	}
	for _, snapshot := range entry.Restore {
		if err := i.restore(ctx, snapshot); err != nil {
			return sessiondto.UndoOutput{}, err
		}
		out.Restored = append(out.Restored, snapshot.ID)
	}
	i.logger.Info("undo applied", "kind", entry.Kind, "restored", out.Restored, "discarded", out.Discarded)
	return out, nil
}

// ensureReleased rejects sessions that are still open or registered as the
// active session of their identity.
func (i *Interactor) ensureReleased(ctx context.Context, session *domain.Session) error {
	if !session.Stopped() {
		return fmt.Errorf("%w: session %s", apperrors.ErrActiveSessionConflict, session.ID)
	}
	activeID, err := i.stores.Active.LoadActive(ctx, session.Identity)
	if err == nil && activeID == session.ID {
		return fmt.Errorf("%w: session %s", apperrors.ErrActiveSessionConflict, session.ID)
	}
	return nil
}

func (i *Interactor) remove(ctx context.Context, id string) error {
	if err := i.stores.Sessions.Delete(ctx, id); err != nil {
		return err
	}
	if i.stores.Archive != nil {
		if err := i.stores.Archive.Delete(ctx, id); err != nil {
			return err
		}
	}
	if i.stores.History != nil {
		return i.stores.History.Delete(ctx, id)
	}
	return nil
}

func (i *Interactor) restore(ctx context.Context, snapshot *domain.Session) error {
	target, other := i.stores.Sessions, i.stores.Archive
	if snapshot.Archived && i.stores.Archive != nil {
		target, other = i.stores.Archive, i.stores.Sessions
	}
	if err := target.Save(ctx, snapshot); err != nil {
		return err
	}
	if other != nil {
		if err := other.Delete(ctx, snapshot.ID); err != nil {
			return err
		}
	}
	_, err := i.project(ctx, snapshot)
	return err
}

func (i *Interactor) remember(ctx context.Context, entry domain.UndoEntry) (sessiondto.UndoToken, error) {
	if i.stores.Undo == nil {
		return sessiondto.UndoToken{}, nil
	}
	if err := i.stores.Undo.Prune(ctx, i.svc.Now()); err != nil {
		return sessiondto.UndoToken{}, err
	}
	if err := i.stores.Undo.Push(ctx, entry, i.policy.Depth); err != nil {
		return sessiondto.UndoToken{}, err
	}
	return sessiondto.UndoToken{Token: entry.Token, Kind: string(entry.Kind), ExpiresAt: entry.ExpiresAt}, nil
}
