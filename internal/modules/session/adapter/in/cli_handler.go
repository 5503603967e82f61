package in

import (
	"context"

	sessiondto "lootledger/internal/modules/session/dto"
	sessionin "lootledger/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.StartSession(ctx, sessiondto.StartInput{Identity: identity})
}

func (h CLIHandler) Pause(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.PauseSession(ctx, identity)
}

func (h CLIHandler) Resume(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.ResumeSession(ctx, identity)
}

func (h CLIHandler) Stop(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.StopSession(ctx, identity)
}

func (h CLIHandler) Connect(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.Connect(ctx, identity)
}

func (h CLIHandler) Disconnect(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.Disconnect(ctx, identity)
}

func (h CLIHandler) Loot(ctx context.Context, identity string, itemID, count int64) (sessiondto.SignalOutput, error) {
	return h.usecase.ApplySignal(ctx, sessiondto.SignalInput{Identity: identity, Kind: sessiondto.SignalItemAcquired, ItemID: itemID, Count: count})
}

func (h CLIHandler) Sell(ctx context.Context, identity string, itemID, count, proceeds int64) (sessiondto.SignalOutput, error) {
	return h.usecase.ApplySignal(ctx, sessiondto.SignalInput{Identity: identity, Kind: sessiondto.SignalItemSold, ItemID: itemID, Count: count, Proceeds: proceeds})
}

func (h CLIHandler) Remove(ctx context.Context, identity string, itemID, count int64, reason string) (sessiondto.SignalOutput, error) {
	return h.usecase.ApplySignal(ctx, sessiondto.SignalInput{Identity: identity, Kind: sessiondto.SignalItemRemoved, ItemID: itemID, Count: count, Reason: reason})
}

func (h CLIHandler) Money(ctx context.Context, identity string, amount int64, source string) (sessiondto.SignalOutput, error) {
	return h.usecase.ApplySignal(ctx, sessiondto.SignalInput{Identity: identity, Kind: sessiondto.SignalCurrencyChanged, Amount: amount, Source: source})
}

func (h CLIHandler) Counter(ctx context.Context, identity, name string, value, max int64) (sessiondto.SignalOutput, error) {
	return h.usecase.ApplySignal(ctx, sessiondto.SignalInput{Identity: identity, Kind: sessiondto.SignalCounterObserved, Name: name, Value: value, Max: max})
}

func (h CLIHandler) Archive(ctx context.Context, sessionID string) (sessiondto.UndoToken, error) {
	return h.usecase.ArchiveSession(ctx, sessionID)
}

func (h CLIHandler) Delete(ctx context.Context, sessionID string) (sessiondto.UndoToken, error) {
	return h.usecase.DeleteSession(ctx, sessionID)
}

func (h CLIHandler) Merge(ctx context.Context, sessionIDs []string) (sessiondto.MergeOutput, error) {
	return h.usecase.MergeSessions(ctx, sessionIDs)
}

func (h CLIHandler) Undo(ctx context.Context, token string) (sessiondto.UndoOutput, error) {
	return h.usecase.Undo(ctx, token)
}

func (h CLIHandler) Show(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error) {
	return h.usecase.GetSession(ctx, sessionID)
}

func (h CLIHandler) Active(ctx context.Context, identity string) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx, identity)
}

func (h CLIHandler) List(ctx context.Context, identity string, includeArchived bool) ([]sessiondto.SessionOutput, error) {
	return h.usecase.ListSessions(ctx, sessiondto.ListInput{Identity: identity, IncludeArchived: includeArchived})
}

func (h CLIHandler) Report(ctx context.Context, sessionID string) (sessiondto.ReportOutput, error) {
	return h.usecase.ExportReport(ctx, sessionID)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
