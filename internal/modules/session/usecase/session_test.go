package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sessionadapter "lootledger/internal/modules/session/adapter/out"
	"lootledger/internal/modules/session/domain"
	sessiondto "lootledger/internal/modules/session/dto"
	sessionin "lootledger/internal/modules/session/port/in"
	"lootledger/internal/modules/session/service"
	"lootledger/internal/modules/session/usecase"
	apperrors "lootledger/internal/platform/errors"
	"lootledger/internal/platform/logging"
)

const thrall = "Thrall-Draenor"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id%03d", g.n)
}

type fakeAppraiser struct {
	items map[int64]domain.Appraisal
}

func (f fakeAppraiser) Appraise(_ context.Context, itemID int64) (domain.Appraisal, error) {
	a, ok := f.items[itemID]
	if !ok {
		return domain.Appraisal{}, fmt.Errorf("%w: item %d", apperrors.ErrUnresolvedItem, itemID)
	}
	return a, nil
}

type harness struct {
	uc    sessionin.Usecase
	clock *fakeClock
	dir   string
}

func newHarness(t *testing.T, withHistory bool) harness {
	t.Helper()
	dir := t.TempDir()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	appraiser := fakeAppraiser{items: map[int64]domain.Appraisal{
		2589: {ItemID: 2589, Name: "Linen Cloth", Bucket: "gathering", ValuePerUnit: 255},
		4306: {ItemID: 4306, Name: "Silk Cloth", Bucket: "vendor_trash", ValuePerUnit: 10},
	}}
	stores := usecase.Stores{
		Sessions: sessionadapter.NewYAMLSessionStore(filepath.Join(dir, "sessions")),
		Archive:  sessionadapter.NewZstdArchiveStore(filepath.Join(dir, "archive")),
		Active:   sessionadapter.NewFileActiveSessionStore(filepath.Join(dir, "active")),
		Undo:     sessionadapter.NewFileUndoJournal(filepath.Join(dir, "undo")),
		Reports:  sessionadapter.NewMarkdownReportStore(filepath.Join(dir, "reports")),
	}
	if withHistory {
		projector, err := sessionadapter.NewSQLiteHistoryProjector(filepath.Join(dir, "history.db"))
		if err != nil {
			t.Fatalf("open history: %v", err)
		}
		t.Cleanup(func() { _ = projector.Close() })
		stores.History = projector
	}
	svc := service.NewSessionService(clock, &seqIDs{}, appraiser, logging.Discard())
	uc := usecase.NewInteractor(svc, stores, usecase.UndoPolicy{Window: 10 * time.Minute, Depth: 4}, logging.Discard())
	return harness{uc: uc, clock: clock, dir: dir}
}

func (h harness) start(t *testing.T, identity string) sessiondto.SessionOutput {
	t.Helper()
	out, err := h.uc.StartSession(context.Background(), sessiondto.StartInput{Identity: identity})
	if err != nil {
		t.Fatalf("start %s: %v", identity, err)
	}
	return out
}

func (h harness) stop(t *testing.T, identity string) sessiondto.SessionOutput {
	t.Helper()
	out, err := h.uc.StopSession(context.Background(), identity)
	if err != nil {
		t.Fatalf("stop %s: %v", identity, err)
	}
	return out
}

func (h harness) signal(t *testing.T, input sessiondto.SignalInput) sessiondto.SignalOutput {
	t.Helper()
	out, err := h.uc.ApplySignal(context.Background(), input)
	if err != nil {
		t.Fatalf("signal %s: %v", input.Kind, err)
	}
	return out
}

func TestStartRejectsSecondActiveSessionPerIdentity(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	h.start(t, thrall)
	if _, err := h.uc.StartSession(context.Background(), sessiondto.StartInput{Identity: thrall}); !errors.Is(err, apperrors.ErrSessionAlreadyActive) {
		t.Fatalf("expected already active, got %v", err)
	}
	h.start(t, "Jaina-Proudmoore")
	if _, err := h.uc.StartSession(context.Background(), sessiondto.StartInput{Identity: "nodash"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid identity, got %v", err)
	}
}

func TestIdentitiesDifferingInCaseKeepSeparateSessions(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	first := h.start(t, "Thrall-Draenor")
	second := h.start(t, "thrall-draenor")
	if first.ID == second.ID {
		t.Fatalf("expected distinct sessions, both %s", first.ID)
	}
	status, err := h.uc.GetActive(context.Background(), "Thrall-Draenor")
	if err != nil || status.ID != first.ID {
		t.Fatalf("first identity lost its session: %+v %v", status, err)
	}
	if stopped := h.stop(t, "Thrall-Draenor"); stopped.ID != first.ID {
		t.Fatalf("stopped %s, want %s", stopped.ID, first.ID)
	}
	if stopped := h.stop(t, "thrall-draenor"); stopped.ID != second.ID {
		t.Fatalf("stopped %s, want %s", stopped.ID, second.ID)
	}
}

func TestSignalsRequireActiveSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	_, err := h.uc.ApplySignal(context.Background(), sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalCurrencyChanged, Amount: 10, Source: "Loot"})
	if !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
	if _, err := h.uc.PauseSession(context.Background(), thrall); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session on pause, got %v", err)
	}
}

func TestLootSellAndCurrencyFlow(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	ctx := context.Background()
	h.start(t, thrall)

	looted := h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemAcquired, ItemID: 2589, Count: 4})
	if looted.Bucket != "gathering" || looted.ValuePerUnit != 255 || looted.NetWorth != 1020 {
		t.Fatalf("unexpected loot output: %+v", looted)
	}
	sold := h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemSold, ItemID: 2589, Count: 2, Proceeds: 600})
	if sold.Reversed != 510 || sold.NetWorth != 1020-510+600 {
		t.Fatalf("unexpected sale output: %+v", sold)
	}
	spent := h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalCurrencyChanged, Amount: -110, Source: "Repairs"})
	if spent.NetWorth != 1000 {
		t.Fatalf("unexpected net worth after repairs: %+v", spent)
	}
	first := h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalCounterObserved, Name: "xp", Value: 900, Max: 1000})
	second := h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalCounterObserved, Name: "xp", Value: 100, Max: 1100})
	if first.CounterDelta != 0 || second.CounterDelta != 200 {
		t.Fatalf("unexpected counter deltas: %d %d", first.CounterDelta, second.CounterDelta)
	}

	active, err := h.uc.GetActive(ctx, thrall)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.Cash != 490 || active.Inventory != 510 || active.Realized != 510 || active.Expenses != 110 {
		t.Fatalf("unexpected summary: %+v", active)
	}
	if active.NetWorth != active.Income-active.Expenses-active.Realized {
		t.Fatalf("net worth identity broken: %+v", active)
	}
}

func TestUnresolvedItemLeavesSessionUntouched(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	ctx := context.Background()
	h.start(t, thrall)
	_, err := h.uc.ApplySignal(ctx, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemAcquired, ItemID: 99999, Count: 1})
	if !errors.Is(err, apperrors.ErrUnresolvedItem) {
		t.Fatalf("expected unresolved item, got %v", err)
	}
	snap, err := h.uc.Snapshot(ctx, sessiondto.SnapshotInput{Identity: thrall})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Session.Ledger.PostingCount() != 0 || len(snap.Session.Holdings.Items()) != 0 {
		t.Fatalf("session mutated by rejected signal")
	}
	_, err = h.uc.ApplySignal(ctx, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemSold, ItemID: 2589, Count: 1, Proceeds: -5})
	if !errors.Is(err, apperrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := h.uc.ApplySignal(ctx, sessiondto.SignalInput{Identity: thrall, Kind: "teleport"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected unknown kind rejection, got %v", err)
	}
}

func TestPauseResumeAndStopDuration(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	ctx := context.Background()
	h.start(t, thrall)
	h.clock.Advance(20 * time.Minute)
	if _, err := h.uc.PauseSession(ctx, thrall); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := h.uc.PauseSession(ctx, thrall); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected double pause rejection, got %v", err)
	}
	h.clock.Advance(time.Hour)
	if _, err := h.uc.ResumeSession(ctx, thrall); err != nil {
		t.Fatalf("resume: %v", err)
	}
	h.clock.Advance(10 * time.Minute)
	stopped := h.stop(t, thrall)
	if stopped.DurationSec != 30*60 || stopped.Status != domain.StatusStopped || stopped.EndedAt == nil {
		t.Fatalf("unexpected stopped session: %+v", stopped)
	}
	if _, err := h.uc.GetActive(ctx, thrall); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after stop, got %v", err)
	}
	report := filepath.Join(h.dir, "reports", "thrall-draenor", stopped.ID+".md")
	if _, err := os.Stat(report); err != nil {
		t.Fatalf("expected report at stop: %v", err)
	}
	h.clock.Advance(time.Hour)
	again, err := h.uc.GetSession(ctx, stopped.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.DurationSec != 30*60 {
		t.Fatalf("stopped duration must not grow: %d", again.DurationSec)
	}
	h.start(t, thrall)
}

func TestStaleActivePointerIsCleared(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	ctx := context.Background()
	started := h.start(t, thrall)
	if err := os.Remove(filepath.Join(h.dir, "sessions", started.ID+".yaml")); err != nil {
		t.Fatalf("remove session file: %v", err)
	}
	if _, err := h.uc.GetActive(ctx, thrall); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected stale pointer to read as no session, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.dir, "active", "thrall-draenor.json")); !os.IsNotExist(err) {
		t.Fatalf("stale pointer should be removed, stat err %v", err)
	}
	h.start(t, thrall)
}

func TestArchiveAndUndo(t *testing.T) {
	t.Parallel()
	h := newHarness(t, true)
	ctx := context.Background()
	started := h.start(t, thrall)
	if _, err := h.uc.ArchiveSession(ctx, started.ID); !errors.Is(err, apperrors.ErrActiveSessionConflict) {
		t.Fatalf("expected active conflict, got %v", err)
	}
	h.stop(t, thrall)
	token, err := h.uc.ArchiveSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if token.Token == "" || token.Kind != string(domain.UndoArchive) {
		t.Fatalf("unexpected token: %+v", token)
	}
	archived, err := h.uc.GetSession(ctx, started.ID)
	if err != nil || archived.Status != domain.StatusArchived {
		t.Fatalf("expected archived session, got %+v %v", archived, err)
	}
	visible, err := h.uc.ListSessions(ctx, sessiondto.ListInput{Identity: thrall})
	if err != nil || len(visible) != 0 {
		t.Fatalf("archived sessions hidden by default, got %d %v", len(visible), err)
	}

	undone, err := h.uc.Undo(ctx, token.Token)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(undone.Restored) != 1 || undone.Restored[0] != started.ID {
		t.Fatalf("unexpected undo output: %+v", undone)
	}
	restored, err := h.uc.GetSession(ctx, started.ID)
	if err != nil || restored.Status != domain.StatusStopped {
		t.Fatalf("expected stopped session after undo, got %+v %v", restored, err)
	}
	if _, err := h.uc.Undo(ctx, token.Token); !errors.Is(err, apperrors.ErrUndoNotFound) {
		t.Fatalf("token must be single use, got %v", err)
	}
}

func TestDeleteUndoExpires(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	ctx := context.Background()
	started := h.start(t, thrall)
	h.stop(t, thrall)
	token, err := h.uc.DeleteSession(ctx, started.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := h.uc.GetSession(ctx, started.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
	h.clock.Advance(11 * time.Minute)
	if _, err := h.uc.Undo(ctx, token.Token); !errors.Is(err, apperrors.ErrUndoExpired) {
		t.Fatalf("expected expired undo, got %v", err)
	}
	if _, err := h.uc.GetSession(ctx, started.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expired undo must not restore, got %v", err)
	}
}

func TestMergeAndUndo(t *testing.T) {
	t.Parallel()
	h := newHarness(t, true)
	ctx := context.Background()

	first := h.start(t, thrall)
	h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemAcquired, ItemID: 4306, Count: 3})
	h.clock.Advance(30 * time.Minute)
	h.stop(t, thrall)
	h.clock.Advance(time.Hour)
	second := h.start(t, thrall)
	h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalCurrencyChanged, Amount: 500, Source: "Quest"})
	h.clock.Advance(15 * time.Minute)
	h.stop(t, thrall)

	other := h.start(t, "Jaina-Proudmoore")
	h.stop(t, "Jaina-Proudmoore")
	if _, err := h.uc.MergeSessions(ctx, []string{first.ID, other.ID}); !errors.Is(err, apperrors.ErrMergeOwnerMismatch) {
		t.Fatalf("expected owner mismatch, got %v", err)
	}

	merged, err := h.uc.MergeSessions(ctx, []string{second.ID, first.ID})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Session.DurationSec != 45*60 || merged.Session.NetWorth != 530 || len(merged.Session.MergedFrom) != 2 {
		t.Fatalf("unexpected merged session: %+v", merged.Session)
	}
	listed, err := h.uc.ListSessions(ctx, sessiondto.ListInput{Identity: thrall})
	if err != nil || len(listed) != 1 || listed[0].ID != merged.Session.ID {
		t.Fatalf("expected only the merged session listed, got %+v %v", listed, err)
	}

	undone, err := h.uc.Undo(ctx, merged.Undo.Token)
	if err != nil {
		t.Fatalf("undo merge: %v", err)
	}
	if len(undone.Restored) != 2 || len(undone.Discarded) != 1 {
		t.Fatalf("unexpected undo output: %+v", undone)
	}
	if _, err := h.uc.GetSession(ctx, merged.Session.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("merged session should be discarded, got %v", err)
	}
	listed, err = h.uc.ListSessions(ctx, sessiondto.ListInput{Identity: thrall})
	if err != nil || len(listed) != 2 {
		t.Fatalf("expected sources restored, got %+v %v", listed, err)
	}
}

func TestReindexRebuildsHistory(t *testing.T) {
	t.Parallel()
	h := newHarness(t, true)
	ctx := context.Background()
	h.start(t, thrall)
	h.stop(t, thrall)
	h.start(t, "Jaina-Proudmoore")
	if err := h.uc.Reindex(ctx); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	all, err := h.uc.ListSessions(ctx, sessiondto.ListInput{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected two indexed sessions, got %d %v", len(all), err)
	}
}

func TestListSessionsReportsLiveDurationForOpenSessions(t *testing.T) {
	t.Parallel()
	h := newHarness(t, true)
	ctx := context.Background()
	h.start(t, "Jaina-Proudmoore")
	h.clock.Advance(5 * time.Minute)
	h.stop(t, "Jaina-Proudmoore")
	h.start(t, thrall)
	h.clock.Advance(45 * time.Minute)
	listed, err := h.uc.ListSessions(ctx, sessiondto.ListInput{})
	if err != nil || len(listed) != 2 {
		t.Fatalf("list: %d %v", len(listed), err)
	}
	for _, row := range listed {
		want := int64(45 * 60)
		if row.Identity == "Jaina-Proudmoore" {
			want = 5 * 60
		}
		if row.DurationSec != want {
			t.Fatalf("%s duration = %d, want %d", row.Identity, row.DurationSec, want)
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()
	h := newHarness(t, false)
	ctx := context.Background()
	h.start(t, thrall)
	h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemAcquired, ItemID: 2589, Count: 1})
	snap, err := h.uc.Snapshot(ctx, sessiondto.SnapshotInput{Identity: thrall})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	before := snap.Session.NetWorth()
	h.signal(t, sessiondto.SignalInput{Identity: thrall, Kind: sessiondto.SignalItemAcquired, ItemID: 2589, Count: 1})
	if snap.Session.NetWorth() != before {
		t.Fatalf("snapshot changed after later signal")
	}
}
