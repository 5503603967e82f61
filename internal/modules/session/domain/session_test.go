package domain_test

import (
	"errors"
	"testing"
	"time"

	ledger "lootledger/internal/modules/ledger/domain"
	"lootledger/internal/modules/session/domain"
	apperrors "lootledger/internal/platform/errors"
)

var t0 = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func at(sec int) time.Time {
	return t0.Add(time.Duration(sec) * time.Second)
}

func newSession(t *testing.T, id string) *domain.Session {
	t.Helper()
	s, err := domain.New(id, "Thrall-Draenor", t0)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func assertIdentity(t *testing.T, s *domain.Session) {
	t.Helper()
	income := s.Ledger.SumMatching(domain.IncomePattern)
	expenses := s.Ledger.SumMatching(domain.ExpensePattern)
	if got, want := s.NetWorth(), income-expenses-s.Realized(); got != want {
		t.Fatalf("net worth identity broken: cash+holdings=%d income-expenses-realized=%d", got, want)
	}
	if inv := s.Ledger.SumMatching(domain.InventoryPattern); inv != s.Holdings.TotalExpectedValue() {
		t.Fatalf("inventory accounts %d disagree with holdings %d", inv, s.Holdings.TotalExpectedValue())
	}
	if s.Ledger.Imbalance() != 0 {
		t.Fatalf("ledger imbalance %d", s.Ledger.Imbalance())
	}
}

func TestLootThenSellCountsValueOnce(t *testing.T) {
	t.Parallel()
	s := newSession(t, "a")
	if err := s.BookAcquired(domain.ItemAcquired{ItemID: 4306, Count: 5}, domain.Appraisal{Name: "Silk Cloth", Bucket: "vendor_trash", ValuePerUnit: 10}); err != nil {
		t.Fatalf("loot: %v", err)
	}
	if s.Ledger.Balance(domain.InventoryAccount("vendor_trash")) != 50 || s.Ledger.Balance(domain.LootedAccount("vendor_trash")) != 50 {
		t.Fatalf("expected inventory and income legs of 50")
	}
	assertIdentity(t, s)
	if err := s.BookSold(domain.ItemSold{ItemID: 4306, Count: 5, Proceeds: 50}); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if s.Cash() != 50 || s.Ledger.Balance(domain.InventoryAccount("vendor_trash")) != 0 || s.Realized() != 50 {
		t.Fatalf("unexpected balances after sale: cash=%d realized=%d", s.Cash(), s.Realized())
	}
	if s.NetWorth() != 50 {
		t.Fatalf("net worth must change by exactly 50, got %d", s.NetWorth())
	}
	assertIdentity(t, s)
	agg := s.Items[4306]
	if agg.AcquiredCount != 5 || agg.DisposedCount != 5 || agg.Proceeds != 50 {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
}

func TestSellingPreSessionItemsIsPureIncome(t *testing.T) {
	t.Parallel()
	s := newSession(t, "b")
	if err := s.BookSold(domain.ItemSold{ItemID: 2589, Count: 3, Proceeds: 30}); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if s.Cash() != 30 || s.Realized() != 0 || s.Ledger.SumMatching(domain.InventoryPattern) != 0 {
		t.Fatalf("expected cash 30 with no reversal, got cash=%d realized=%d", s.Cash(), s.Realized())
	}
	assertIdentity(t, s)
}

func TestPauseGapIsExcludedFromDuration(t *testing.T) {
	t.Parallel()
	s := newSession(t, "e")
	if err := s.Pause(at(100)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.Accumulated != 100*time.Second {
		t.Fatalf("expected 100s accumulated, got %s", s.Accumulated)
	}
	if got := s.DurationAt(at(140)); got != 100*time.Second {
		t.Fatalf("duration must be frozen while paused, got %s", got)
	}
	if err := s.Resume(at(150)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := s.DurationAt(at(200)); got != 150*time.Second {
		t.Fatalf("expected 150s, got %s", got)
	}
}

func TestLoginSegmentsAndStop(t *testing.T) {
	t.Parallel()
	s := newSession(t, "seg")
	_ = s.Disconnect(at(60))
	if got := s.DurationAt(at(600)); got != 60*time.Second {
		t.Fatalf("disconnected time must not count, got %s", got)
	}
	_ = s.Connect(at(600))
	_ = s.Connect(at(610))
	if got := s.DurationAt(at(630)); got != 90*time.Second {
		t.Fatalf("expected 90s across two segments, got %s", got)
	}
	if err := s.Pause(at(630)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	_ = s.Connect(at(640))
	if s.LoginAt != nil {
		t.Fatalf("connect must not open a segment while paused")
	}
	if err := s.Pause(at(650)); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected double pause error, got %v", err)
	}
	if err := s.Stop(at(700)); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := s.DurationAt(at(9999)); got != 90*time.Second {
		t.Fatalf("stopped duration must be fixed, got %s", got)
	}
	if err := s.Resume(at(710)); !errors.Is(err, apperrors.ErrInvalidSession) {
		t.Fatalf("expected invalid session after stop, got %v", err)
	}
	if err := s.BookCurrency(domain.CurrencyChanged{Amount: 5, Source: "Looted"}); !errors.Is(err, apperrors.ErrInvalidSession) {
		t.Fatalf("stopped session must reject postings, got %v", err)
	}
}

func TestPostRejectsNilAndNegative(t *testing.T) {
	t.Parallel()
	var nilSession *domain.Session
	if err := nilSession.Post(domain.CashAccount, domain.VendorSalesAccount, 1, ledger.Meta{}); !errors.Is(err, apperrors.ErrInvalidSession) {
		t.Fatalf("expected invalid session, got %v", err)
	}
	s := newSession(t, "p")
	if err := s.Post(domain.CashAccount, domain.VendorSalesAccount, -1, ledger.Meta{}); !errors.Is(err, apperrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if s.Ledger.PostingCount() != 0 || s.Cash() != 0 {
		t.Fatalf("rejected post must not mutate")
	}
	if err := s.Post(domain.CashAccount, domain.VendorSalesAccount, 0, ledger.Meta{}); err != nil {
		t.Fatalf("zero post must succeed: %v", err)
	}
}

func TestCurrencyDirections(t *testing.T) {
	t.Parallel()
	s := newSession(t, "c")
	_ = s.BookCurrency(domain.CurrencyChanged{Amount: 500, Source: "Looted"})
	_ = s.BookCurrency(domain.CurrencyChanged{Amount: -120, Source: "Repairs"})
	if err := s.BookCurrency(domain.CurrencyChanged{Amount: 0, Source: "Looted"}); err != nil {
		t.Fatalf("zero delta must be a no-op: %v", err)
	}
	if s.Cash() != 380 || s.Ledger.Balance(domain.CoinAccount("Looted")) != 500 || s.Ledger.Balance(domain.ExpenseAccount("Repairs")) != 120 {
		t.Fatalf("unexpected currency balances: %v", s.Ledger.Balances())
	}
	if err := s.BookCurrency(domain.CurrencyChanged{Amount: 5, Source: "a:b"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid source, got %v", err)
	}
	assertIdentity(t, s)
}

func TestNetWorthIdentityOverMixedStream(t *testing.T) {
	t.Parallel()
	s := newSession(t, "mix")
	buckets := []string{"vendor_trash", "gathering", "rare_multi"}
	for i := int64(1); i <= 300; i++ {
		item := i%6 + 1
		var err error
		switch i % 5 {
		case 0, 1:
			err = s.BookAcquired(domain.ItemAcquired{ItemID: item, Count: i%4 + 1}, domain.Appraisal{Bucket: buckets[i%3], ValuePerUnit: (i * 7) % 53})
		case 2:
			err = s.BookSold(domain.ItemSold{ItemID: item, Count: i%3 + 1, Proceeds: i % 40})
		case 3:
			err = s.BookRemoved(domain.ItemRemoved{ItemID: item, Count: 2, Reason: "destroyed"})
		case 4:
			err = s.BookCurrency(domain.CurrencyChanged{Amount: i%21 - 10, Source: "Quest"})
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertIdentity(t, s)
	}
}

func TestCounterRollover(t *testing.T) {
	t.Parallel()
	if got := domain.RolloverDelta(900, 1000, 150); got != 250 {
		t.Fatalf("expected rollover delta 250, got %d", got)
	}
	if got := domain.RolloverDelta(100, 50, 10); got != 0 {
		t.Fatalf("delta must clamp to 0, got %d", got)
	}
	s := newSession(t, "xp")
	steps := []struct {
		value, max, want int64
	}{
		{400, 1000, 0},
		{700, 1000, 300},
		{100, 1200, 400},
		{100, 1200, 0},
	}
	for i, step := range steps {
		got, err := s.ObserveCounter(domain.CounterObserved{Name: "xp", Value: step.value, Max: step.max})
		if err != nil {
			t.Fatalf("observe %d: %v", i, err)
		}
		if got != step.want {
			t.Fatalf("observation %d: expected delta %d, got %d", i, step.want, got)
		}
	}
	if c := s.Counters["xp"]; c.Total != 700 || c.LastMax != 1200 {
		t.Fatalf("unexpected counter %+v", c)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()
	s := newSession(t, "clone")
	_ = s.BookAcquired(domain.ItemAcquired{ItemID: 1, Count: 1}, domain.Appraisal{Bucket: "gathering", ValuePerUnit: 9})
	c := s.Clone()
	_ = s.BookAcquired(domain.ItemAcquired{ItemID: 1, Count: 1}, domain.Appraisal{Bucket: "gathering", ValuePerUnit: 9})
	_ = s.Pause(at(10))
	if c.Holdings.Count(1) != 1 || c.Items[1].AcquiredCount != 1 || c.Ledger.SumMatching(domain.InventoryPattern) != 9 || c.Paused() {
		t.Fatalf("clone shares state with source")
	}
}

func TestMergeRules(t *testing.T) {
	t.Parallel()
	first := newSession(t, "m1")
	_ = first.BookAcquired(domain.ItemAcquired{ItemID: 7, Count: 2}, domain.Appraisal{Name: "Gem", Bucket: "rare_multi", ValuePerUnit: 100})
	_, _ = first.ObserveCounter(domain.CounterObserved{Name: "xp", Value: 10, Max: 100})
	_, _ = first.ObserveCounter(domain.CounterObserved{Name: "xp", Value: 60, Max: 100})
	_ = first.Stop(at(600))

	second, _ := domain.New("m2", "Thrall-Draenor", at(1000))
	_ = second.BookAcquired(domain.ItemAcquired{ItemID: 7, Count: 1}, domain.Appraisal{Name: "Gem", Bucket: "rare_multi", ValuePerUnit: 80})
	_ = second.BookCurrency(domain.CurrencyChanged{Amount: 40, Source: "Looted"})
	_ = second.Stop(at(1300))

	merged, err := domain.Merge("m3", []*domain.Session{second, first})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.StartedAt != t0 || !merged.EndedAt.Equal(at(1300)) || merged.Accumulated != 900*time.Second {
		t.Fatalf("unexpected merged timing: start=%s end=%s acc=%s", merged.StartedAt, merged.EndedAt, merged.Accumulated)
	}
	lots := merged.Holdings.Lots(7)
	if len(lots) != 2 || lots[0].ValuePerUnit != 100 || lots[1].ValuePerUnit != 80 {
		t.Fatalf("lots must stay in chronological order: %+v", lots)
	}
	if merged.Items[7].AcquiredCount != 3 || merged.Counters["xp"].Total != 50 || merged.Cash() != 40 {
		t.Fatalf("unexpected merged aggregates")
	}
	if len(merged.MergedFrom) != 2 || merged.MergedFrom[0] != "m1" {
		t.Fatalf("unexpected merged_from %v", merged.MergedFrom)
	}
	assertIdentity(t, merged)
	if first.Holdings.Count(7) != 2 {
		t.Fatalf("merge must not modify inputs")
	}

	other, _ := domain.New("o", "Jaina-Proudmoore", at(0))
	_ = other.Stop(at(5))
	if _, err := domain.Merge("x", []*domain.Session{first, other}); !errors.Is(err, apperrors.ErrMergeOwnerMismatch) {
		t.Fatalf("expected owner mismatch, got %v", err)
	}
	open := newSession(t, "open")
	if _, err := domain.Merge("x", []*domain.Session{first, open}); !errors.Is(err, apperrors.ErrActiveSessionConflict) {
		t.Fatalf("expected active conflict, got %v", err)
	}
}

func TestIdentityValidation(t *testing.T) {
	t.Parallel()
	for _, bad := range []string{"", "Thrall", "-Draenor", "Thrall-"} {
		if _, err := domain.New("id", bad, t0); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("identity %q should be rejected, got %v", bad, err)
		}
	}
}

func TestUndoEntryExpiry(t *testing.T) {
	t.Parallel()
	entry := domain.UndoEntry{Token: "tok", ExpiresAt: at(60)}
	if err := entry.Usable(at(60)); err != nil {
		t.Fatalf("entry must be usable at expiry: %v", err)
	}
	if err := entry.Usable(at(61)); !errors.Is(err, apperrors.ErrUndoExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}
