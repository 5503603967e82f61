package domain

import (
	"fmt"
	"sort"

	ledger "lootledger/internal/modules/ledger/domain"
)

// ItemAggregate is the per-item reporting summary.
type ItemAggregate struct {
	Name          string
	Bucket        string
	AcquiredCount int64
	AcquiredValue int64
	DisposedCount int64
	Proceeds      int64
}

// Appraisal is the valuation snapshot an acquisition is booked at.
type Appraisal struct {
	ItemID       int64
	Name         string
	Bucket       string
	ValuePerUnit int64
}

type posting struct {
	debit  ledger.Account
	credit ledger.Account
	amount int64
	meta   ledger.Meta
}

// Post is the session-scoped entry point to the ledger.
func (s *Session) Post(debit, credit ledger.Account, amount int64, meta ledger.Meta) error {
	return s.postAll([]posting{{debit: debit, credit: credit, amount: amount, meta: meta}})
}

// postAll validates every leg before applying any of them.
func (s *Session) postAll(legs []posting) error {
	if err := s.Mutable(); err != nil {
		return err
	}
	probe := ledger.New()
	for _, leg := range legs {
		if err := probe.Post(leg.debit, leg.credit, leg.amount, leg.meta); err != nil {
			return err
		}
	}
	for _, leg := range legs {
		if err := s.Ledger.Post(leg.debit, leg.credit, leg.amount, leg.meta); err != nil {
			return fmt.Errorf("apply validated posting: %w", err)
		}
	}
	return nil
}

func (s *Session) BookAcquired(sig ItemAcquired, appraisal Appraisal) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	if appraisal.ValuePerUnit < 0 {
		return fmt.Errorf("negative appraisal for item %d", sig.ItemID)
	}
	value := sig.Count * appraisal.ValuePerUnit
	meta := ledger.Meta{Memo: "loot", ItemID: sig.ItemID}
	if err := s.postAll([]posting{{InventoryAccount(appraisal.Bucket), LootedAccount(appraisal.Bucket), value, meta}}); err != nil {
		return err
	}
	s.Holdings.AddLot(sig.ItemID, sig.Count, appraisal.ValuePerUnit, appraisal.Bucket)
	agg := s.aggregate(sig.ItemID)
	agg.Name = appraisal.Name
	agg.Bucket = appraisal.Bucket
	agg.AcquiredCount += sig.Count
	agg.AcquiredValue += value
	return nil
}

// BookSold credits the cash proceeds and reverses whatever booked inventory
// value the sold units carried. Units without holdings reverse nothing.
func (s *Session) BookSold(sig ItemSold) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	if err := s.Mutable(); err != nil {
		return err
	}
	consumed := s.Holdings.Clone().Consume(sig.ItemID, sig.Count)
	legs := []posting{{CashAccount, VendorSalesAccount, sig.Proceeds, ledger.Meta{Memo: "vendor sale", ItemID: sig.ItemID}}}
	legs = append(legs, reversalLegs(sig.ItemID, consumed.ByBucket)...)
	if err := s.postAll(legs); err != nil {
		return err
	}
	s.Holdings.Consume(sig.ItemID, sig.Count)
	agg := s.aggregate(sig.ItemID)
	agg.DisposedCount += sig.Count
	agg.Proceeds += sig.Proceeds
	return nil
}

// BookRemoved reverses booked value for items that left inventory without
// cash, e.g. destroyed, mailed or traded away.
func (s *Session) BookRemoved(sig ItemRemoved) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	if err := s.Mutable(); err != nil {
		return err
	}
	consumed := s.Holdings.Clone().Consume(sig.ItemID, sig.Count)
	if err := s.postAll(reversalLegs(sig.ItemID, consumed.ByBucket)); err != nil {
		return err
	}
	s.Holdings.Consume(sig.ItemID, sig.Count)
	s.aggregate(sig.ItemID).DisposedCount += sig.Count
	return nil
}

func (s *Session) BookCurrency(sig CurrencyChanged) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	meta := ledger.Meta{Memo: "currency"}
	switch {
	case sig.Amount > 0:
		return s.postAll([]posting{{CashAccount, CoinAccount(sig.Source), sig.Amount, meta}})
	case sig.Amount < 0:
		return s.postAll([]posting{{ExpenseAccount(sig.Source), CashAccount, -sig.Amount, meta}})
	default:
		return s.Mutable()
	}
}

// ObserveCounter feeds a reading into the named counter and returns the
// delta it contributed.
func (s *Session) ObserveCounter(sig CounterObserved) (int64, error) {
	if err := sig.Validate(); err != nil {
		return 0, err
	}
	if err := s.Mutable(); err != nil {
		return 0, err
	}
	c, ok := s.Counters[sig.Name]
	if !ok {
		c = &Counter{}
		s.Counters[sig.Name] = c
	}
	return c.Observe(sig.Value, sig.Max), nil
}

func reversalLegs(itemID int64, byBucket map[string]int64) []posting {
	buckets := make([]string, 0, len(byBucket))
	for bucket := range byBucket {
		buckets = append(buckets, bucket)
	}
	sort.Strings(buckets)
	legs := make([]posting, 0, len(buckets))
	for _, bucket := range buckets {
		legs = append(legs, posting{RealizationAccount, InventoryAccount(bucket), byBucket[bucket], ledger.Meta{Memo: "fifo reversal", ItemID: itemID}})
	}
	return legs
}

func (s *Session) aggregate(itemID int64) *ItemAggregate {
	agg, ok := s.Items[itemID]
	if !ok {
		agg = &ItemAggregate{}
		s.Items[itemID] = agg
	}
	return agg
}

// Cash is the realized coin balance.
func (s *Session) Cash() int64 {
	return s.Ledger.Balance(CashAccount)
}

// Realized is the booked inventory value reversed through sales and
// removals. It is the equity adjustment of the net worth identity.
func (s *Session) Realized() int64 {
	return -s.Ledger.Balance(RealizationAccount)
}

// NetWorth is cash plus the expected value of remaining holdings.
func (s *Session) NetWorth() int64 {
	return s.Cash() + s.Holdings.TotalExpectedValue()
}
