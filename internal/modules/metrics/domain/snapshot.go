package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"

	sessiondomain "lootledger/internal/modules/session/domain"
)

// Category names, in display order.
const (
	CategoryNetWorth    = "net_worth"
	CategoryCash        = "cash"
	CategoryInventory   = "inventory"
	CategoryIncome      = "income"
	CategoryLooted      = "looted"
	CategoryCoin        = "coin"
	CategoryVendorSales = "vendor_sales"
	CategoryExpenses    = "expenses"
	CategoryRealized    = "realized"
)

// Category is a running total together with its hourly rate.
type Category struct {
	Name  string
	Total int64
	Rate  int64
}

type CounterStat struct {
	Name  string
	Total int64
	Rate  int64
}

// Snapshot is the read-only metrics view of one session at one instant.
type Snapshot struct {
	SessionID   string
	Identity    string
	Status      string
	At          time.Time
	DurationSec int64
	Categories  []Category
	Buckets     []Line
	TopItems    Breakdown
	TopIncome   Breakdown
	TopExpenses Breakdown
	Counters    []CounterStat
}

// Category returns the named category, or a zero value.
func (s Snapshot) Category(name string) Category {
	for _, c := range s.Categories {
		if c.Name == name {
			return c
		}
	}
	return Category{Name: name}
}

// Build computes metrics from a session without modifying it.
func Build(session *sessiondomain.Session, now time.Time, topN int) Snapshot {
	elapsed := session.DurationAt(now)
	ledger := session.Ledger
	totals := []Category{
		{Name: CategoryNetWorth, Total: session.NetWorth()},
		{Name: CategoryCash, Total: session.Cash()},
		{Name: CategoryInventory, Total: session.Holdings.TotalExpectedValue()},
		{Name: CategoryIncome, Total: ledger.SumMatching(sessiondomain.IncomePattern)},
		{Name: CategoryLooted, Total: ledger.SumMatching(sessiondomain.LootedPattern)},
		{Name: CategoryCoin, Total: ledger.SumMatching(sessiondomain.CoinPattern)},
		{Name: CategoryVendorSales, Total: ledger.Balance(sessiondomain.VendorSalesAccount)},
		{Name: CategoryExpenses, Total: ledger.SumMatching(sessiondomain.ExpensePattern)},
		{Name: CategoryRealized, Total: session.Realized()},
	}
	for i := range totals {
		totals[i].Rate = Rate(totals[i].Total, elapsed)
	}

	snap := Snapshot{
		SessionID:   session.ID,
		Identity:    session.Identity,
		Status:      session.Status(),
		At:          now,
		DurationSec: int64(elapsed / time.Second),
		Categories:  totals,
		TopIncome:   TopN(accountLines(ledger.BalancesMatching(sessiondomain.IncomePattern)), topN),
		TopExpenses: TopN(accountLines(ledger.BalancesMatching(sessiondomain.ExpensePattern)), topN),
		TopItems:    TopN(itemLines(session.Items), topN),
	}

	for bucket, value := range session.Holdings.ValueByBucket() {
		snap.Buckets = append(snap.Buckets, Line{Label: bucket, Amount: value})
	}
	sort.Slice(snap.Buckets, func(i, j int) bool { return snap.Buckets[i].Label < snap.Buckets[j].Label })

	names := make([]string, 0, len(session.Counters))
	for name := range session.Counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		total := session.Counters[name].Total
		snap.Counters = append(snap.Counters, CounterStat{Name: name, Total: total, Rate: Rate(total, elapsed)})
	}
	return snap
}

// accountLines drops the root segment and zero balances.
func accountLines(balances map[string]int64) []Line {
	out := make([]Line, 0, len(balances))
	for key, amount := range balances {
		if amount == 0 {
			continue
		}
		label := key
		if _, rest, ok := strings.Cut(key, ":"); ok {
			label = rest
		}
		out = append(out, Line{Label: label, Amount: amount})
	}
	return out
}

func itemLines(items map[int64]*sessiondomain.ItemAggregate) []Line {
	out := make([]Line, 0, len(items))
	for id, agg := range items {
		if agg.AcquiredValue == 0 {
			continue
		}
		label := agg.Name
		if label == "" {
			label = "item " + strconv.FormatInt(id, 10)
		}
		out = append(out, Line{Label: label, Amount: agg.AcquiredValue})
	}
	return out
}
