package domain

import (
	"fmt"
	"sort"
	"strings"

	apperrors "lootledger/internal/platform/errors"
)

// Meta annotates a posting. It is informational only.
type Meta struct {
	Memo   string
	ItemID int64
}

// Ledger stores integer balances in the smallest currency unit, keyed by the
// rendered account path.
type Ledger struct {
	balances map[string]int64
	accounts map[string]Account
	postings int
}

func New() *Ledger {
	return &Ledger{balances: map[string]int64{}, accounts: map[string]Account{}}
}

// Post debits one account and credits another by amount. A zero amount is a
// successful no-op. Nothing is mutated when validation fails.
func (l *Ledger) Post(debit, credit Account, amount int64, _ Meta) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidAmount, amount)
	}
	if err := debit.Validate(); err != nil {
		return fmt.Errorf("%w: debit: %v", apperrors.ErrInvalidInput, err)
	}
	if err := credit.Validate(); err != nil {
		return fmt.Errorf("%w: credit: %v", apperrors.ErrInvalidInput, err)
	}
	if amount == 0 {
		return nil
	}
	l.apply(debit, amount*debitSign[debit.Category])
	l.apply(credit, -amount*debitSign[credit.Category])
	l.postings++
	return nil
}

func (l *Ledger) apply(account Account, delta int64) {
	key := account.String()
	if _, ok := l.accounts[key]; !ok {
		l.accounts[key] = NewAccount(account.Category, account.Path...)
	}
	l.balances[key] += delta
}

func (l *Ledger) Balance(account Account) int64 {
	return l.balances[account.String()]
}

// BalancesMatching returns balances of accounts under pattern. Pattern
// segments match exactly or via "*" for any single segment; an account
// matches when the pattern is a prefix of its segments.
func (l *Ledger) BalancesMatching(pattern string) map[string]int64 {
	want := strings.Split(strings.TrimSpace(pattern), ":")
	out := map[string]int64{}
	for key, account := range l.accounts {
		if matchPrefix(want, account.Segments()) {
			out[key] = l.balances[key]
		}
	}
	return out
}

func matchPrefix(pattern, segments []string) bool {
	if len(pattern) > len(segments) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != segments[i] {
			return false
		}
	}
	return true
}

// SumMatching totals BalancesMatching(pattern).
func (l *Ledger) SumMatching(pattern string) int64 {
	var total int64
	for _, v := range l.BalancesMatching(pattern) {
		total += v
	}
	return total
}

func (l *Ledger) CategoryTotal(category Category) int64 {
	var total int64
	for key, account := range l.accounts {
		if account.Category == category {
			total += l.balances[key]
		}
	}
	return total
}

// Imbalance is Σ debit-normal balances − Σ credit-normal balances. It is
// zero for any sequence of successful postings.
func (l *Ledger) Imbalance() int64 {
	var total int64
	for key, account := range l.accounts {
		total += debitSign[account.Category] * l.balances[key]
	}
	return total
}

// Accounts lists every touched account sorted by path.
func (l *Ledger) Accounts() []Account {
	keys := make([]string, 0, len(l.accounts))
	for key := range l.accounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Account, 0, len(keys))
	for _, key := range keys {
		a := l.accounts[key]
		out = append(out, NewAccount(a.Category, a.Path...))
	}
	return out
}

func (l *Ledger) PostingCount() int {
	return l.postings
}

func (l *Ledger) Clone() *Ledger {
	out := New()
	for key, account := range l.accounts {
		out.accounts[key] = NewAccount(account.Category, account.Path...)
		out.balances[key] = l.balances[key]
	}
	out.postings = l.postings
	return out
}

// Absorb adds every balance of other into l. Both ledgers are balanced, so
// the result is balanced as well.
func (l *Ledger) Absorb(other *Ledger) {
	for key, account := range other.accounts {
		l.apply(account, other.balances[key])
	}
	l.postings += other.postings
}

// Restore rebuilds a ledger from persisted balances. It rejects a balance
// set that does not conserve.
func Restore(balances map[string]int64, postings int) (*Ledger, error) {
	out := New()
	for key, value := range balances {
		account, err := ParseAccount(key)
		if err != nil {
			return nil, err
		}
		out.apply(account, value)
	}
	if imbalance := out.Imbalance(); imbalance != 0 {
		return nil, fmt.Errorf("%w: restored ledger is unbalanced by %d", apperrors.ErrInvalidInput, imbalance)
	}
	out.postings = postings
	return out, nil
}

// Balances returns a copy of every balance keyed by account path.
func (l *Ledger) Balances() map[string]int64 {
	out := make(map[string]int64, len(l.balances))
	for k, v := range l.balances {
		out[k] = v
	}
	return out
}
