package domain

import (
	"fmt"
	"strings"
)

// Category is the closed set of account kinds. It fixes posting polarity.
type Category int

const (
	CategoryAsset Category = iota + 1
	CategoryIncome
	CategoryExpense
	CategoryEquity
)

// debitSign is +1 for categories that grow on debit and -1 for those that
// grow on credit.
var debitSign = map[Category]int64{
	CategoryAsset:   1,
	CategoryExpense: 1,
	CategoryIncome:  -1,
	CategoryEquity:  -1,
}

var categoryRoots = map[Category]string{
	CategoryAsset:   "Assets",
	CategoryIncome:  "Income",
	CategoryExpense: "Expenses",
	CategoryEquity:  "Equity",
}

var rootCategories = map[string]Category{
	"Assets":   CategoryAsset,
	"Income":   CategoryIncome,
	"Expenses": CategoryExpense,
	"Equity":   CategoryEquity,
}

func (c Category) String() string {
	if root, ok := categoryRoots[c]; ok {
		return root
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

func (c Category) Validate() error {
	if _, ok := debitSign[c]; !ok {
		return fmt.Errorf("unknown account category: %d", int(c))
	}
	return nil
}

// DebitNormal reports whether debits increase the balance.
func (c Category) DebitNormal() bool {
	return debitSign[c] > 0
}

// Account is a category plus a structured path below its root.
type Account struct {
	Category Category
	Path     []string
}

func NewAccount(category Category, path ...string) Account {
	return Account{Category: category, Path: append([]string(nil), path...)}
}

// ParseAccount resolves "Root:Seg:Seg". The root segment must match a known
// category exactly.
func ParseAccount(raw string) (Account, error) {
	segments := strings.Split(strings.TrimSpace(raw), ":")
	category, ok := rootCategories[segments[0]]
	if !ok {
		return Account{}, fmt.Errorf("unknown account root in %q", raw)
	}
	for _, seg := range segments[1:] {
		if seg == "" {
			return Account{}, fmt.Errorf("empty segment in account %q", raw)
		}
	}
	return NewAccount(category, segments[1:]...), nil
}

func (a Account) Validate() error {
	if err := a.Category.Validate(); err != nil {
		return err
	}
	for _, seg := range a.Path {
		if seg == "" || strings.Contains(seg, ":") {
			return fmt.Errorf("invalid account segment %q", seg)
		}
	}
	return nil
}

// Segments returns the full path including the root.
func (a Account) Segments() []string {
	return append([]string{a.Category.String()}, a.Path...)
}

func (a Account) String() string {
	return strings.Join(a.Segments(), ":")
}

// Leaf is the last path segment, or the root for a bare category account.
func (a Account) Leaf() string {
	if len(a.Path) == 0 {
		return a.Category.String()
	}
	return a.Path[len(a.Path)-1]
}
