package domain

import (
	"strings"

	ledger "lootledger/internal/modules/ledger/domain"
)

var (
	CashAccount        = ledger.NewAccount(ledger.CategoryAsset, "Cash")
	VendorSalesAccount = ledger.NewAccount(ledger.CategoryIncome, "VendorSales")
	RealizationAccount = ledger.NewAccount(ledger.CategoryEquity, "InventoryRealization")
)

const (
	InventoryPattern = "Assets:Inventory"
	LootedPattern    = "Income:ItemsLooted"
	CoinPattern      = "Income:Coin"
	IncomePattern    = "Income"
	ExpensePattern   = "Expenses"
)

func InventoryAccount(bucket string) ledger.Account {
	return ledger.NewAccount(ledger.CategoryAsset, "Inventory", bucket)
}

func LootedAccount(bucket string) ledger.Account {
	return ledger.NewAccount(ledger.CategoryIncome, "ItemsLooted", bucket)
}

func CoinAccount(source string) ledger.Account {
	return ledger.NewAccount(ledger.CategoryIncome, "Coin", strings.TrimSpace(source))
}

func ExpenseAccount(source string) ledger.Account {
	return ledger.NewAccount(ledger.CategoryExpense, strings.TrimSpace(source))
}
