package domain

import (
	"fmt"
	"strings"

	apperrors "lootledger/internal/platform/errors"
)

// Signal is a classified activity event. Attribution is decided by the
// caller before the signal is built.
type Signal interface {
	Kind() string
	Validate() error
}

type ItemAcquired struct {
	ItemID int64
	Count  int64
}

type ItemSold struct {
	ItemID   int64
	Count    int64
	Proceeds int64
}

type ItemRemoved struct {
	ItemID int64
	Count  int64
	Reason string
}

// CurrencyChanged is a coin delta. Positive amounts are income, negative
// amounts are expenses, both attributed to Source.
type CurrencyChanged struct {
	Amount int64
	Source string
}

type CounterObserved struct {
	Name  string
	Value int64
	Max   int64
}

func (ItemAcquired) Kind() string    { return "item_acquired" }
func (ItemSold) Kind() string        { return "item_sold" }
func (ItemRemoved) Kind() string     { return "item_removed" }
func (CurrencyChanged) Kind() string { return "currency_changed" }
func (CounterObserved) Kind() string { return "counter_observed" }

func (s ItemAcquired) Validate() error {
	return validateItem(s.ItemID, s.Count)
}

func (s ItemSold) Validate() error {
	if err := validateItem(s.ItemID, s.Count); err != nil {
		return err
	}
	if s.Proceeds < 0 {
		return fmt.Errorf("%w: proceeds %d", apperrors.ErrInvalidAmount, s.Proceeds)
	}
	return nil
}

func (s ItemRemoved) Validate() error {
	return validateItem(s.ItemID, s.Count)
}

func (s CurrencyChanged) Validate() error {
	return validateSegment("source", s.Source)
}

func (s CounterObserved) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: counter name is required", apperrors.ErrInvalidInput)
	}
	if s.Value < 0 || s.Max < 0 {
		return fmt.Errorf("%w: counter readings must be non-negative", apperrors.ErrInvalidAmount)
	}
	return nil
}

func validateItem(itemID, count int64) error {
	if itemID <= 0 {
		return fmt.Errorf("%w: item id must be positive", apperrors.ErrInvalidInput)
	}
	if count <= 0 {
		return fmt.Errorf("%w: count %d", apperrors.ErrInvalidAmount, count)
	}
	return nil
}

func validateSegment(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" || strings.Contains(value, ":") {
		return fmt.Errorf("%w: %s must be a non-empty name without ':'", apperrors.ErrInvalidInput, field)
	}
	return nil
}
