package out

import (
	"context"

	"lootledger/internal/modules/valuation/domain"
)

type ItemCatalog interface {
	Lookup(ctx context.Context, itemID int64) (domain.ItemLookup, error)
	Put(ctx context.Context, info domain.ItemInfo) error
	List(ctx context.Context) ([]domain.ItemInfo, error)
}

// PriceSource reports a market price in copper. ok is false when the source
// has no quote for the item.
type PriceSource interface {
	MarketPrice(ctx context.Context, itemID int64) (int64, bool, error)
}

type PriceOverrideStore interface {
	PriceSource
	SetPrice(ctx context.Context, itemID, copper int64) error
	ClearPrice(ctx context.Context, itemID int64) error
}

type DisenchantSource interface {
	DisenchantValue(ctx context.Context, itemID int64) (int64, error)
}

type TuningStore interface {
	Load(ctx context.Context) (domain.Tuning, error)
}
