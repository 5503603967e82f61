package service

import (
	"context"
	"fmt"
	"log/slog"

	"lootledger/internal/modules/valuation/domain"
	valuationout "lootledger/internal/modules/valuation/port/out"
	apperrors "lootledger/internal/platform/errors"
)

type ValuationService struct {
	catalog    valuationout.ItemCatalog
	overrides  valuationout.PriceOverrideStore
	sources    []valuationout.PriceSource
	disenchant valuationout.DisenchantSource
	tuning     domain.Tuning
	logger     *slog.Logger
}

// NewValuationService resolves market prices from overrides first, then
// from sources in order.
func NewValuationService(
	catalog valuationout.ItemCatalog,
	overrides valuationout.PriceOverrideStore,
	disenchant valuationout.DisenchantSource,
	tuning domain.Tuning,
	logger *slog.Logger,
	sources ...valuationout.PriceSource,
) *ValuationService {
	return &ValuationService{
		catalog:    catalog,
		overrides:  overrides,
		sources:    sources,
		disenchant: disenchant,
		tuning:     tuning,
		logger:     logger,
	}
}

func (s *ValuationService) Tuning() domain.Tuning {
	return s.tuning
}

func (s *ValuationService) Classify(info domain.ItemInfo) domain.Bucket {
	return domain.Classify(info, s.tuning)
}

func (s *ValuationService) Resolve(ctx context.Context, itemID int64) (domain.ItemInfo, error) {
	lookup, err := s.catalog.Lookup(ctx, itemID)
	if err != nil {
		return domain.ItemInfo{}, err
	}
	switch v := lookup.(type) {
	case domain.Resolved:
		return v.Info, nil
	case domain.Pending:
		return domain.ItemInfo{}, fmt.Errorf("%w: item %d", apperrors.ErrUnresolvedItem, v.ID)
	default:
		return domain.ItemInfo{}, fmt.Errorf("unexpected lookup result %T", lookup)
	}
}

// MarketPrice walks the price chain. Failing sources are skipped and
// treated as absent.
func (s *ValuationService) MarketPrice(ctx context.Context, itemID int64) int64 {
	chain := make([]valuationout.PriceSource, 0, len(s.sources)+1)
	if s.overrides != nil {
		chain = append(chain, s.overrides)
	}
	chain = append(chain, s.sources...)
	for _, source := range chain {
		price, ok, err := source.MarketPrice(ctx, itemID)
		if err != nil {
			s.logger.Warn("price source failed", "item", itemID, "error", err)
			continue
		}
		if ok && price >= 0 {
			return price
		}
	}
	return 0
}

func (s *ValuationService) DisenchantValue(ctx context.Context, itemID int64) int64 {
	if s.disenchant == nil {
		return 0
	}
	value, err := s.disenchant.DisenchantValue(ctx, itemID)
	if err != nil {
		s.logger.Warn("disenchant source failed", "item", itemID, "error", err)
		return 0
	}
	return value
}

func (s *ValuationService) ExpectedValue(ctx context.Context, info domain.ItemInfo, bucket domain.Bucket) (int64, int64) {
	inputs := domain.PriceInputs{Vendor: info.VendorPrice}
	switch bucket {
	case domain.BucketGathering:
		inputs.Market = s.MarketPrice(ctx, info.ID)
	case domain.BucketRareMulti:
		inputs.Market = s.MarketPrice(ctx, info.ID)
		inputs.Disenchant = s.DisenchantValue(ctx, info.ID)
	}
	return domain.ExpectedValue(bucket, inputs, s.tuning), inputs.Market
}

func (s *ValuationService) PutItem(ctx context.Context, info domain.ItemInfo) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return s.catalog.Put(ctx, info)
}

func (s *ValuationService) ListItems(ctx context.Context) ([]domain.ItemInfo, error) {
	return s.catalog.List(ctx)
}

func (s *ValuationService) SetPrice(ctx context.Context, itemID, copper int64) error {
	if itemID <= 0 {
		return fmt.Errorf("%w: item id must be positive", apperrors.ErrInvalidInput)
	}
	if copper < 0 {
		return fmt.Errorf("%w: price must be non-negative", apperrors.ErrInvalidAmount)
	}
	if s.overrides == nil {
		return fmt.Errorf("price overrides are not configured")
	}
	return s.overrides.SetPrice(ctx, itemID, copper)
}

func (s *ValuationService) ClearPrice(ctx context.Context, itemID int64) error {
	if s.overrides == nil {
		return fmt.Errorf("price overrides are not configured")
	}
	return s.overrides.ClearPrice(ctx, itemID)
}
