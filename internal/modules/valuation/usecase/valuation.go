package usecase

import (
	"context"
	"fmt"

	"lootledger/internal/modules/valuation/domain"
	"lootledger/internal/modules/valuation/dto"
	valuationin "lootledger/internal/modules/valuation/port/in"
	"lootledger/internal/modules/valuation/service"
	apperrors "lootledger/internal/platform/errors"
)

type Interactor struct {
	svc *service.ValuationService
}

func NewInteractor(svc *service.ValuationService) valuationin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ClassifyItem(_ context.Context, input dto.ClassifyInput) (string, error) {
	return string(i.svc.Classify(toInfo(input.ItemID, input.Name, input.Quality, input.Class, input.Subclass, input.VendorPrice))), nil
}

func (i *Interactor) ComputeExpectedValue(ctx context.Context, itemID int64, bucket string) (int64, error) {
	b := domain.Bucket(bucket)
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	info, err := i.svc.Resolve(ctx, itemID)
	if err != nil {
		return 0, err
	}
	value, _ := i.svc.ExpectedValue(ctx, info, b)
	return value, nil
}

func (i *Interactor) Appraise(ctx context.Context, itemID int64) (dto.Appraisal, error) {
	info, err := i.svc.Resolve(ctx, itemID)
	if err != nil {
		return dto.Appraisal{}, err
	}
	bucket := i.svc.Classify(info)
	value, market := i.svc.ExpectedValue(ctx, info, bucket)
	return dto.Appraisal{
		ItemID:       info.ID,
		Name:         info.Name,
		Quality:      info.Quality.String(),
		Bucket:       string(bucket),
		VendorPrice:  info.VendorPrice,
		MarketPrice:  market,
		ValuePerUnit: value,
	}, nil
}

func (i *Interactor) PutItem(ctx context.Context, input dto.ItemInput) (dto.ItemOutput, error) {
	info := toInfo(input.ItemID, input.Name, input.Quality, input.Class, input.Subclass, input.VendorPrice)
	if err := i.svc.PutItem(ctx, info); err != nil {
		return dto.ItemOutput{}, err
	}
	return i.toOutput(info), nil
}

func (i *Interactor) ListItems(ctx context.Context) ([]dto.ItemOutput, error) {
	items, err := i.svc.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemOutput, 0, len(items))
	for _, item := range items {
		out = append(out, i.toOutput(item))
	}
	return out, nil
}

func (i *Interactor) SetPrice(ctx context.Context, input dto.PriceInput) error {
	return i.svc.SetPrice(ctx, input.ItemID, input.Copper)
}

func (i *Interactor) ClearPrice(ctx context.Context, itemID int64) error {
	return i.svc.ClearPrice(ctx, itemID)
}

func (i *Interactor) toOutput(info domain.ItemInfo) dto.ItemOutput {
	return dto.ItemOutput{
		ItemID:      info.ID,
		Name:        info.Name,
		Quality:     info.Quality.String(),
		Class:       info.Class,
		Subclass:    info.Subclass,
		VendorPrice: info.VendorPrice,
		Bucket:      string(i.svc.Classify(info)),
	}
}

func toInfo(id int64, name string, quality, class, subclass int, vendor int64) domain.ItemInfo {
	return domain.ItemInfo{
		ID:          id,
		Name:        name,
		Quality:     domain.Quality(quality),
		Class:       class,
		Subclass:    subclass,
		VendorPrice: vendor,
	}
}
