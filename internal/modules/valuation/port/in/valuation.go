package in

import (
	"context"

	"lootledger/internal/modules/valuation/dto"
)

type Usecase interface {
	ClassifyItem(ctx context.Context, input dto.ClassifyInput) (string, error)
	ComputeExpectedValue(ctx context.Context, itemID int64, bucket string) (int64, error)
	Appraise(ctx context.Context, itemID int64) (dto.Appraisal, error)
	PutItem(ctx context.Context, input dto.ItemInput) (dto.ItemOutput, error)
	ListItems(ctx context.Context) ([]dto.ItemOutput, error)
	SetPrice(ctx context.Context, input dto.PriceInput) error
	ClearPrice(ctx context.Context, itemID int64) error
}
