package in

import (
	"context"

	"lootledger/internal/modules/valuation/dto"
	valuationin "lootledger/internal/modules/valuation/port/in"
)

type CLIHandler struct {
	usecase valuationin.Usecase
}

func NewCLIHandler(usecase valuationin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) PutItem(ctx context.Context, input dto.ItemInput) (dto.ItemOutput, error) {
	return h.usecase.PutItem(ctx, input)
}

func (h CLIHandler) ListItems(ctx context.Context) ([]dto.ItemOutput, error) {
	return h.usecase.ListItems(ctx)
}

func (h CLIHandler) Appraise(ctx context.Context, itemID int64) (dto.Appraisal, error) {
	return h.usecase.Appraise(ctx, itemID)
}

func (h CLIHandler) SetPrice(ctx context.Context, itemID, copper int64) error {
	return h.usecase.SetPrice(ctx, dto.PriceInput{ItemID: itemID, Copper: copper})
}

func (h CLIHandler) ClearPrice(ctx context.Context, itemID int64) error {
	return h.usecase.ClearPrice(ctx, itemID)
}
