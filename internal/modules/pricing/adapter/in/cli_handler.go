package in

import (
	"context"

	"lootledger/internal/modules/pricing/dto"
	pricingin "lootledger/internal/modules/pricing/port/in"
)

type CLIHandler struct {
	usecase pricingin.Usecase
}

func NewCLIHandler(usecase pricingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Quote(ctx context.Context, pluginName string, itemID int64) (dto.QuoteOutput, error) {
	return h.usecase.Quote(ctx, dto.QuoteInput{PluginName: pluginName, ItemID: itemID})
}
