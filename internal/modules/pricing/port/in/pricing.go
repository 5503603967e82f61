package in

import (
	"context"

	"lootledger/internal/modules/pricing/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Quote(ctx context.Context, input dto.QuoteInput) (dto.QuoteOutput, error)
}
