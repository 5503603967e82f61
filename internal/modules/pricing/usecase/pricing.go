package usecase

import (
	"context"

	"lootledger/internal/modules/pricing/dto"
	pricingin "lootledger/internal/modules/pricing/port/in"
	"lootledger/internal/modules/pricing/service"
)

type Interactor struct {
	svc *service.PricingService
}

func NewInteractor(svc *service.PricingService) pricingin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Quote(ctx context.Context, input dto.QuoteInput) (dto.QuoteOutput, error) {
	return i.svc.Quote(ctx, input)
}
