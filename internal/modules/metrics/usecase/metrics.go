package usecase

import (
	"context"

	"lootledger/internal/modules/metrics/domain"
	"lootledger/internal/modules/metrics/dto"
	metricsin "lootledger/internal/modules/metrics/port/in"
	"lootledger/internal/modules/metrics/service"
)

type Interactor struct {
	svc *service.MetricsService
}

func NewInteractor(svc *service.MetricsService) metricsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) GetMetrics(ctx context.Context, input dto.MetricsInput) (dto.Metrics, error) {
	snap, err := i.svc.Compute(ctx, input.Identity, input.SessionID)
	if err != nil {
		return dto.Metrics{}, err
	}
	return toDTO(snap), nil
}

func toDTO(snap domain.Snapshot) dto.Metrics {
	out := dto.Metrics{
		SessionID:   snap.SessionID,
		Identity:    snap.Identity,
		Status:      snap.Status,
		At:          snap.At,
		DurationSec: snap.DurationSec,
		Categories:  make([]dto.Category, 0, len(snap.Categories)),
		Buckets:     lines(snap.Buckets),
		TopItems:    breakdown(snap.TopItems),
		TopIncome:   breakdown(snap.TopIncome),
		TopExpenses: breakdown(snap.TopExpenses),
		Counters:    make([]dto.Counter, 0, len(snap.Counters)),
	}
	for _, c := range snap.Categories {
		out.Categories = append(out.Categories, dto.Category{Name: c.Name, Total: c.Total, Rate: c.Rate})
	}
	for _, c := range snap.Counters {
		out.Counters = append(out.Counters, dto.Counter{Name: c.Name, Total: c.Total, Rate: c.Rate})
	}
	return out
}

func breakdown(b domain.Breakdown) dto.Breakdown {
	return dto.Breakdown{Lines: lines(b.Lines), More: b.More}
}

func lines(in []domain.Line) []dto.Line {
	out := make([]dto.Line, 0, len(in))
	for _, l := range in {
		out = append(out, dto.Line{Label: l.Label, Amount: l.Amount})
	}
	return out
}
