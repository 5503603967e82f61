package in

import (
	"context"

	"lootledger/internal/modules/metrics/dto"
)

type Usecase interface {
	GetMetrics(ctx context.Context, input dto.MetricsInput) (dto.Metrics, error)
}
