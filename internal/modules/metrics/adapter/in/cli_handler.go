package in

import (
	"context"

	"lootledger/internal/modules/metrics/dto"
	metricsin "lootledger/internal/modules/metrics/port/in"
)

type CLIHandler struct {
	usecase metricsin.Usecase
}

func NewCLIHandler(usecase metricsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Active(ctx context.Context, identity string) (dto.Metrics, error) {
	return h.usecase.GetMetrics(ctx, dto.MetricsInput{Identity: identity})
}

func (h CLIHandler) Session(ctx context.Context, sessionID string) (dto.Metrics, error) {
	return h.usecase.GetMetrics(ctx, dto.MetricsInput{SessionID: sessionID})
}
