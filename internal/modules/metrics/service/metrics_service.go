package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lootledger/internal/modules/metrics/domain"
	metricsout "lootledger/internal/modules/metrics/port/out"
	apperrors "lootledger/internal/platform/errors"
)

type MetricsService struct {
	source metricsout.SessionSource
	topN   int
	logger *slog.Logger
}

func NewMetricsService(source metricsout.SessionSource, topN int, logger *slog.Logger) *MetricsService {
	return &MetricsService{source: source, topN: topN, logger: logger}
}

func (s *MetricsService) Compute(ctx context.Context, identity, sessionID string) (domain.Snapshot, error) {
	if strings.TrimSpace(identity) == "" && strings.TrimSpace(sessionID) == "" {
		return domain.Snapshot{}, fmt.Errorf("%w: identity or session id is required", apperrors.ErrInvalidInput)
	}
	session, at, err := s.source.Snapshot(ctx, identity, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap := domain.Build(session, at, s.topN)
	s.logger.Debug("metrics computed", "session", snap.SessionID, "duration_sec", snap.DurationSec, "net_worth", snap.Category(domain.CategoryNetWorth).Total)
	return snap, nil
}
