package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lootledger/internal/modules/metrics/domain"
	"lootledger/internal/modules/metrics/dto"
	"lootledger/internal/modules/metrics/service"
	"lootledger/internal/modules/metrics/usecase"
	sessiondomain "lootledger/internal/modules/session/domain"
	apperrors "lootledger/internal/platform/errors"
	"lootledger/internal/platform/logging"
)

type fakeSource struct {
	session *sessiondomain.Session
	at      time.Time
}

func (f fakeSource) Snapshot(_ context.Context, identity, sessionID string) (*sessiondomain.Session, time.Time, error) {
	if f.session == nil || (sessionID != "" && sessionID != f.session.ID) || (sessionID == "" && identity != f.session.Identity) {
		return nil, time.Time{}, apperrors.ErrNoActiveSession
	}
	return f.session.Clone(), f.at, nil
}

func TestGetMetricsPausedSession(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	s, err := sessiondomain.New("s1", "Thrall-Draenor", start)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Pause(start.Add(100 * time.Second)); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := s.Resume(start.Add(150 * time.Second)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := s.BookCurrency(sessiondomain.CurrencyChanged{Amount: 1500, Source: "Quest"}); err != nil {
		t.Fatalf("coin: %v", err)
	}
	uc := usecase.NewInteractor(service.NewMetricsService(fakeSource{session: s, at: start.Add(200 * time.Second)}, 5, logging.Discard()))

	out, err := uc.GetMetrics(context.Background(), dto.MetricsInput{Identity: "Thrall-Draenor"})
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	if out.DurationSec != 150 {
		t.Fatalf("expected 150s excluding the pause, got %d", out.DurationSec)
	}
	var cash dto.Category
	for _, c := range out.Categories {
		if c.Name == domain.CategoryCash {
			cash = c
		}
	}
	if cash.Total != 1500 || cash.Rate != 36000 {
		t.Fatalf("unexpected cash category: %+v", cash)
	}
	if len(out.TopIncome.Lines) != 1 || out.TopIncome.Lines[0].Label != "Coin:Quest" {
		t.Fatalf("unexpected income breakdown: %+v", out.TopIncome)
	}
	byID, err := uc.GetMetrics(context.Background(), dto.MetricsInput{SessionID: "s1"})
	if err != nil || byID.SessionID != "s1" {
		t.Fatalf("lookup by id: %+v %v", byID, err)
	}
}

func TestGetMetricsErrors(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewMetricsService(fakeSource{}, 5, logging.Discard()))
	if _, err := uc.GetMetrics(context.Background(), dto.MetricsInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := uc.GetMetrics(context.Background(), dto.MetricsInput{Identity: "Thrall-Draenor"}); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
}
