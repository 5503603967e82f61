package out

import (
	"context"
	"time"

	metricsout "lootledger/internal/modules/metrics/port/out"
	sessiondomain "lootledger/internal/modules/session/domain"
	sessiondto "lootledger/internal/modules/session/dto"
	sessionin "lootledger/internal/modules/session/port/in"
)

type SessionSnapshotSource struct {
	sessions sessionin.Usecase
}

func NewSessionSnapshotSource(sessions sessionin.Usecase) metricsout.SessionSource {
	return &SessionSnapshotSource{sessions: sessions}
}

func (s *SessionSnapshotSource) Snapshot(ctx context.Context, identity, sessionID string) (*sessiondomain.Session, time.Time, error) {
	snap, err := s.sessions.Snapshot(ctx, sessiondto.SnapshotInput{Identity: identity, SessionID: sessionID})
	if err != nil {
		return nil, time.Time{}, err
	}
	return snap.Session, snap.At, nil
}
