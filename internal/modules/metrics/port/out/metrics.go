package out

import (
	"context"
	"time"

	sessiondomain "lootledger/internal/modules/session/domain"
)

// SessionSource hands out detached copies of sessions together with the
// instant the copy was taken.
type SessionSource interface {
	Snapshot(ctx context.Context, identity, sessionID string) (*sessiondomain.Session, time.Time, error)
}
