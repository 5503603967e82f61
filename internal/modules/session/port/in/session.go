package in

import (
	"context"

	"lootledger/internal/modules/session/dto"
)

type Usecase interface {
	StartSession(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	PauseSession(ctx context.Context, identity string) (dto.SessionOutput, error)
	ResumeSession(ctx context.Context, identity string) (dto.SessionOutput, error)
	StopSession(ctx context.Context, identity string) (dto.SessionOutput, error)
	Connect(ctx context.Context, identity string) (dto.SessionOutput, error)
	Disconnect(ctx context.Context, identity string) (dto.SessionOutput, error)
	ApplySignal(ctx context.Context, input dto.SignalInput) (dto.SignalOutput, error)

	ArchiveSession(ctx context.Context, sessionID string) (dto.UndoToken, error)
	DeleteSession(ctx context.Context, sessionID string) (dto.UndoToken, error)
	MergeSessions(ctx context.Context, sessionIDs []string) (dto.MergeOutput, error)
	Undo(ctx context.Context, token string) (dto.UndoOutput, error)

	GetSession(ctx context.Context, sessionID string) (dto.SessionOutput, error)
	GetActive(ctx context.Context, identity string) (dto.SessionOutput, error)
	ListSessions(ctx context.Context, input dto.ListInput) ([]dto.SessionOutput, error)
	Snapshot(ctx context.Context, input dto.SnapshotInput) (dto.Snapshot, error)
	Reindex(ctx context.Context) error
	ExportReport(ctx context.Context, sessionID string) (dto.ReportOutput, error)
}
