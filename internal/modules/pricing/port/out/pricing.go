package out

import (
	"context"

	"lootledger/internal/modules/pricing/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	MarketPrice(ctx context.Context, manifest domain.Manifest, itemID int64) (domain.Quote, error)
	Close() error
}
