package service

//go:generate mockgen -source=contracts.go -destination=mock_contracts.go -package=service

import (
	"context"

	"github.com/dayanaadylkhanova/page-analytics/internal/entity"
)

type AnalyticsReader interface {
	Get(ctx context.Context, page string) (entity.Counters, bool)
	List(ctx context.Context) []entity.PageStat
}

type AnalyticsWriter interface {
	Put(ctx context.Context, page string, c entity.Counters)
}

// SnapshotStore — порт для сохранения и загрузки полного снапшота.
// A missing backing object is not an error: Load returns an empty snapshot.
type SnapshotStore interface {
	Load(ctx context.Context) (entity.Snapshot, error)
	Save(ctx context.Context, snap entity.Snapshot) error
}
