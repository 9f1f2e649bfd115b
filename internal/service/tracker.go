package service

import (
	"context"
	"sync"

	"github.com/dayanaadylkhanova/page-analytics/internal/entity"
	"go.uber.org/zap"
)

// Tracker is the single synchronization point for the store and its snapshot.
// Every operation, reads included, runs under one mutex; Put also holds it
// across the synchronous save.
type Tracker struct {
	log *zap.Logger
	gw  SnapshotStore

	mu    sync.Mutex
	store *Store
}

func NewTracker(log *zap.Logger, store *Store, gw SnapshotStore) *Tracker {
	if store == nil {
		store = NewStore()
	}
	return &Tracker{log: log, gw: gw, store: store}
}

func (t *Tracker) Get(_ context.Context, page string) (entity.Counters, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Get(page)
}

func (t *Tracker) List(_ context.Context) []entity.PageStat {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.All()
}

// Put is acknowledged regardless of the save outcome: a failed save is logged,
// not retried, and the in-memory write is kept.
func (t *Tracker) Put(ctx context.Context, page string, c entity.Counters) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.Upsert(page, c)
	// a client that went away must not abort the save
	if err := t.gw.Save(context.WithoutCancel(ctx), t.store.Snapshot()); err != nil {
		t.log.Warn("snapshot save failed", zap.String("page", page), zap.Error(err))
	}
}
