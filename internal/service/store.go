package service

import (
	"context"

	"github.com/dayanaadylkhanova/page-analytics/internal/entity"
	"go.uber.org/zap"
)

// Store maps a page to its counters. It is not safe for concurrent use;
// Tracker owns the only live instance and serializes access to it.
type Store struct {
	data map[string]entity.Counters
}

func NewStore() *Store {
	return &Store{data: make(map[string]entity.Counters)}
}

func NewStoreFrom(snap entity.Snapshot) *Store {
	s := &Store{data: make(map[string]entity.Counters, len(snap.Analytics))}
	for page, c := range snap.Analytics {
		s.data[page] = c
	}
	return s
}

func (s *Store) Get(page string) (entity.Counters, bool) {
	c, ok := s.data[page]
	return c, ok
}

// Upsert replaces the whole record; counters are never merged.
func (s *Store) Upsert(page string, c entity.Counters) {
	s.data[page] = c
}

func (s *Store) All() []entity.PageStat {
	out := make([]entity.PageStat, 0, len(s.data))
	for page, c := range s.data {
		out = append(out, entity.PageStat{Page: page, Counters: c})
	}
	return out
}

func (s *Store) Len() int { return len(s.data) }

func (s *Store) Snapshot() entity.Snapshot {
	snap := entity.Snapshot{Analytics: make(map[string]entity.Counters, len(s.data))}
	for page, c := range s.data {
		snap.Analytics[page] = c
	}
	return snap
}

// Restore loads the persisted snapshot. Any load error is logged and an empty
// store is returned, so startup never fails on a missing or corrupt snapshot.
func Restore(ctx context.Context, log *zap.Logger, gw SnapshotStore) *Store {
	snap, err := gw.Load(ctx)
	if err != nil {
		log.Warn("snapshot load failed, starting empty", zap.Error(err))
		return NewStore()
	}
	s := NewStoreFrom(snap)
	log.Info("snapshot loaded", zap.Int("pages", s.Len()))
	return s
}
