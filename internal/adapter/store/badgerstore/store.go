package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dayanaadylkhanova/page-analytics/internal/entity"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

var snapshotKey = []byte("analytics:snapshot")

// Store keeps the JSON snapshot under a single key of an embedded Badger DB.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

func New(dir string, log *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts, log)
}

func open(opts badger.Options, log *zap.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Load implements service.SnapshotStore
func (s *Store) Load(_ context.Context) (entity.Snapshot, error) {
	snap := entity.NewSnapshot()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			s.log.Info("snapshot key not found", zap.ByteString("key", snapshotKey))
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			snap, err = entity.DecodeSnapshot(val)
			return err
		})
	})
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Save implements service.SnapshotStore
func (s *Store) Save(_ context.Context, snap entity.Snapshot) error {
	if snap.Analytics == nil {
		snap.Analytics = make(map[string]entity.Counters)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	}); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
