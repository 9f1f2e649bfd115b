package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dayanaadylkhanova/page-analytics/internal/entity"
	"go.uber.org/zap"
)

// Store keeps the whole snapshot in a single JSON file.
type Store struct {
	path string
	log  *zap.Logger
}

func New(path string, log *zap.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load implements service.SnapshotStore
func (s *Store) Load(_ context.Context) (entity.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("snapshot file not found", zap.String("path", s.path))
		return entity.NewSnapshot(), nil
	}
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	snap, err := entity.DecodeSnapshot(data)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return snap, nil
}

// Save implements service.SnapshotStore. The file is rewritten whole:
// data goes to a sibling temp file which is then renamed over the target.
func (s *Store) Save(_ context.Context, snap entity.Snapshot) error {
	if snap.Analytics == nil {
		snap.Analytics = make(map[string]entity.Counters)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
