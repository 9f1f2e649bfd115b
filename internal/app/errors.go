package app

import "errors"

var (
	// ErrSnapshotBackend wraps failures to open the configured snapshot store.
	// A missing or corrupt snapshot is not one of them: that is recovered by
	// starting empty.
	ErrSnapshotBackend = errors.New("snapshot backend unavailable")

	ErrAppStartup           = errors.New("app startup error")
	ErrAppShutdownNormal    = errors.New("app shutdown normal")
	ErrAppShutdownWithError = errors.New("app shutdown with error")
)
