package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dayanaadylkhanova/page-analytics/internal/adapter/store/badgerstore"
	"github.com/dayanaadylkhanova/page-analytics/internal/adapter/store/file"
	"github.com/dayanaadylkhanova/page-analytics/internal/adapter/store/postgres"
	http_server "github.com/dayanaadylkhanova/page-analytics/internal/adapter/transport/http"
	"github.com/dayanaadylkhanova/page-analytics/internal/service"
	"github.com/dayanaadylkhanova/page-analytics/pkg/config"
	"go.uber.org/zap"
)

type AppInfo struct {
	Name      string
	BuildTime string
	Commit    string
	Release   string
}

type snapshotBackend interface {
	service.SnapshotStore
	Close() error
}

type App struct {
	cfg  config.Config
	info *AppInfo
	log  *zap.Logger

	backend snapshotBackend
	tracker *service.Tracker
	server  *http_server.Server
}

func New(cfg config.Config, info *AppInfo, log *zap.Logger) (*App, error) {
	ctx := context.Background()

	// 1) Snapshot backend
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotBackend, err)
	}

	// 2) Store + tracker; a broken snapshot never blocks startup
	store := service.Restore(ctx, log, backend)
	tracker := service.NewTracker(log, store, backend)

	// 3) HTTP server (ports: AnalyticsReader + AnalyticsWriter)
	srv := http_server.NewServer(log, cfg.ListenAddr, tracker, tracker)

	log.Info("app built",
		zap.String("name", info.Name),
		zap.String("release", info.Release),
		zap.String("storage", cfg.StorageDriver),
	)

	return &App{
		cfg:     cfg,
		info:    info,
		log:     log,
		backend: backend,
		tracker: tracker,
		server:  srv,
	}, nil
}

func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (snapshotBackend, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		st, err := postgres.New(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := st.Init(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("postgres init: %w", err)
		}
		return st, nil
	case config.DriverBadger:
		st, err := badgerstore.New(cfg.BadgerDir, log)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverFile, "":
		return file.New(cfg.SnapshotPath, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StorageDriver)
	}
}

func (a *App) Run(ctx context.Context) error {
	// Start HTTP
	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- a.server.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
		// graceful
		runErr = ErrAppShutdownNormal
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server failed", zap.Error(err))
			runErr = fmt.Errorf("%w: %v", ErrAppStartup, err)
		} else {
			runErr = ErrAppShutdownNormal
		}
	}

	// Graceful shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownWait)
	defer cancelShutdown()
	var shutdownErrs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown", zap.Error(err))
		shutdownErrs = append(shutdownErrs, err)
	}
	if err := a.backend.Close(); err != nil {
		a.log.Warn("close snapshot backend", zap.Error(err))
		shutdownErrs = append(shutdownErrs, err)
	}
	if len(shutdownErrs) > 0 && errors.Is(runErr, ErrAppShutdownNormal) {
		runErr = fmt.Errorf("%w: %w", ErrAppShutdownWithError, errors.Join(shutdownErrs...))
	}

	return runErr
}
