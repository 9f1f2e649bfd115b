package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"LISTEN_ADDR", "LOG_LEVEL", "STORAGE_DRIVER", "SNAPSHOT_PATH",
	"DATABASE_URL", "BADGER_DIR", "MAX_CPU", "SHUTDOWN_WAIT", "ENV_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
	// point at a file that does not exist so a stray .env cannot leak in
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("default LISTEN_ADDR expected 127.0.0.1:8080, got %q", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("default LOG_LEVEL expected info, got %q", cfg.LogLevel)
	}
	if cfg.StorageDriver != DriverFile {
		t.Fatalf("default STORAGE_DRIVER expected file, got %q", cfg.StorageDriver)
	}
	if cfg.SnapshotPath != "database.json" {
		t.Fatalf("default SNAPSHOT_PATH expected database.json, got %q", cfg.SnapshotPath)
	}
	if cfg.ShutdownWait != 5*time.Second {
		t.Fatalf("default SHUTDOWN_WAIT expected 5s, got %v", cfg.ShutdownWait)
	}
}

func TestParse_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/db?sslmode=disable")
	t.Setenv("MAX_CPU", "2")
	t.Setenv("SHUTDOWN_WAIT", "2s")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.LogLevel != "debug" {
		t.Fatalf("custom addr/log not applied: %+v", cfg)
	}
	if cfg.StorageDriver != DriverPostgres || cfg.MaxCPU != 2 || cfg.ShutdownWait != 2*time.Second {
		t.Fatalf("custom values not applied: %+v", cfg)
	}
}

func TestParse_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SNAPSHOT_PATH=/tmp/from-dotenv.json\nLOG_LEVEL=warn\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() { _ = os.Unsetenv("SNAPSHOT_PATH") })

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotPath != "/tmp/from-dotenv.json" {
		t.Fatalf("expected SNAPSHOT_PATH from env file, got %q", cfg.SnapshotPath)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("env file must not override real env, got %q", cfg.LogLevel)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "postgres without DATABASE_URL",
			env:     map[string]string{"STORAGE_DRIVER": "postgres"},
			wantErr: errors.New("any"),
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"STORAGE_DRIVER": "mongo"},
			wantErr: ErrUnknownDriver,
		},
		{
			name:    "negative MAX_CPU",
			env:     map[string]string{"MAX_CPU": "-1"},
			wantErr: errors.New("any"),
		},
		{
			name: "badger ok",
			env:  map[string]string{"STORAGE_DRIVER": "badger"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if errors.Is(tc.wantErr, ErrUnknownDriver) && !errors.Is(err, ErrUnknownDriver) {
				t.Fatalf("expected ErrUnknownDriver, got %v", err)
			}
		})
	}
}

func TestParse_BadEnvFile(t *testing.T) {
	malformed := filepath.Join(t.TempDir(), "bad.env")
	if err := os.WriteFile(malformed, []byte("BAD-KEY=1\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	tests := map[string]string{
		"malformed": malformed,
		"directory": t.TempDir(),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("ENV_FILE", path)
			if _, err := Parse(); err == nil {
				t.Fatalf("expected error for env file %s", path)
			}
		})
	}
}

func TestParse_MissingEnvFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	if _, err := Parse(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
