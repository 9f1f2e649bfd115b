package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

var ErrUnknownDriver = errors.New("unknown STORAGE_DRIVER")

type Config struct {
	ListenAddr    string
	LogLevel      string
	StorageDriver string
	SnapshotPath  string
	DatabaseURL   string
	BadgerDir     string
	MaxCPU        int
	ShutdownWait  time.Duration
}

// Parse reads the environment. An optional dotenv file (ENV_FILE, default .env)
// is loaded first; it never overrides variables that are already set. A missing
// file is fine, an unreadable or malformed one is a config error.
func Parse() (*Config, error) {
	var errs []error
	envFile := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("ENV_FILE %s: %w", envFile, err))
	}

	c := &Config{}
	c.ListenAddr = getenv("LISTEN_ADDR", "127.0.0.1:8080")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	c.StorageDriver = strings.ToLower(getenv("STORAGE_DRIVER", DriverFile))
	c.SnapshotPath = getenv("SNAPSHOT_PATH", "database.json")
	c.DatabaseURL = getenv("DATABASE_URL", "")
	c.BadgerDir = getenv("BADGER_DIR", "data/badger")
	c.MaxCPU = mustInt(getenv("MAX_CPU", "0"))
	c.ShutdownWait = mustDuration(getenv("SHUTDOWN_WAIT", "5s"))

	switch c.StorageDriver {
	case DriverFile:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for STORAGE_DRIVER=postgres"))
		}
	case DriverBadger:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownDriver, c.StorageDriver))
	}
	if c.MaxCPU < 0 {
		errs = append(errs, fmt.Errorf("MAX_CPU must be >= 0"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func mustInt(s string) int { n, _ := strconv.Atoi(s); return n }
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	if d <= 0 {
		return 5 * time.Second
	}
	return d
}
