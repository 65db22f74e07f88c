// Package bakscore parses tracker command flags and starts the HTTP runtime.
package bakscore

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	entrypoint "github.com/louisbranch/bakscore/internal/platform/cmd"
	"github.com/louisbranch/bakscore/internal/scorekeeper"
	"github.com/louisbranch/bakscore/internal/server"
	"github.com/louisbranch/bakscore/internal/storage"
	"github.com/louisbranch/bakscore/internal/storage/bbolt"
	"github.com/louisbranch/bakscore/internal/storage/sqlite"
)

// Storage driver names accepted by -storage-driver / BAKSCORE_STORAGE_DRIVER.
const (
	DriverBbolt  = "bbolt"
	DriverSQLite = "sqlite"
)

// Config holds tracker command configuration.
type Config struct {
	Port          int    `env:"BAKSCORE_PORT" envDefault:"8080"`
	Addr          string `env:"BAKSCORE_ADDR"`
	StorageDriver string `env:"BAKSCORE_STORAGE_DRIVER" envDefault:"bbolt"`
	StoragePath   string `env:"BAKSCORE_STORAGE_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The server listen address (overrides -port)")
	fs.StringVar(&cfg.StorageDriver, "storage-driver", cfg.StorageDriver, "The durable store driver (bbolt or sqlite)")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "The durable store file path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the score tracker service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBakscore, func(ctx context.Context) error {
		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = store.Close() }()

		keeper := scorekeeper.NewKeeper(scorekeeper.NewRepository(store), nil)
		keeper.Init(ctx)

		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		return server.New(keeper).ListenAndServe(ctx, addr)
	})
}

func openStore(cfg Config) (storage.GameStore, error) {
	path := cfg.StoragePath
	if path == "" {
		path = filepath.Join("data", "bakscore.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	switch cfg.StorageDriver {
	case "", DriverBbolt:
		return bbolt.Open(path)
	case DriverSQLite:
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
