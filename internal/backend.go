package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/backend/local"
	"github.com/starford/esurat/internal/backend/memory"
	"github.com/starford/esurat/internal/backend/mongo"
	"github.com/starford/esurat/internal/backend/postgres"
)

// openBackend connects the configured storage driver. Credentials must have
// been checked with Config.CheckCredentials first.
func openBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (backend.Backend, error) {
	switch cfg.Backend.Driver {
	case backend.DriverMemory:
		return memory.New(), nil
	case backend.DriverLocal:
		if err := ensureDir(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		return local.Open(cfg.SQLite.Path, logger)
	case backend.DriverMongo:
		return mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	case backend.DriverPostgres:
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(cfg.Postgres.DSN, logger); err != nil {
				return nil, err
			}
		}
		return postgres.Connect(ctx, cfg.Postgres.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
	}
}

// allowPasswordless reports whether accounts without a password may sign in
// with an empty one. Only the single-machine drivers permit it.
func allowPasswordless(cfg *Config) bool {
	switch cfg.Backend.Driver {
	case backend.DriverLocal, backend.DriverMemory:
		return true
	}
	return false
}

func ensureDir(file string) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}
