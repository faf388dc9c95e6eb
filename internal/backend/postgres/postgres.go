// Package postgres is the relational backend. Rows use snake_case columns;
// the replica re-fetches after its own writes and on LISTEN/NOTIFY signals
// raised by triggers for writes of other clients.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starford/esurat/internal/backend"
	"github.com/starford/esurat/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// notifyChannel is raised by the table triggers with the table name as payload.
const notifyChannel = "esurat_changes"

// Backend is the PostgreSQL driver.
type Backend struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	users   *table[models.User]
	letters *table[models.Letter]
	agendas *table[models.Agenda]
}

var _ backend.Backend = (*Backend)(nil)

// Connect creates the pool and checks the server is reachable.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*Backend, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		slog.String("host", poolCfg.ConnConfig.Host),
		slog.String("database", poolCfg.ConnConfig.Database))

	return &Backend{
		pool:    pool,
		logger:  logger,
		users:   usersTable(pool),
		letters: lettersTable(pool),
		agendas: agendasTable(pool),
	}, nil
}

// Migrate applies the embedded SQL migrations.
func Migrate(dsn string, logger *slog.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("postgres: migration source: %w", err)
	}
	dbURL, err := migrationURL(dsn)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return fmt.Errorf("postgres: init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migrations applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty))
	return nil
}

// migrationURL rewrites a postgres:// URL to the pgx5:// scheme expected by
// the migrate driver.
func migrationURL(dsn string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest, nil
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn, nil
	}
	return "", fmt.Errorf("postgres: dsn must be a postgres:// URL")
}

func (b *Backend) Users() backend.Store[models.User]     { return b.users }
func (b *Backend) Letters() backend.Store[models.Letter] { return b.letters }
func (b *Backend) Agendas() backend.Store[models.Agenda] { return b.agendas }
func (b *Backend) Policy() backend.Policy                { return backend.PolicyPoll }

// SeedUsers returns only the administrator account.
func (b *Backend) SeedUsers() []models.User {
	return slices.Clone(backend.AdminOnly(backend.SeedPassword))
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

// Ping checks the pool for the readiness check.
func (b *Backend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

// Watch holds a dedicated connection listening on the change channel.
func (b *Backend) Watch(ctx context.Context, fn backend.ChangeFunc) error {
	pc, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("postgres: acquire listener: %w", err)
	}
	conn := pc.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("postgres: listen: %w", err)
	}
	b.logger.Info("watcher: listening", slog.String("channel", notifyChannel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("watcher: stopped")
				return nil
			}
			return fmt.Errorf("postgres: wait for notification: %w", err)
		}
		switch c := backend.Collection(n.Payload); c {
		case backend.Users, backend.Letters, backend.Agendas:
			fn(c)
		default:
			b.logger.Debug("watcher: ignoring payload", slog.String("payload", n.Payload))
		}
	}
}
