// Package migration applies the embedded rental schema with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

const sourceDir = "sql"

// Migration is one embedded schema change
type Migration struct {
	Version uint
	Name    string
}

// Migrator runs schema migrations against the bot database
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// New creates a Migrator on an open postgres connection. Close also closes db.
func New(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return wrap(m, logger), nil
}

// NewFromURL creates a Migrator with its own connection to databaseURL
func NewFromURL(databaseURL string, logger *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return wrap(m, logger), nil
}

func wrap(m *migrate.Migrate, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("migrate")
	m.Log = migrateLogger{logger.Sugar()}
	return &Migrator{migrate: m, logger: logger}
}

// migrateLogger adapts zap to migrate.Logger. Per-file progress is logged at
// debug level.
type migrateLogger struct {
	s *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.s.Debugf(strings.TrimSpace(format), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.s.Desugar().Core().Enabled(zap.DebugLevel)
}

// Up runs all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", m.migrate.Up)
}

// Down rolls back all migrations
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", m.migrate.Down)
}

// Steps applies n migrations, up when positive and down when negative
func (m *Migrator) Steps(ctx context.Context, n int) error {
	if n == 0 {
		return errors.New("step count must not be zero")
	}
	return m.run(ctx, fmt.Sprintf("step %+d", n), func() error { return m.migrate.Steps(n) })
}

// run executes fn, asking golang-migrate to stop after the current file when
// ctx is cancelled. ErrNoChange is not an error.
func (m *Migrator) run(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		select {
		case m.migrate.GracefulStop <- true:
		default:
		}
	})
	defer stop()

	log := m.logger.With(zap.String("op", op))
	log.Info("Running migrations")
	start := time.Now()

	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("Schema already at target version")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)))
	if ctx.Err() != nil {
		return fmt.Errorf("migration %s interrupted at version %d: %w", op, version, ctx.Err())
	}
	return nil
}

// Version returns the current migration version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied and clean without running anything.
// Used to recover from a dirty state after a failed migration.
func (m *Migrator) Force(version int) error {
	if version < -1 {
		return fmt.Errorf("invalid version %d", version)
	}
	m.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the database connection
func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// Available lists the embedded migrations, oldest first
func Available() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		parsed, err := source.Parse(e.Name())
		if err != nil {
			return nil, fmt.Errorf("bad migration file name %s: %w", e.Name(), err)
		}
		if parsed.Direction != source.Up {
			continue
		}
		out = append(out, Migration{Version: parsed.Version, Name: parsed.Identifier})
	}
	slices.SortFunc(out, func(a, b Migration) int {
		return int(a.Version) - int(b.Version)
	})
	return out, nil
}
