// Package persistence stores landlords, tenants and payments in PostgreSQL
// through GORM.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectTimeout bounds the initial ping in Open
const ConnectTimeout = 10 * time.Second

// Database is an open connection pool plus the GORM handle over it
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Option adjusts the GORM configuration used by Open
type Option func(*gorm.Config)

// WithLogger routes GORM logs to l. Without it GORM is silent.
func WithLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// Open connects to PostgreSQL, sizes the pool from cfg and checks the
// connection before returning
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db, err := Wrap(gdb)
	if err != nil {
		return nil, err
	}

	db.sql.SetMaxOpenConns(cfg.MaxOpenConns)
	db.sql.SetMaxIdleConns(cfg.MaxIdleConns)
	db.sql.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	db.sql.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		_ = db.sql.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Wrap adopts an already opened GORM handle
func Wrap(gdb *gorm.DB) (*Database, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &Database{DB: gdb, sql: sqlDB}, nil
}

// SQL returns the underlying pool, e.g. for migrations
func (d *Database) SQL() *sql.DB {
	return d.sql
}

// Close closes the pool
func (d *Database) Close() error {
	return d.sql.Close()
}

// Ping checks that a connection can be made
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// PoolStats is the pool snapshot served on the readiness endpoint
type PoolStats struct {
	MaxOpen      int           `json:"max_open_connections"`
	Open         int           `json:"open_connections"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// Stats returns a snapshot of the pool
func (d *Database) Stats() PoolStats {
	s := d.sql.Stats()
	return PoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}
}

// Collector exports the pool statistics as go_sql_* metrics labelled with name
func (d *Database) Collector(name string) prometheus.Collector {
	return collectors.NewDBStatsCollector(d.sql, name)
}

// Repositories bundles the rental repositories over one connection
type Repositories struct {
	Landlords *GormLandlordRepository
	Tenants   *GormTenantRepository
	Payments  *GormPaymentRepository
}

// Repositories creates the rental repositories
func (d *Database) Repositories() Repositories {
	return Repositories{
		Landlords: NewGormLandlordRepository(d.DB),
		Tenants:   NewGormTenantRepository(d.DB),
		Payments:  NewGormPaymentRepository(d.DB),
	}
}
