package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rentbot/backend/internal/application/rentbot"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Archive backends
const (
	BackendS3 = "s3"
	BackendFS = "fs"
)

// NewReceiptArchive builds the configured archive. It returns nil when
// archiving is disabled. A filesystem archive with a retention period starts
// a cleanup loop bound to ctx.
func NewReceiptArchive(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (rentbot.ReceiptArchive, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("archive")

	switch cfg.Backend {
	case BackendS3, "":
		a, err := NewS3ReceiptArchive(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := a.EnsureBucket(ctx); err != nil {
			logger.Warn("Receipt bucket check failed; archiving may fail", zap.Error(err))
		}
		logger.Info("Archiving receipts to object storage", zap.String("bucket", a.Bucket()))
		return a, nil

	case BackendFS:
		a, err := NewFileReceiptArchive(cfg.Dir, logger)
		if err != nil {
			return nil, err
		}
		if cfg.RetentionDays > 0 {
			go a.RunRetention(ctx, time.Duration(cfg.RetentionDays)*24*time.Hour, DefaultCleanupInterval)
		}
		logger.Info("Archiving receipts to disk",
			zap.String("dir", a.Dir()),
			zap.Int("retention_days", cfg.RetentionDays))
		return a, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
