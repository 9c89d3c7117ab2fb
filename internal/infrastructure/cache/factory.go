package cache

import (
	"context"
	"fmt"

	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DedupeStoreFactory builds the message dedupe store selected by config
type DedupeStoreFactory struct {
	dedupe        config.DedupeConfig
	redis         config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// NewDedupeStoreFactory creates a factory. Memory fallback is on by default.
func NewDedupeStoreFactory(dedupe config.DedupeConfig, redis config.RedisConfig) *DedupeStoreFactory {
	return &DedupeStoreFactory{
		dedupe:        dedupe,
		redis:         redis,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
}

// WithLogger sets the logger
func (f *DedupeStoreFactory) WithLogger(logger *zap.Logger) *DedupeStoreFactory {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// WithMemoryFallback controls whether an unreachable Redis degrades to memory
func (f *DedupeStoreFactory) WithMemoryFallback(allow bool) *DedupeStoreFactory {
	f.allowFallback = allow
	return f
}

// Create returns the configured store, or nil when dedupe is disabled
func (f *DedupeStoreFactory) Create(ctx context.Context) (shared.IdempotencyStore, error) {
	if !f.dedupe.Enabled {
		f.logger.Info("Message dedupe disabled")
		return nil, nil
	}

	switch f.dedupe.Backend {
	case "", BackendMemory:
		f.logger.Info("Using in-memory message dedupe", zap.Duration("ttl", f.dedupe.TTL))
		return NewMemoryDedupeStore(), nil
	case BackendRedis:
		store, err := NewRedisDedupeStore(ctx, f.redis)
		if err == nil {
			f.logger.Info("Using Redis message dedupe", zap.String("addr", f.redis.Addr()))
			return store, nil
		}
		if !f.allowFallback {
			return nil, fmt.Errorf("redis required for message dedupe but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory message dedupe. "+
			"Redelivered messages may be handled twice after a restart.",
			zap.Error(err),
		)
		return NewMemoryDedupeStore(), nil
	default:
		return nil, fmt.Errorf("unknown dedupe backend %q", f.dedupe.Backend)
	}
}
