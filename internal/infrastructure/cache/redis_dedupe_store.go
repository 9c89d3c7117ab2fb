package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rentbot/backend/internal/domain/shared"
	"github.com/rentbot/backend/internal/infrastructure/config"
)

// DefaultRedisKeyPrefix namespaces dedupe keys in a shared Redis
const DefaultRedisKeyPrefix = "dedupe:"

// RedisDedupeStore keeps processed message keys in Redis so they survive
// restarts and are shared between bot replicas
type RedisDedupeStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ownClient bool
}

// NewRedisDedupeStore connects to Redis and verifies the connection
func NewRedisDedupeStore(ctx context.Context, cfg config.RedisConfig) (*RedisDedupeStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return &RedisDedupeStore{client: client, keyPrefix: DefaultRedisKeyPrefix, ownClient: true}, nil
}

// NewRedisDedupeStoreWithClient wraps an existing client. Close leaves the
// client open.
func NewRedisDedupeStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisDedupeStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &RedisDedupeStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed sets key with SET NX so that exactly one caller wins
func (s *RedisDedupeStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %q processed: %w", key, err)
	}
	return ok, nil
}

// IsProcessed reports whether key is present
func (s *RedisDedupeStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %q: %w", key, err)
	}
	return n > 0, nil
}

// Ping checks the Redis connection
func (s *RedisDedupeStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client if the store created it
func (s *RedisDedupeStore) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisDedupeStore)(nil)
