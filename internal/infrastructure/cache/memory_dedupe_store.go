package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rentbot/backend/internal/domain/shared"
)

// DefaultSweepInterval is how often expired keys are dropped from memory
const DefaultSweepInterval = 5 * time.Minute

// MemoryDedupeStore keeps processed message keys in process memory.
// Keys are lost on restart, so a message redelivered after a restart is
// handled again.
type MemoryDedupeStore struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// MemoryOption configures a MemoryDedupeStore
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	sweep time.Duration
	now   func() time.Time
}

// WithSweepInterval sets how often expired keys are swept
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) { o.sweep = d }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// NewMemoryDedupeStore creates the store and starts its sweeper
func NewMemoryDedupeStore(opts ...MemoryOption) *MemoryDedupeStore {
	o := memoryOptions{sweep: DefaultSweepInterval, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	s := &MemoryDedupeStore{
		expires: make(map[string]time.Time),
		now:     o.now,
		stop:    make(chan struct{}),
	}
	go s.sweepLoop(o.sweep)
	return s
}

// MarkProcessed records key until ttl elapses. It returns false when key is
// already recorded and not yet expired.
func (s *MemoryDedupeStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key is recorded and not expired
func (s *MemoryDedupeStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.expires[key]
	return ok && s.now().Before(exp), nil
}

// Close stops the sweeper. It is safe to call more than once.
func (s *MemoryDedupeStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Len returns the number of keys held, expired ones included until swept
func (s *MemoryDedupeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expires)
}

func (s *MemoryDedupeStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryDedupeStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
		}
	}
}

var _ shared.IdempotencyStore = (*MemoryDedupeStore)(nil)
