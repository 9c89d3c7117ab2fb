package whatsapp

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// reconnector runs one reconnect attempt after a delay and keeps
// rescheduling until an attempt succeeds or it is stopped
type reconnector struct {
	delay   time.Duration
	connect func() error
	logger  *zap.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newReconnector(delay time.Duration, connect func() error, logger *zap.Logger) *reconnector {
	return &reconnector{delay: delay, connect: connect, logger: logger}
}

// schedule arms the timer unless an attempt is already pending
func (r *reconnector) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped || r.timer != nil {
		return
	}
	r.logger.Info("Reconnecting", zap.Duration("in", r.delay))
	r.timer = time.AfterFunc(r.delay, r.attempt)
}

func (r *reconnector) attempt() {
	r.mu.Lock()
	r.timer = nil
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return
	}

	if err := r.connect(); err != nil {
		r.logger.Warn("Reconnect failed", zap.Error(err))
		r.schedule()
	}
}

// pending reports whether an attempt is scheduled
func (r *reconnector) pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *reconnector) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
