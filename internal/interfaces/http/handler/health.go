package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rentbot/backend/internal/interfaces/http/dto"
)

const readinessTimeout = 2 * time.Second

// DatabaseChecker reports database health
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// ChannelChecker reports whether the chat channel is connected
type ChannelChecker interface {
	IsConnected() bool
}

// StatsFunc returns connection pool statistics
type StatsFunc func() (any, error)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	name      string
	version   string
	startTime time.Time
	db        DatabaseChecker
	channel   ChannelChecker
	stats     StatsFunc
}

// NewHealthHandler creates a new HealthHandler. channel may be nil when the
// process runs without a chat connection.
func NewHealthHandler(name, version string, db DatabaseChecker, channel ChannelChecker) *HealthHandler {
	return &HealthHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		db:        db,
		channel:   channel,
	}
}

// WithStats adds pool statistics to the readiness response
func (h *HealthHandler) WithStats(stats StatsFunc) *HealthHandler {
	h.stats = stats
	return h
}

// LivenessResponse is returned by /healthz
type LivenessResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Healthz reports that the process is up
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OK(LivenessResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// ReadinessResponse is returned by /readyz
type ReadinessResponse struct {
	Database string `json:"database"`
	Channel  string `json:"channel"`
	Pool     any    `json:"pool,omitempty"`
}

// Readyz reports whether the database answers and the channel is connected
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	resp := ReadinessResponse{Database: "ok", Channel: "disabled"}
	ready := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			resp.Database = "unreachable"
			ready = false
			_ = c.Error(err)
		}
	}
	if h.channel != nil {
		if h.channel.IsConnected() {
			resp.Channel = "connected"
		} else {
			resp.Channel = "disconnected"
			ready = false
		}
	}
	if h.stats != nil {
		if pool, err := h.stats(); err == nil {
			resp.Pool = pool
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, dto.Fail(dto.CodeNotReady, "dependency unavailable", resp))
		return
	}
	c.JSON(http.StatusOK, dto.OK(resp))
}
