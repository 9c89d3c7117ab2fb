// Package router builds the ops HTTP engine and server.
package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/interfaces/http/handler"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestID adds a request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// NewEngine registers /healthz, /readyz and /metrics
func NewEngine(health *handler.HealthHandler, gatherer prometheus.Gatherer, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	engine := gin.New()
	engine.Use(logger.Recovery(log), RequestID(), logger.GinMiddleware(log))

	engine.GET("/healthz", health.Healthz)
	engine.GET("/readyz", health.Readyz)
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return engine
}

// Server runs the ops engine
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a server for engine on cfg.Port
func NewServer(cfg config.HTTPConfig, engine *gin.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           engine,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}
}

// Start serves in the background. Errors other than a clean shutdown are
// logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Ops HTTP server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Ops HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops accepting requests and waits for active ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
