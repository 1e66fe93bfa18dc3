// Package api exposes the triage dialogue, doctor directory and booking
// requests over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/middleware"
	"github.com/medemi-triage-server/internal/report"
	"github.com/medemi-triage-server/internal/service"
)

const shutdownTimeout = 30 * time.Second

// BreakerReporter exposes the extraction circuit breaker state.
type BreakerReporter interface {
	BreakerState() gobreaker.State
}

// HealthChecker is implemented by optional backing services such as the
// PostgreSQL pool.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// StatsReporter adds pool statistics to a healthy component's report.
type StatsReporter interface {
	Stats() map[string]any
}

// Dependencies are the services the handlers call into. Extractor, Database
// and Cache are optional and only feed the health report.
type Dependencies struct {
	Triage    *service.TriageService
	Bookings  *service.BookingService
	Directory domain.DoctorDirectory
	Sessions  domain.SessionStore
	Reports   *report.Generator
	Extractor BreakerReporter
	Database  HealthChecker
	Cache     HealthChecker
}

// Server represents the HTTP server
type Server struct {
	cfg      domain.ServerConfig
	deps     Dependencies
	logger   *logrus.Logger
	router   *gin.Engine
	server   *http.Server
	upgrader websocket.Upgrader
	version  string
}

// NewServer creates a new HTTP server instance
func NewServer(cfg domain.ServerConfig, deps Dependencies, logger *logrus.Logger) *Server {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.AuditLogger(logger))

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		logger:  logger,
		router:  router,
		version: "0.1.0",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		var err error
		if s.cfg.TLSEnabled {
			err = s.server.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")

	// The websocket dialogue is long-lived and stays outside the
	// per-request deadline.
	v1.GET("/sessions/:id/ws", s.handleSessionSocket)

	timed := v1.Group("", middleware.RequestTimeout(s.cfg.RequestTimeout))
	{
		timed.POST("/sessions", s.handleStartSession)
		timed.GET("/sessions/:id", s.handleGetSession)
		timed.POST("/sessions/:id/answers", s.handleSubmitAnswer)
		timed.GET("/sessions/:id/assessment", s.handleGetAssessment)
		timed.GET("/sessions/:id/report.pdf", s.handleGetReport)
		timed.DELETE("/sessions/:id", s.handleAbandonSession)

		timed.GET("/doctors", s.handleListDoctors)

		timed.POST("/bookings", s.handleCreateBooking)
		timed.GET("/bookings/:id", s.handleGetBooking)
	}
}
