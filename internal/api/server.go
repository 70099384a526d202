// Package api serves the roll log over HTTP as JSON.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/config"
)

// NewRouter builds the gin engine with middleware and every route.
//
// Precondition: svc and logger must be non-nil.
func NewRouter(svc RollService, cfg config.HTTPConfig, logger *zap.Logger) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.Use(RequestID())
	router.Use(Logging(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewRollHandler(svc, logger)
	v1 := router.Group("/v1")
	{
		v1.GET("/presets", h.GetPresets)

		v1.GET("/rolls", h.ListRolls)
		v1.POST("/rolls/2d6", h.Roll2D6)
		v1.POST("/rolls/single", h.RollSingle)
		v1.POST("/rolls/custom", h.RollCustom)
		v1.POST("/rolls/structured", h.RollStructured)
		v1.DELETE("/rolls/:index", h.DeleteRoll)
		v1.DELETE("/rolls", h.ClearRolls)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Server runs the API on its own listener.
type Server struct {
	cfg    config.HTTPConfig
	srv    *http.Server
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
}

// NewServer creates a Server for handler.
//
// Precondition: handler and logger must be non-nil.
func NewServer(cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start listens and serves until Stop. It blocks.
//
// Postcondition: Returns nil after Stop, or the listen/serve error.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("http api listening", zap.String("addr", listener.Addr().String()))
	if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires, then closes them.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	if err := s.srv.Shutdown(ctx); err != nil {
		_ = s.srv.Close()
		return fmt.Errorf("shutting down http api: %w", err)
	}
	s.logger.Info("http api stopped")
	return nil
}

// Addr returns the bound address, or "" before Start has listened.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
