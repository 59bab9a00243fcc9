package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Server exposes run status, liveness, and metrics over HTTP.
type Server struct {
	srv     *http.Server
	engine  *gin.Engine
	tracker *Tracker
	log     logging.Logger
}

// NewServer builds the status server.  metricsHandler may be nil, in which
// case /metrics is not mounted.
func NewServer(cfg config.StatusConfig, tracker *Tracker, metricsHandler http.Handler, log logging.Logger) (*Server, error) {
	if tracker == nil {
		return nil, errors.New(errors.ErrCodeValidation, "status tracker must not be nil")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, errors.New(errors.ErrCodeValidation, "status port must be in (0, 65535]")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:  engine,
		tracker: tracker,
		log:     log,
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/status", s.handleStatus)
	if metricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(metricsHandler))
	}
	return s, nil
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.log.Info("status server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, errors.ErrCodeInternal, "status server failed")
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "status server shutdown failed")
	}
	s.log.Info("status server stopped")
	return nil
}

// Handler returns the route tree, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.tracker.Snapshot())
}

//Personal.AI order the ending
