package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
)

type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

func NewServer(cfg config.HTTPServerConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

// Start blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Infof("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
