package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/schemata/internal/config"
	"github.com/JaimeStill/schemata/internal/infrastructure"
)

// Server ties the infrastructure to the HTTP listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

// NewServer builds infrastructure, mounts every module on the router, and
// prepares the listener. Nothing is started.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, cfg)
	if err := modules.Mount(router); err != nil {
		return nil, fmt.Errorf("mount modules: %w", err)
	}

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Run starts every subsystem, blocks until ctx is done, and then shuts down
// within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	log := s.infra.Logger

	if err := s.infra.Start(); err != nil {
		return fmt.Errorf("start infrastructure: %w", err)
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return s.abort(err, timeout)
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		log.Info("schemata ready", "addr", s.http.Addr())
	}()

	<-ctx.Done()
	log.Info("shutdown requested", "timeout", timeout)

	return s.infra.Lifecycle.Shutdown(timeout)
}

func (s *Server) abort(cause error, timeout time.Duration) error {
	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		s.infra.Logger.Error("shutdown after failed start", "error", err)
	}
	return cause
}
