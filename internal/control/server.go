// Package control serves the bridge's status REST API and WebSocket feed
// for external dashboards when --api-port is set. The TUI does not use it;
// it reads the metrics.Collector directly.
package control

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/config"
	"github.com/jfoltran/copyredis/internal/metrics"
)

// Server is the HTTP server that exposes the status REST API and the
// WebSocket snapshot feed. It carries no frontend of its own.
type Server struct {
	collector *metrics.Collector
	cfg       config.Config
	logger    zerolog.Logger
	hub       *Hub
	srv       *http.Server
}

// New creates a new Server bound to collector.
func New(collector *metrics.Collector, cfg config.Config, logger zerolog.Logger) *Server {
	return &Server{
		collector: collector,
		cfg:       cfg,
		logger:    logger.With().Str("component", "control-server").Logger(),
		hub:       newHub(collector, logger),
	}
}

// Start begins serving on the given port. It blocks until ctx is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context, port int) error {
	h := &handlers{collector: s.collector, cfg: s.cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", h.status)
	mux.HandleFunc("GET /api/v1/targets", h.targets)
	mux.HandleFunc("GET /api/v1/config", h.configHandler)
	mux.HandleFunc("GET /api/v1/logs", h.logs)
	mux.HandleFunc("/api/v1/ws", s.hub.handleWS)

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	go s.hub.start(ctx)

	s.logger.Info().Int("port", port).Msg("starting status server")

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return s.srv.Close()
	case err := <-errCh:
		return err
	}
}

// StartBackground starts the server in a goroutine, logging any error
// instead of returning it.
func (s *Server) StartBackground(ctx context.Context, port int) {
	go func() {
		if err := s.Start(ctx, port); err != nil {
			s.logger.Err(err).Msg("status server error")
		}
	}()
}
