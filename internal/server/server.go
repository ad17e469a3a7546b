// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prd-builder/internal/common/config"
	"prd-builder/internal/common/logger"
	"prd-builder/internal/common/observability"
	"prd-builder/internal/extractor"
)

// Server owns the HTTP surface: the chat endpoint plus health, readiness and
// metrics. It carries no per-request state; concurrent requests share only
// immutable dependencies.
type Server struct {
	cfg       config.ServerConfig
	logger    logger.Logger
	extractor extractor.Extractor
	obs       *observability.Observability
	httpSrv   *http.Server
}

func New(cfg config.ServerConfig, ext extractor.Extractor, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    log,
		extractor: ext,
		obs:       obs,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}

	return s
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"addr": s.httpSrv.Addr,
	})
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
