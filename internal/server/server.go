// Package server exposes the relock pipeline as an HTTP service.
//
// The service is a thin transport layer over [relock.Runner] and an optional
// [snapshot.Store]: request bodies are the same JSON documents the CLI
// consumes, responses are the assembled lock files byte-for-byte as the CLI
// would write them.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/relock/pkg/relock"
	"github.com/matzehuels/relock/pkg/snapshot"
)

// Config holds server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the relock HTTP API.
type Server struct {
	cfg    Config
	runner *relock.Runner
	store  snapshot.Store // nil when snapshot persistence is not configured
	logger *log.Logger
	router chi.Router
}

// New creates a server around the given runner. store may be nil, in which
// case the snapshot endpoints respond 404.
func New(cfg Config, runner *relock.Runner, store snapshot.Store, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		store:  store,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// routes builds the router with middleware and all endpoints.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(recoverPanics(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/relock", s.handleRelock)
		r.Post("/bootstrap", s.handleBootstrap)
		r.Get("/snapshots", s.handleListSnapshots)
		r.Get("/snapshots/*", s.handleGetSnapshot)
		r.Put("/snapshots/*", s.handlePutSnapshot)
		r.Delete("/snapshots/*", s.handleDeleteSnapshot)
	})
	return r
}

// Handler returns the root HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
