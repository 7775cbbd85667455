// Package server exposes the assignment pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ionspid/taxassign/internal/config"
	"github.com/ionspid/taxassign/internal/lineage"
)

// Server handles assignment requests against an optional lineage source.
type Server struct {
	cfg     config.Config
	src     lineage.Source
	limiter *rate.Limiter
}

// New builds a server. src may be nil; subjects then resolve to
// synthetic lineages.
func New(cfg config.Config, src lineage.Source) *Server {
	return &Server{
		cfg:     cfg,
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst),
	}
}

// Router assembles the HTTP routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/methods", s.handleMethods)

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/assign", s.handleAssign)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("server: listening", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}
