// Package web wires the HTTP API: a chi router, the middleware stack,
// and the handlers that front the recognition engine and repositories.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/recognize"
	"github.com/facegate/facegate/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	indexes    *database.IndexSet
}

// NewServer creates a new web server. The similarity index is built once
// from the current person snapshot; handlers keep it in sync afterwards.
func NewServer(ctx context.Context, cfg *config.Config, host string, port int, people database.PersonRepository, logs database.LogRepository, extractor embedding.Extractor) (*Server, error) {
	r := chi.NewRouter()

	indexes := database.NewIndexSet()
	snapshot, err := people.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading people for index build: %w", err)
	}
	if err := indexes.Rebuild(snapshot); err != nil {
		return nil, fmt.Errorf("building similarity index: %w", err)
	}

	s := &Server{
		config:  cfg,
		router:  r,
		indexes: indexes,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Minute))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	engine := recognize.New(extractor, &cfg.Thresholds)
	s.setupRoutes(people, logs, extractor, engine)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
