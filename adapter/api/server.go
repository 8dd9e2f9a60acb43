// Package api provides the HTTP API for meals and delivery slots.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/mealslot/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	server  *http.Server
	logger  *slog.Logger
	meals   *MealHandler
	slots   *SlotHandler
	health  *observability.HealthRegistry
	metrics observability.Metrics
	scrape  http.Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServerDeps are the collaborators of the server. Health, Metrics and
// MetricsHandler are optional.
type ServerDeps struct {
	Meals          *MealHandler
	Slots          *SlotHandler
	Health         *observability.HealthRegistry
	Metrics        observability.Metrics
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}
	if deps.Health == nil {
		deps.Health = observability.NewHealthRegistry()
	}

	s := &Server{
		router:  chi.NewRouter(),
		logger:  deps.Logger,
		meals:   deps.Meals,
		slots:   deps.Slots,
		health:  deps.Health,
		metrics: deps.Metrics,
		scrape:  deps.MetricsHandler,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RealIP)
	s.router.Use(requestContext)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware(s.metrics))
	s.router.Use(accessLog(s.logger))

	s.router.Get("/health", s.handleHealth)
	if s.scrape != nil {
		s.router.Method(http.MethodGet, "/metrics", s.scrape)
	}

	s.mountResources(s.router)
	s.router.Route("/api", s.mountResources)
}

// mountResources registers the resource routes on r. They are served both at
// the root and under /api.
func (s *Server) mountResources(r chi.Router) {
	r.Route("/meals", func(r chi.Router) {
		r.Get("/", s.meals.List)
		r.Post("/", s.meals.Create)
		r.Get("/{id}", s.meals.Get)
	})

	r.Route("/delivery-slots", func(r chi.Router) {
		r.Get("/", s.slots.List)
		r.Post("/", s.slots.Create)
		r.Get("/date/{date}", s.slots.ForDate)
		r.Get("/{id}", s.slots.Get)
		r.Patch("/{id}/reschedule", s.slots.Reschedule)
		r.Patch("/{id}/status", s.slots.ChangeStatus)
		r.Get("/{id}/reschedule-attempts", s.slots.Attempts)
		r.Patch("/{slotId}/meals/{mealId}", s.slots.UpdateMeal)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := s.health.Check(r.Context())
	status := http.StatusOK
	if result.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeMessage writes {"message": message}.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
