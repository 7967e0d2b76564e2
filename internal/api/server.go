// Package api exposes the HTTP surface: metric queries, dashboard views,
// backfill triggering, identity-mapping management and app configuration.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DevPulseHQ/devpulse-web/internal/backfill"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
)

// Server holds dependencies for API handlers
type Server struct {
	db             *db.DB
	runner         *backfill.Runner
	allowedOrigins []string
	version        string
}

// NewServer creates a new API server
func NewServer(database *db.DB, runner *backfill.Runner, allowedOrigins []string, version string) *Server {
	return &Server{
		db:             database,
		runner:         runner,
		allowedOrigins: allowedOrigins,
		version:        version,
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(SpanEnricher)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(decompressMiddleware())
	r.Use(compressMiddleware())

	// Health check
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics", s.handleGetMetrics)
		r.Post("/backfill", s.handleBackfill)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", s.handleDashboardSummary)
			r.Get("/team", s.handleDashboardTeam)
			r.Get("/ai-metrics", s.handleDashboardAIMetrics)
			r.Get("/ai-metrics/daily", s.handleDashboardDaily)
		})

		r.Route("/identity-mappings", func(r chi.Router) {
			r.Get("/", s.handleListMappings)
			r.Put("/", s.handleUpsertMapping)
			r.Delete("/{email}", s.handleDeleteMapping)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/{key}", s.handleGetConfig)
			r.Put("/{key}", s.handleSetConfig)
		})
	})

	return r
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleRoot returns API info
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "devpulse-backend",
		"version": s.version,
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
