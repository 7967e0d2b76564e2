package api

import (
	"context"
	"net/http"

	"github.com/DevPulseHQ/devpulse-web/internal/dashboard"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/identity"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
)

// loadRange fetches the stored rows and a fresh identity resolver for one
// dashboard request. The resolver is rebuilt per request so mapping edits
// show up on the next reload.
func (s *Server) loadRange(ctx context.Context, start, end string) ([]db.StoredMetric, *identity.Resolver, error) {
	rows, err := s.db.GetAllMetrics(ctx, start, end, nil)
	if err != nil {
		return nil, nil, err
	}
	mappings, err := s.db.ListIdentityMappings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rows, identity.NewResolver(mappings), nil
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	rows, _, err := s.loadRange(r.Context(), start, end)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to load dashboard data", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	view, err := dashboard.BuildSummary(rows)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to build summary", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDashboardTeam(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	rows, resolver, err := s.loadRange(r.Context(), start, end)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to load dashboard data", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	view, err := dashboard.BuildTeamView(rows, resolver)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to build team view", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build team view")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDashboardAIMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	rows, resolver, err := s.loadRange(r.Context(), start, end)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to load dashboard data", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	view, err := dashboard.BuildAIMetrics(rows, resolver)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to build AI metrics", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build AI metrics")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDashboardDaily(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}
	user := r.URL.Query().Get("user")

	rows, resolver, err := s.loadRange(r.Context(), start, end)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to load dashboard data", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard data")
		return
	}

	view, err := dashboard.BuildDailySeries(rows, start, end, user, resolver)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to build daily series", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to build daily series")
		return
	}
	respondJSON(w, http.StatusOK, view)
}
