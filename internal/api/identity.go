package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
	"github.com/DevPulseHQ/devpulse-web/internal/validation"
)

// handleListMappings returns all identity mappings.
func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.db.ListIdentityMappings(r.Context())
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to list identity mappings", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list identity mappings")
		return
	}
	if mappings == nil {
		mappings = []db.IdentityMapping{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"mappings": mappings})
}

// handleUpsertMapping creates or replaces the mapping for an email.
func (s *Server) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email          string `json:"email"`
		GitHubUsername string `json:"githubUsername"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.GitHubUsername = strings.TrimSpace(req.GitHubUsername)

	if !validation.IsValidEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if req.GitHubUsername == "" {
		respondError(w, http.StatusBadRequest, "githubUsername is required")
		return
	}

	mapping, err := s.db.UpsertIdentityMapping(r.Context(), req.Email, req.GitHubUsername)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to upsert identity mapping", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save identity mapping")
		return
	}
	respondJSON(w, http.StatusOK, mapping)
}

// handleDeleteMapping removes the mapping for an email.
func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(chi.URLParam(r, "email")))
	if email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := s.db.DeleteIdentityMapping(r.Context(), email); err != nil {
		if errors.Is(err, db.ErrMappingNotFound) {
			respondError(w, http.StatusNotFound, "mapping not found")
			return
		}
		logger.Ctx(r.Context()).Error("failed to delete identity mapping", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete identity mapping")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
