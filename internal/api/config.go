package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
)

// handleGetConfig returns one app_config value.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := s.db.GetConfig(r.Context(), key)
	if err != nil {
		if errors.Is(err, db.ErrConfigNotFound) {
			respondError(w, http.StatusNotFound, "config key not found")
			return
		}
		logger.Ctx(r.Context()).Error("failed to get config", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get config")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// handleSetConfig upserts one app_config value.
func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.db.SetConfig(r.Context(), key, req.Value); err != nil {
		logger.Ctx(r.Context()).Error("failed to set config", "key", key, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to set config")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}
