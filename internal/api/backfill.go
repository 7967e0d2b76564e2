package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DevPulseHQ/devpulse-web/internal/backfill"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
)

// handleBackfill runs a backfill synchronously and returns the per-day
// outcome. Partial failure is a 200: the result lists which days were
// skipped, and re-posting the same range retries them.
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "no providers configured")
		return
	}

	var req backfill.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		if errors.Is(err, backfill.ErrNoSources) || errors.Is(err, cursor.ErrRangeTooLong) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Ctx(r.Context()).Error("backfill run failed", "error", err)
		respondError(w, http.StatusInternalServerError, "backfill run failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
