package api

import (
	"net/http"
	"strings"

	"github.com/DevPulseHQ/devpulse-web/internal/logger"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// handleGetMetrics returns stored raw aggregates for a date range.
// Optional source and kind parameters narrow the result; source accepts a
// comma-separated list when kind is omitted.
func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	sourceParam := r.URL.Query().Get("source")
	kindParam := r.URL.Query().Get("kind")

	if kindParam != "" {
		source := metrics.Source(sourceParam)
		if !source.Valid() {
			respondError(w, http.StatusBadRequest, "unknown source: "+sourceParam)
			return
		}
		kind := metrics.Kind(kindParam)
		if !kind.Valid() {
			respondError(w, http.StatusBadRequest, "unknown kind: "+kindParam)
			return
		}

		result, err := s.db.GetMetrics(r.Context(), source, kind, start, end)
		if err != nil {
			logger.Ctx(r.Context()).Error("failed to query metrics", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to query metrics")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"metrics": result})
		return
	}

	var sources []metrics.Source
	if sourceParam != "" {
		for _, name := range strings.Split(sourceParam, ",") {
			source := metrics.Source(strings.TrimSpace(name))
			if !source.Valid() {
				respondError(w, http.StatusBadRequest, "unknown source: "+name)
				return
			}
			sources = append(sources, source)
		}
	}

	result, err := s.db.GetAllMetrics(r.Context(), start, end, sources)
	if err != nil {
		logger.Ctx(r.Context()).Error("failed to query metrics", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to query metrics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"metrics": result})
}

// parseRange reads and validates startDate/endDate query parameters. On
// failure it writes a 400 response and returns ok=false.
func parseRange(w http.ResponseWriter, r *http.Request) (start, end string, ok bool) {
	start = r.URL.Query().Get("startDate")
	end = r.URL.Query().Get("endDate")
	if start == "" || end == "" {
		respondError(w, http.StatusBadRequest, "startDate and endDate are required (YYYY-MM-DD)")
		return "", "", false
	}

	startDay, err := metrics.ParseDate(start)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid startDate: "+start)
		return "", "", false
	}
	endDay, err := metrics.ParseDate(end)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid endDate: "+end)
		return "", "", false
	}
	if endDay.Before(startDay) {
		respondError(w, http.StatusBadRequest, "endDate precedes startDate")
		return "", "", false
	}
	return start, end, true
}
