package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
	"github.com/DevPulseHQ/devpulse-web/internal/testutil"
)

func TestMetricsEndpoint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := testutil.SetupTestEnvironment(t)
	handler := NewServer(env.DB, nil, nil, "test").SetupRoutes()

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	seed := func(t *testing.T) {
		testutil.SaveMetric(t, env, metrics.SourceGitHub, metrics.KindDaily, "2026-03-10", github.PRMetrics{
			Totals: github.PRTotals{PRCount: 2},
		})
		testutil.SaveMetric(t, env, metrics.SourceClaude, metrics.KindDaily, "2026-03-10", map[string]int{"x": 1})
		testutil.SaveMetric(t, env, metrics.SourceCursor, metrics.KindSpend, "2026-03-10", map[string]int{"y": 2})
	}

	t.Run("source and kind narrow the result", func(t *testing.T) {
		env.CleanDB(t)
		seed(t)

		w := get("/api/metrics?startDate=2026-03-10&endDate=2026-03-10&source=github&kind=daily")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Metrics []db.StoredMetric `json:"metrics"`
		}
		testutil.ParseJSONResponse(t, w, &resp)
		if len(resp.Metrics) != 1 || resp.Metrics[0].Source != metrics.SourceGitHub {
			t.Errorf("unexpected rows: %+v", resp.Metrics)
		}
	})

	t.Run("comma-separated sources filter without kind", func(t *testing.T) {
		env.CleanDB(t)
		seed(t)

		w := get("/api/metrics?startDate=2026-03-10&endDate=2026-03-10&source=github,claude")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Metrics []db.StoredMetric `json:"metrics"`
		}
		testutil.ParseJSONResponse(t, w, &resp)
		if len(resp.Metrics) != 2 {
			t.Errorf("expected 2 rows, got %+v", resp.Metrics)
		}
	})

	t.Run("no source returns everything in range", func(t *testing.T) {
		env.CleanDB(t)
		seed(t)

		w := get("/api/metrics?startDate=2026-03-10&endDate=2026-03-10")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Metrics []db.StoredMetric `json:"metrics"`
		}
		testutil.ParseJSONResponse(t, w, &resp)
		if len(resp.Metrics) != 3 {
			t.Errorf("expected 3 rows, got %+v", resp.Metrics)
		}
	})

	t.Run("unknown source is rejected", func(t *testing.T) {
		w := get("/api/metrics?startDate=2026-03-10&endDate=2026-03-10&source=copilot")
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "unknown source: copilot")
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		w := get("/api/metrics?startDate=2026-03-10&endDate=2026-03-10&source=github&kind=hourly")
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "unknown kind: hourly")
	})

	t.Run("malformed dates are rejected", func(t *testing.T) {
		w := get("/api/metrics?startDate=10-03-2026&endDate=2026-03-10")
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "invalid startDate: 10-03-2026")
	})
}
