package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/backfill"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
	"github.com/DevPulseHQ/devpulse-web/internal/testutil"
)

// fakeAnthropicServer serves a minimal usage report for any requested day.
func fakeAnthropicServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("starting_at")
		report := anthropic.UsageReport{
			Data: []anthropic.UsageRecord{{
				Date:  date,
				Actor: &anthropic.UsageActor{Type: "user_actor", EmailAddress: "alice@acme.dev"},
				CoreMetrics: &anthropic.CoreMetrics{
					NumSessions: 2,
					LinesOfCode: &anthropic.LinesOfCode{Added: 40, Removed: 5},
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBackfillEndpoint_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := testutil.SetupTestEnvironment(t)
	upstream := fakeAnthropicServer(t)

	runner := &backfill.Runner{
		Store:  env.DB,
		Claude: anthropic.NewClient("test-key", anthropic.WithBaseURL(upstream.URL)),
	}
	handler := NewServer(env.DB, runner, nil, "test").SetupRoutes()

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/backfill", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("runs the requested range and stores aggregates", func(t *testing.T) {
		env.CleanDB(t)

		w := post(`{"startDate":"2026-03-10","endDate":"2026-03-11","sources":["claude"]}`)
		testutil.AssertStatus(t, w, http.StatusOK)

		var result backfill.Result
		testutil.ParseJSONResponse(t, w, &result)
		if result.Saved != 2 || result.Failed != 0 {
			t.Fatalf("expected 2 saved days, got %+v", result)
		}
		if result.RunID == "" {
			t.Error("expected a run ID")
		}

		rows, err := env.DB.GetMetrics(env.Ctx, metrics.SourceClaude, metrics.KindDaily, "2026-03-10", "2026-03-11")
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 stored rows, got %d", len(rows))
		}

		var stored anthropic.AssistantMetrics
		if err := json.Unmarshal(rows[0].Payload, &stored); err != nil {
			t.Fatalf("failed to decode stored payload: %v", err)
		}
		if stored.Totals.Sessions != 2 || stored.Totals.LinesAdded != 40 {
			t.Errorf("unexpected stored aggregate: %+v", stored.Totals)
		}
		if stored.ByUser["alice@acme.dev"] == nil {
			t.Error("expected per-user attribution")
		}
	})

	t.Run("re-posting the same range overwrites rather than duplicates", func(t *testing.T) {
		env.CleanDB(t)

		for i := 0; i < 2; i++ {
			w := post(`{"startDate":"2026-03-10","endDate":"2026-03-10","sources":["claude"]}`)
			testutil.AssertStatus(t, w, http.StatusOK)
		}

		rows, err := env.DB.GetMetrics(env.Ctx, metrics.SourceClaude, metrics.KindDaily, "2026-03-10", "2026-03-10")
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(rows) != 1 {
			t.Errorf("expected 1 row after re-run, got %d", len(rows))
		}
	})

	t.Run("invalid request body is rejected", func(t *testing.T) {
		w := post(`{"startDate":`)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "invalid request body")
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		w := post(`{"startDate":"2026-03-12","endDate":"2026-03-10"}`)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown source is rejected", func(t *testing.T) {
		w := post(`{"startDate":"2026-03-10","endDate":"2026-03-10","sources":["copilot"]}`)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unconfigured provider is rejected", func(t *testing.T) {
		w := post(`{"startDate":"2026-03-10","endDate":"2026-03-10","sources":["github"]}`)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("no runner means backfill is unavailable", func(t *testing.T) {
		bare := NewServer(env.DB, nil, nil, "test").SetupRoutes()
		req := httptest.NewRequest("POST", "/api/backfill", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		bare.ServeHTTP(w, req)
		testutil.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "no providers configured")
	})
}
