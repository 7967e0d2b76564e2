package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchUsageReport(t *testing.T) {
	t.Run("sends admin headers and date parameter", func(t *testing.T) {
		var gotKey, gotVersion, gotDate string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			gotVersion = r.Header.Get("anthropic-version")
			gotDate = r.URL.Query().Get("starting_at")
			json.NewEncoder(w).Encode(UsageReport{Data: []UsageRecord{{Date: "2026-03-10"}}})
		}))
		defer server.Close()

		client := NewClient("admin-key", WithBaseURL(server.URL))
		report, err := client.FetchUsageReport(context.Background(), "2026-03-10")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotKey != "admin-key" {
			t.Errorf("expected X-API-Key header, got %q", gotKey)
		}
		if gotVersion != "2023-06-01" {
			t.Errorf("unexpected anthropic-version %q", gotVersion)
		}
		if gotDate != "2026-03-10" {
			t.Errorf("unexpected starting_at %q", gotDate)
		}
		if len(report.Data) != 1 {
			t.Errorf("expected 1 record, got %d", len(report.Data))
		}
	})

	t.Run("surfaces page-limit truncation to the caller", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(UsageReport{
				Data:    []UsageRecord{{Date: "2026-03-10"}},
				HasMore: true,
			})
		}))
		defer server.Close()

		client := NewClient("admin-key", WithBaseURL(server.URL))
		report, err := client.FetchUsageReport(context.Background(), "2026-03-10")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// The fetch still succeeds with the first page; the flag tells the
		// caller the day exceeded the report limit.
		if !report.HasMore {
			t.Error("expected HasMore to be carried through")
		}
		if len(report.Data) != 1 {
			t.Errorf("expected the first page's records, got %d", len(report.Data))
		}
	})

	t.Run("decodes structured API errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid key"}}`))
		}))
		defer server.Close()

		client := NewClient("bad-key", WithBaseURL(server.URL))
		_, err := client.FetchUsageReport(context.Background(), "2026-03-10")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", apiErr.StatusCode)
		}
		if apiErr.ErrorDetail.Type != "authentication_error" {
			t.Errorf("unexpected error type %q", apiErr.ErrorDetail.Type)
		}
	})

	t.Run("falls back to raw body for non-JSON errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream unavailable"))
		}))
		defer server.Close()

		client := NewClient("admin-key", WithBaseURL(server.URL))
		_, err := client.FetchUsageReport(context.Background(), "2026-03-10")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
