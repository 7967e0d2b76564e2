package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListPullRequests(t *testing.T) {
	t.Run("sends auth headers and follows pagination", func(t *testing.T) {
		var pages []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer auth, got %q", got)
			}
			if got := r.Header.Get("Accept"); got != "application/vnd.github.v3+json" {
				t.Errorf("unexpected Accept header %q", got)
			}

			page := r.URL.Query().Get("page")
			pages = append(pages, page)

			// Full first page, short second page ends pagination
			var batch []PullRequest
			if page == "1" {
				for i := 0; i < 100; i++ {
					batch = append(batch, PullRequest{Number: i + 1})
				}
			} else {
				batch = []PullRequest{{Number: 101}}
			}
			json.NewEncoder(w).Encode(batch)
		}))
		defer server.Close()

		client := NewClient("test-token", WithBaseURL(server.URL))
		prs, err := client.ListPullRequests(context.Background(), "acme", "widgets")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(prs) != 101 {
			t.Errorf("expected 101 PRs, got %d", len(prs))
		}
		if len(pages) != 2 {
			t.Errorf("expected 2 page requests, got %v", pages)
		}
	})

	t.Run("returns APIError with status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"rate limited"}`))
		}))
		defer server.Close()

		client := NewClient("test-token", WithBaseURL(server.URL))
		_, err := client.ListPullRequests(context.Background(), "acme", "widgets")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403, got %d", apiErr.StatusCode)
		}
	})
}

func TestFetchPRsInRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prs := []PullRequest{
			{Number: 1, CreatedAt: time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)},
			{Number: 2, CreatedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)},
			{Number: 3, CreatedAt: time.Date(2026, 3, 11, 23, 59, 0, 0, time.UTC)},
			{Number: 4, CreatedAt: time.Date(2026, 3, 12, 0, 1, 0, 0, time.UTC)},
		}
		json.NewEncoder(w).Encode(prs)
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL))
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)

	prs, err := client.FetchPRsInRange(context.Background(), "acme", "widgets", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// End date is inclusive through end of day; 9th and 12th fall outside
	if len(prs) != 2 {
		t.Fatalf("expected 2 PRs in range, got %d", len(prs))
	}
	if prs[0].Number != 2 || prs[1].Number != 3 {
		t.Errorf("wrong PRs in range: %d, %d", prs[0].Number, prs[1].Number)
	}
}
