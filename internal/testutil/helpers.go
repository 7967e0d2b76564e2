package testutil

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// ParseJSONResponse decodes JSON response body into v
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, w.Body.String())
	}
}

// AssertStatus checks HTTP status code matches expected
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()

	if w.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertErrorResponse checks error response format and message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	t.Helper()

	AssertStatus(t, w, expectedStatus)

	var resp map[string]string
	ParseJSONResponse(t, w, &resp)

	if resp["error"] != expectedMessage {
		t.Errorf("expected error message %q, got %q", expectedMessage, resp["error"])
	}
}

// SaveMetric stores a payload under (source, kind, date) for test setup.
func SaveMetric(t *testing.T, env *TestEnvironment, source metrics.Source, kind metrics.Kind, date string, payload interface{}) *db.StoredMetric {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	stored, err := env.DB.SaveMetric(context.Background(), source, kind, date, body)
	if err != nil {
		t.Fatalf("failed to save metric: %v", err)
	}
	return stored
}

// CreateMapping inserts an identity mapping for test setup.
func CreateMapping(t *testing.T, env *TestEnvironment, email, githubUsername string) {
	t.Helper()

	if _, err := env.DB.UpsertIdentityMapping(context.Background(), email, githubUsername); err != nil {
		t.Fatalf("failed to create identity mapping: %v", err)
	}
}
