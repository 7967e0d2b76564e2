package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/testutil"
)

func TestIdentityMappingEndpoints_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := testutil.SetupTestEnvironment(t)
	handler := NewServer(env.DB, nil, nil, "test").SetupRoutes()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("upsert then list", func(t *testing.T) {
		env.CleanDB(t)

		w := do("PUT", "/api/identity-mappings/", `{"email":"Alice@Acme.Dev","githubUsername":"alice-gh"}`)
		testutil.AssertStatus(t, w, http.StatusOK)

		var mapping db.IdentityMapping
		testutil.ParseJSONResponse(t, w, &mapping)
		if mapping.Email != "alice@acme.dev" {
			t.Errorf("expected lowercased email, got %q", mapping.Email)
		}
		if mapping.GitHubUsername != "alice-gh" {
			t.Errorf("unexpected login: %q", mapping.GitHubUsername)
		}

		w = do("GET", "/api/identity-mappings/", "")
		testutil.AssertStatus(t, w, http.StatusOK)

		var list struct {
			Mappings []db.IdentityMapping `json:"mappings"`
		}
		testutil.ParseJSONResponse(t, w, &list)
		if len(list.Mappings) != 1 || list.Mappings[0].Email != "alice@acme.dev" {
			t.Errorf("unexpected list: %+v", list.Mappings)
		}
	})

	t.Run("list is an empty array when no mappings exist", func(t *testing.T) {
		env.CleanDB(t)

		w := do("GET", "/api/identity-mappings/", "")
		testutil.AssertStatus(t, w, http.StatusOK)
		if !strings.Contains(w.Body.String(), `"mappings":[]`) {
			t.Errorf("expected empty array, got %s", w.Body.String())
		}
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		env.CleanDB(t)

		w := do("PUT", "/api/identity-mappings/", `{"email":"not-an-email","githubUsername":"x"}`)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "invalid email address")
	})

	t.Run("missing login is rejected", func(t *testing.T) {
		env.CleanDB(t)

		w := do("PUT", "/api/identity-mappings/", `{"email":"alice@acme.dev"}`)
		testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "githubUsername is required")
	})

	t.Run("delete removes the mapping", func(t *testing.T) {
		env.CleanDB(t)
		testutil.CreateMapping(t, env, "alice@acme.dev", "alice-gh")

		w := do("DELETE", "/api/identity-mappings/alice@acme.dev", "")
		testutil.AssertStatus(t, w, http.StatusOK)

		w = do("DELETE", "/api/identity-mappings/alice@acme.dev", "")
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, "mapping not found")
	})
}

func TestConfigEndpoints_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := testutil.SetupTestEnvironment(t)
	handler := NewServer(env.DB, nil, nil, "test").SetupRoutes()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("set then get round-trips a value", func(t *testing.T) {
		env.CleanDB(t)

		w := do("PUT", "/api/config/github_repos", `{"value":"acme/widgets,acme/gadgets"}`)
		testutil.AssertStatus(t, w, http.StatusOK)

		w = do("GET", "/api/config/github_repos", "")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp map[string]string
		testutil.ParseJSONResponse(t, w, &resp)
		if resp["value"] != "acme/widgets,acme/gadgets" {
			t.Errorf("unexpected value: %q", resp["value"])
		}
	})

	t.Run("unknown key is a 404", func(t *testing.T) {
		env.CleanDB(t)

		w := do("GET", "/api/config/missing", "")
		testutil.AssertErrorResponse(t, w, http.StatusNotFound, "config key not found")
	})
}
