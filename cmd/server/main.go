package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/api"
	"github.com/DevPulseHQ/devpulse-web/internal/backfill"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
)

var version string

func main() {
	// Check for worker mode
	if len(os.Args) > 1 && os.Args[1] == "worker" {
		runWorker()
		return
	}

	// Start pprof debug server if enabled (for memory/CPU profiling)
	if os.Getenv("ENABLE_PPROF") == "true" {
		go startPprofServer()
	}

	// Initialize OpenTelemetry (sends traces to Honeycomb)
	// Configured via env vars: OTEL_SERVICE_NAME, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_HEADERS
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		logger.Warn("failed to configure OpenTelemetry", "error", err)
		// Non-fatal: continue without tracing if OTEL env vars not set
	} else {
		defer otelShutdown()
	}

	// Load configuration from environment
	config := loadConfig()

	// Initialize database connection and apply embedded migrations
	database, err := db.Connect(config.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.Conn()); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}

	// Build the backfill runner from whatever provider credentials exist
	runner := buildRunner(context.Background(), database, config)

	// Create API server
	server := api.NewServer(database, runner, config.AllowedOrigins, version)
	router := server.SetupRoutes()

	// Wrap router with OpenTelemetry HTTP instrumentation
	handler := otelhttp.NewHandler(router, "devpulse-backend")

	// HTTP server configuration
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,  // Configurable via HTTP_READ_TIMEOUT (default: 30s)
		WriteTimeout: config.WriteTimeout, // Configurable via HTTP_WRITE_TIMEOUT (default: 120s, backfill is synchronous)
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", config.Port, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

type Config struct {
	Port         int
	DatabaseURL  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	AllowedOrigins []string

	GitHubToken     string
	GitHubRepos     []string
	CursorAPIKey    string
	AnthropicAPIKey string

	// ProviderRPS paces outbound provider calls during backfills.
	ProviderRPS float64
}

func loadConfig() Config {
	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	// HTTP timeout configuration
	readTimeout := 30 * time.Second
	if rt := os.Getenv("HTTP_READ_TIMEOUT"); rt != "" {
		if parsed, err := time.ParseDuration(rt); err == nil {
			readTimeout = parsed
		}
	}

	// Backfills run inside the request, so the write timeout defaults high
	writeTimeout := 120 * time.Second
	if wt := os.Getenv("HTTP_WRITE_TIMEOUT"); wt != "" {
		if parsed, err := time.ParseDuration(wt); err == nil {
			writeTimeout = parsed
		}
	}

	// Validate required database configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("missing required env var", "var", "DATABASE_URL")
	}

	var allowedOrigins []string
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}

	providerRPS := 2.0
	if rps := os.Getenv("PROVIDER_RATE_LIMIT_RPS"); rps != "" {
		fmt.Sscanf(rps, "%f", &providerRPS)
	}

	config := Config{
		Port:            port,
		DatabaseURL:     databaseURL,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		AllowedOrigins:  allowedOrigins,
		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		CursorAPIKey:    os.Getenv("CURSOR_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_ADMIN_KEY"),
		ProviderRPS:     providerRPS,
	}

	if repos := os.Getenv("GITHUB_REPOS"); repos != "" {
		for _, ref := range strings.Split(repos, ",") {
			if ref = strings.TrimSpace(ref); ref != "" {
				config.GitHubRepos = append(config.GitHubRepos, ref)
			}
		}
	}

	// At least one provider must be configured for backfills; the dashboard
	// itself only needs the database
	if config.GitHubToken == "" && config.CursorAPIKey == "" && config.AnthropicAPIKey == "" {
		logger.Warn("no provider credentials configured, backfill is disabled",
			"hint", "set GITHUB_TOKEN, CURSOR_API_KEY or ANTHROPIC_ADMIN_KEY")
	}

	return config
}

// buildRunner assembles the backfill runner from configured providers.
// Returns nil when no provider has credentials.
func buildRunner(ctx context.Context, database *db.DB, config Config) *backfill.Runner {
	runner := &backfill.Runner{
		Store:   database,
		Limiter: rate.NewLimiter(rate.Limit(config.ProviderRPS), 1),
	}

	if config.GitHubToken != "" {
		repos := config.GitHubRepos
		if len(repos) == 0 {
			repos = loadReposFromConfig(ctx, database)
		}
		if len(repos) == 0 {
			logger.Warn("GITHUB_TOKEN set but no repositories configured",
				"hint", "set GITHUB_REPOS or the github_repos config key")
		} else {
			runner.GitHub = github.NewClient(config.GitHubToken)
			runner.Repos = repos
			logger.Info("github provider configured", "repos", len(repos))
		}
	}
	if config.CursorAPIKey != "" {
		runner.Cursor = cursor.NewClient(config.CursorAPIKey)
		logger.Info("cursor provider configured")
	}
	if config.AnthropicAPIKey != "" {
		runner.Claude = anthropic.NewClient(config.AnthropicAPIKey)
		logger.Info("claude provider configured")
	}

	if runner.GitHub == nil && runner.Cursor == nil && runner.Claude == nil {
		return nil
	}
	return runner
}

// loadReposFromConfig reads the comma-separated github_repos key from
// app_config, the operator-editable fallback for GITHUB_REPOS.
func loadReposFromConfig(ctx context.Context, database *db.DB) []string {
	value, err := database.GetConfig(ctx, "github_repos")
	if err != nil {
		return nil
	}
	var repos []string
	for _, ref := range strings.Split(value, ",") {
		if ref = strings.TrimSpace(ref); ref != "" {
			repos = append(repos, ref)
		}
	}
	return repos
}

// startPprofServer starts a pprof debug server on localhost:6060.
// Only accessible locally; intended for use behind a proxy tunnel.
func startPprofServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	mux.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/debug/pprof/allocs", pprof.Handler("allocs"))
	mux.Handle("/debug/pprof/block", pprof.Handler("block"))
	mux.Handle("/debug/pprof/mutex", pprof.Handler("mutex"))
	mux.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))

	addr := "127.0.0.1:6060"
	logger.Info("pprof debug server starting", "addr", addr)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("pprof server failed", "error", err)
	}
}
