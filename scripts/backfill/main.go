// backfill
//
// One-shot script to ingest a historical date range without going through
// the HTTP API. Useful for first-time setup and for re-ingesting a window
// after fixing provider credentials.
//
// Usage:
//   DATABASE_URL=... GITHUB_TOKEN=... CURSOR_API_KEY=... ANTHROPIC_ADMIN_KEY=... \
//     go run ./scripts/backfill -start 2026-01-01 -end 2026-01-31
//
// Flags:
//   -start    First date to ingest (YYYY-MM-DD, required)
//   -end      Last date to ingest (YYYY-MM-DD, required)
//   -sources  Comma-separated provider subset (github,cursor,claude)

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/backfill"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

func main() {
	start := flag.String("start", "", "First date to ingest (YYYY-MM-DD)")
	end := flag.String("end", "", "Last date to ingest (YYYY-MM-DD)")
	sources := flag.String("sources", "", "Comma-separated provider subset (github,cursor,claude)")
	flag.Parse()

	if *start == "" || *end == "" {
		log.Fatal("-start and -end are required")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	database, err := db.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.Conn()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Connected to database")

	runner := &backfill.Runner{
		Store:   database,
		Limiter: rate.NewLimiter(rate.Limit(2), 1),
	}

	ctx := context.Background()
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		repos := repoList(ctx, database)
		if len(repos) == 0 {
			log.Fatal("GITHUB_TOKEN set but no repositories configured (set GITHUB_REPOS or the github_repos config key)")
		}
		runner.GitHub = github.NewClient(token)
		runner.Repos = repos
		log.Printf("GitHub configured with %d repositories", len(repos))
	}
	if key := os.Getenv("CURSOR_API_KEY"); key != "" {
		runner.Cursor = cursor.NewClient(key)
		log.Println("Cursor configured")
	}
	if key := os.Getenv("ANTHROPIC_ADMIN_KEY"); key != "" {
		runner.Claude = anthropic.NewClient(key)
		log.Println("Claude configured")
	}

	req := backfill.Request{Start: *start, End: *end}
	if *sources != "" {
		for _, name := range strings.Split(*sources, ",") {
			req.Sources = append(req.Sources, metrics.Source(strings.TrimSpace(name)))
		}
	}

	result, err := runner.Run(ctx, req)
	if err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	for _, day := range result.Days {
		if day.Status == backfill.StatusFailed {
			log.Printf("  FAILED %s %s: %s", day.Source, day.Date, day.Error)
		}
	}
	log.Printf("Backfill %s complete: %d saved, %d failed", result.RunID, result.Saved, result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}

// repoList resolves GitHub repositories from GITHUB_REPOS, falling back to
// the github_repos config key.
func repoList(ctx context.Context, database *db.DB) []string {
	raw := os.Getenv("GITHUB_REPOS")
	if raw == "" {
		if value, err := database.GetConfig(ctx, "github_repos"); err == nil {
			raw = value
		}
	}

	var repos []string
	for _, ref := range strings.Split(raw, ",") {
		if ref = strings.TrimSpace(ref); ref != "" {
			repos = append(repos, ref)
		}
	}
	return repos
}
