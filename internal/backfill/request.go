// Package backfill fetches provider data for a date range, normalizes it
// and upserts one row per provider per day. A failed day is recorded and
// skipped, and re-running the same range replaces whatever was stored
// before.
package backfill

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

var (
	// ErrNoSources is returned when a request names no source that the
	// runner has credentials for.
	ErrNoSources = errors.New("no configured sources selected")
)

// Request describes one backfill run.
type Request struct {
	// Start and End are inclusive YYYY-MM-DD bounds.
	Start string `json:"startDate"`
	End   string `json:"endDate"`
	// Sources restricts the run to the named providers. Empty means every
	// provider the runner is configured for.
	Sources []metrics.Source `json:"sources,omitempty"`
}

// Validate checks the request against the rules shared by the API handler
// and the CLI: parseable dates, ordered bounds, known sources, and the
// editor API's window limit when that provider is in scope.
func (req *Request) Validate() error {
	start, err := metrics.ParseDate(req.Start)
	if err != nil {
		return fmt.Errorf("invalid startDate: %w", err)
	}
	end, err := metrics.ParseDate(req.End)
	if err != nil {
		return fmt.Errorf("invalid endDate: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("endDate %s precedes startDate %s", req.End, req.Start)
	}

	for _, s := range req.Sources {
		if !s.Valid() {
			return fmt.Errorf("unknown source %q", s)
		}
	}

	if req.wants(metrics.SourceCursor) && end.Sub(start) > cursor.MaxRangeDays*24*time.Hour {
		return cursor.ErrRangeTooLong
	}
	return nil
}

// wants reports whether the request includes the source, with an empty
// source list meaning all.
func (req *Request) wants(source metrics.Source) bool {
	if len(req.Sources) == 0 {
		return true
	}
	for _, s := range req.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// days returns every date key in [Start, End]. Validate must have passed.
func (req *Request) days() []string {
	start, _ := metrics.ParseDate(req.Start)
	end, _ := metrics.ParseDate(req.End)

	var out []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		out = append(out, metrics.DateKey(day))
	}
	return out
}

// SplitRepo parses an "owner/repo" reference.
func SplitRepo(ref string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q, want owner/repo", ref)
	}
	return owner, repo, nil
}
