// Package dashboard folds stored per-day normalized aggregates from all
// providers into the views the dashboard renders: summary cards, the team
// table, AI-adoption metrics and daily trend series.
package dashboard

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// Policy names how a metric folds across multiple stored days.
type Policy int

const (
	// PolicySum adds daily values.
	PolicySum Policy = iota
	// PolicyMean averages the observed daily values.
	PolicyMean
	// PolicyLatest keeps the last observed value. Used for counters a
	// provider reports as running totals rather than daily deltas; this is
	// explicit per-provider behavior, never a default.
	PolicyLatest
)

// folder accumulates observations under one fold policy.
type folder struct {
	policy Policy
	sum    float64
	count  int64
	latest float64
}

func (f *folder) observe(v float64) {
	f.sum += v
	f.count++
	f.latest = v
}

func (f *folder) value() float64 {
	switch f.policy {
	case PolicySum:
		return f.sum
	case PolicyMean:
		if f.count == 0 {
			return 0
		}
		return f.sum / float64(f.count)
	case PolicyLatest:
		return f.latest
	}
	return 0
}

// rangeData holds the decoded payloads of one query range, keyed by date.
type rangeData struct {
	github      map[string]*github.PRMetrics
	cursorDaily map[string]*cursor.UsageMetrics
	claude      map[string]*anthropic.AssistantMetrics

	// Spend is a month-to-date snapshot; only the latest row in range is
	// meaningful.
	spend     *cursor.SpendMetrics
	spendDate string
}

// decodeRows splits stored metrics by provider and kind and unmarshals the
// payloads. Rows from unknown sources or kinds are ignored.
func decodeRows(rows []db.StoredMetric) (*rangeData, error) {
	data := &rangeData{
		github:      make(map[string]*github.PRMetrics),
		cursorDaily: make(map[string]*cursor.UsageMetrics),
		claude:      make(map[string]*anthropic.AssistantMetrics),
	}

	for i := range rows {
		row := &rows[i]
		switch {
		case row.Source == metrics.SourceGitHub && row.MetricKind == metrics.KindDaily:
			var m github.PRMetrics
			if err := json.Unmarshal(row.Payload, &m); err != nil {
				return nil, fmt.Errorf("failed to decode github payload for %s: %w", row.Date, err)
			}
			data.github[row.Date] = &m

		case row.Source == metrics.SourceCursor && row.MetricKind == metrics.KindDaily:
			var m cursor.UsageMetrics
			if err := json.Unmarshal(row.Payload, &m); err != nil {
				return nil, fmt.Errorf("failed to decode cursor payload for %s: %w", row.Date, err)
			}
			data.cursorDaily[row.Date] = &m

		case row.Source == metrics.SourceCursor && row.MetricKind == metrics.KindSpend:
			var m cursor.SpendMetrics
			if err := json.Unmarshal(row.Payload, &m); err != nil {
				return nil, fmt.Errorf("failed to decode cursor spend payload for %s: %w", row.Date, err)
			}
			if data.spend == nil || row.Date >= data.spendDate {
				data.spend = &m
				data.spendDate = row.Date
			}

		case row.Source == metrics.SourceClaude && row.MetricKind == metrics.KindDaily:
			var m anthropic.AssistantMetrics
			if err := json.Unmarshal(row.Payload, &m); err != nil {
				return nil, fmt.Errorf("failed to decode claude payload for %s: %w", row.Date, err)
			}
			data.claude[row.Date] = &m
		}
	}

	return data, nil
}

// foldGitHubAuthors merges per-author stats across all days in range.
func (d *rangeData) foldGitHubAuthors() map[string]*github.AuthorStats {
	out := make(map[string]*github.AuthorStats)
	for _, day := range d.github {
		for login, stats := range day.ByAuthor {
			acc := metrics.GetOrInit(out, login)
			acc.PRCount += stats.PRCount
			acc.MergedCount += stats.MergedCount
			acc.TotalCycleTimeHours += stats.TotalCycleTimeHours
			acc.LinesAdded += stats.LinesAdded
			acc.LinesRemoved += stats.LinesRemoved
			acc.CommentsMade += stats.CommentsMade
			acc.CommentsReceived += stats.CommentsReceived
		}
	}
	return out
}

// foldCursorUsers merges per-member usage counters across all days in
// range. Percentages are re-derived from the folded counters afterwards;
// the per-day derived figures are never averaged.
func (d *rangeData) foldCursorUsers() map[string]*cursor.UserUsage {
	out := make(map[string]*cursor.UserUsage)
	for _, day := range d.cursorDaily {
		for email, u := range day.ByUser {
			acc := metrics.GetOrInit(out, email)
			acc.TotalLinesAdded += u.TotalLinesAdded
			acc.TotalLinesDeleted += u.TotalLinesDeleted
			acc.AcceptedLinesAdded += u.AcceptedLinesAdded
			acc.TotalTabsShown += u.TotalTabsShown
			acc.TotalTabsAccepted += u.TotalTabsAccepted
			acc.Requests += u.Requests
			if u.IsActive {
				acc.IsActive = true
			}
		}
	}
	for _, acc := range out {
		acc.AICodePercent = metrics.SafePercent(float64(acc.AcceptedLinesAdded), float64(acc.TotalLinesAdded))
		acc.TabAcceptRate = metrics.SafePercent(float64(acc.TotalTabsAccepted), float64(acc.TotalTabsShown))
	}
	return out
}

// foldClaudeUsers merges per-user assistant accumulators across all days.
func (d *rangeData) foldClaudeUsers() map[string]*anthropic.Accumulator {
	out := make(map[string]*anthropic.Accumulator)
	for _, day := range d.claude {
		for email, acc := range day.ByUser {
			sum := metrics.GetOrInit(out, email)
			sum.Sessions += acc.Sessions
			sum.LinesAdded += acc.LinesAdded
			sum.LinesRemoved += acc.LinesRemoved
			sum.Commits += acc.Commits
			sum.PullRequests += acc.PullRequests
			sum.EditAccepted += acc.EditAccepted
			sum.EditRejected += acc.EditRejected
			sum.WriteAccepted += acc.WriteAccepted
			sum.WriteRejected += acc.WriteRejected
			sum.CostCents += acc.CostCents
			sum.TokensInput += acc.TokensInput
			sum.TokensOutput += acc.TokensOutput
		}
	}
	return out
}

// sortedKeys returns the map's date keys in ascending order. ISO dates sort
// lexically, so this is chronological order.
func sortedKeys[V any](m map[string]*V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// spendUsers returns the latest spend snapshot's per-member stats, or an
// empty map when no spend row fell in range.
func (d *rangeData) spendUsers() map[string]*cursor.MemberSpendStats {
	if d.spend == nil {
		return map[string]*cursor.MemberSpendStats{}
	}
	return d.spend.ByUser
}
