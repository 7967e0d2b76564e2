package dashboard

import (
	"testing"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/identity"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

func TestBuildAIMetrics(t *testing.T) {
	resolver := identity.NewResolver([]db.IdentityMapping{
		{Email: "alice@acme.dev", GitHubUsername: "alice-gh"},
	})

	rows := []db.StoredMetric{
		row(t, metrics.SourceGitHub, metrics.KindDaily, "2026-03-10", github.PRMetrics{
			Totals: github.PRTotals{LinesAdded: 1000, LinesRemoved: 200, MergedCount: 4, AvgCycleTimeHours: 10},
		}),
		row(t, metrics.SourceCursor, metrics.KindDaily, "2026-03-10", cursor.UsageMetrics{
			Totals: cursor.UsageTotals{TotalLinesAdded: 400, AcceptedLinesAdded: 200, TotalTabsShown: 100, TotalTabsAccepted: 75},
			ByUser: map[string]*cursor.UserUsage{
				"alice@acme.dev": {TotalLinesAdded: 400, AcceptedLinesAdded: 200, AICodePercent: 50},
			},
		}),
		row(t, metrics.SourceClaude, metrics.KindDaily, "2026-03-10", anthropic.AssistantMetrics{
			Totals: anthropic.Accumulator{
				LinesAdded: 300, Sessions: 6, PullRequests: 2, CostCents: 800,
				EditAccepted: 6, EditRejected: 2, WriteAccepted: 3, WriteRejected: 1,
			},
			ByUser: map[string]*anthropic.Accumulator{
				"alice@acme.dev": {LinesAdded: 300, Sessions: 6, CostCents: 800},
				"ci-key":         {Sessions: 1},
			},
		}),
		row(t, metrics.SourceCursor, metrics.KindSpend, "2026-03-10", cursor.SpendMetrics{
			TotalSpendCents: 3000, TotalIncludedSpendCents: 1000,
		}),
	}

	view, err := BuildAIMetrics(rows, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("relates AI lines to shipped PR lines", func(t *testing.T) {
		// (300 assistant + 200 accepted editor) of 1000 PR lines
		if view.Summary.AIShippedPercent != 50 {
			t.Errorf("expected 50, got %v", view.Summary.AIShippedPercent)
		}
	})

	t.Run("relates assistant PRs to merged PRs", func(t *testing.T) {
		if view.Summary.AIAttributedPRPercent != 50 {
			t.Errorf("expected 50, got %v", view.Summary.AIAttributedPRPercent)
		}
	})

	t.Run("combines assistant and editor cost", func(t *testing.T) {
		// 800 assistant + 4000 editor (spend + included)
		if view.Summary.CostCents != 4800 {
			t.Errorf("expected 4800, got %d", view.Summary.CostCents)
		}
	})

	t.Run("acceptance rates are fractions", func(t *testing.T) {
		// 9 accepted of 12 tool actions
		if view.Claude.AcceptanceRate != 0.75 {
			t.Errorf("expected 0.75, got %v", view.Claude.AcceptanceRate)
		}
		// 75 of 100 tabs
		if view.Cursor.AcceptanceRate != 0.75 {
			t.Errorf("expected 0.75, got %v", view.Cursor.AcceptanceRate)
		}
	})

	t.Run("ranks users by AI footprint", func(t *testing.T) {
		if len(view.ByUser) != 2 {
			t.Fatalf("expected 2 users, got %d", len(view.ByUser))
		}
		alice := view.ByUser[0]
		if alice.Identifier != "alice@acme.dev" || alice.IsUnmapped {
			t.Fatalf("expected mapped alice first, got %+v", alice)
		}
		if alice.Claude.LinesAdded != 300 || alice.Cursor.TotalLines != 400 {
			t.Errorf("unexpected alice fold: %+v", alice)
		}
		if !view.ByUser[1].IsUnmapped {
			t.Errorf("expected ci-key row flagged unmapped")
		}
	})
}

func TestBuildAIMetricsZeroDenominators(t *testing.T) {
	rows := []db.StoredMetric{
		row(t, metrics.SourceClaude, metrics.KindDaily, "2026-03-10", anthropic.AssistantMetrics{
			Totals: anthropic.Accumulator{LinesAdded: 100, PullRequests: 1},
		}),
	}

	view, err := BuildAIMetrics(rows, identity.NewResolver(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No PR data at all: every ratio stays 0 instead of dividing by zero
	if view.Summary.AIShippedPercent != 0 || view.Summary.AIAttributedPRPercent != 0 {
		t.Errorf("expected zero percentages, got %+v", view.Summary)
	}
	if view.Claude.AcceptanceRate != 0 {
		t.Errorf("expected zero acceptance rate, got %v", view.Claude.AcceptanceRate)
	}
}
