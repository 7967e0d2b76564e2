package dashboard

import (
	"testing"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

func TestBuildSummary(t *testing.T) {
	rows := []db.StoredMetric{
		row(t, metrics.SourceGitHub, metrics.KindDaily, "2026-03-10", github.PRMetrics{
			Totals: github.PRTotals{PRCount: 2, MergedCount: 2, AvgCycleTimeHours: 4, TotalComments: 3},
		}),
		row(t, metrics.SourceGitHub, metrics.KindDaily, "2026-03-11", github.PRMetrics{
			Totals: github.PRTotals{PRCount: 3, MergedCount: 1, AvgCycleTimeHours: 8, TotalComments: 1},
		}),
		// A day with no merges must not drag the cycle-time average down
		row(t, metrics.SourceGitHub, metrics.KindDaily, "2026-03-12", github.PRMetrics{
			Totals: github.PRTotals{PRCount: 1},
		}),
		row(t, metrics.SourceCursor, metrics.KindDaily, "2026-03-10", cursor.UsageMetrics{
			Totals: cursor.UsageTotals{TotalLinesAdded: 500, AICodePercent: 60, TabAcceptRate: 80, ActiveUsers: 4},
		}),
		row(t, metrics.SourceCursor, metrics.KindDaily, "2026-03-11", cursor.UsageMetrics{
			Totals: cursor.UsageTotals{TotalLinesAdded: 300, AICodePercent: 70, TabAcceptRate: 90, ActiveUsers: 2},
		}),
		row(t, metrics.SourceClaude, metrics.KindDaily, "2026-03-10", anthropic.AssistantMetrics{
			Totals: anthropic.Accumulator{Sessions: 5, LinesAdded: 200, Commits: 3, CostCents: 100},
		}),
		row(t, metrics.SourceClaude, metrics.KindDaily, "2026-03-11", anthropic.AssistantMetrics{
			Totals: anthropic.Accumulator{Sessions: 2, LinesAdded: 100, Commits: 1, CostCents: 150},
		}),
		row(t, metrics.SourceCursor, metrics.KindSpend, "2026-03-11", cursor.SpendMetrics{
			TotalSpendDollars: 40, TotalUsageDollars: 65,
		}),
	}

	s, err := BuildSummary(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("sums counters across days", func(t *testing.T) {
		if s.GitHub.PRCount != 6 {
			t.Errorf("expected 6 PRs, got %d", s.GitHub.PRCount)
		}
		if s.GitHub.TotalComments != 4 {
			t.Errorf("expected 4 comments, got %d", s.GitHub.TotalComments)
		}
		if s.Cursor.TotalLinesAdded != 800 {
			t.Errorf("expected 800 lines, got %d", s.Cursor.TotalLinesAdded)
		}
		if s.Claude.Sessions != 7 {
			t.Errorf("expected 7 sessions, got %d", s.Claude.Sessions)
		}
	})

	t.Run("averages cycle time over days with merges", func(t *testing.T) {
		if s.GitHub.AvgCycleTimeHours != 6 {
			t.Errorf("expected 6h, got %v", s.GitHub.AvgCycleTimeHours)
		}
	})

	t.Run("latest wins for running-total percentages", func(t *testing.T) {
		if s.Cursor.AICodePercent != 70 {
			t.Errorf("expected 70, got %v", s.Cursor.AICodePercent)
		}
		if s.Cursor.TabAcceptRate != 90 {
			t.Errorf("expected 90, got %v", s.Cursor.TabAcceptRate)
		}
	})

	t.Run("averages active users", func(t *testing.T) {
		if s.Cursor.ActiveUsers != 3 {
			t.Errorf("expected 3, got %v", s.Cursor.ActiveUsers)
		}
	})

	t.Run("converts summed cost cents to dollars", func(t *testing.T) {
		if s.Claude.CostDollars != 2.5 {
			t.Errorf("expected 2.5, got %v", s.Claude.CostDollars)
		}
	})

	t.Run("carries the spend snapshot", func(t *testing.T) {
		if s.Cursor.SpendDollars != 40 || s.Cursor.UsageDollars != 65 {
			t.Errorf("unexpected spend: %+v", s.Cursor)
		}
	})
}

func TestBuildSummaryEmpty(t *testing.T) {
	s, err := BuildSummary(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.GitHub.PRCount != 0 || s.Cursor.AICodePercent != 0 || s.Claude.CostDollars != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
