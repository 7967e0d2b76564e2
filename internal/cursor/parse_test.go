package cursor

import (
	"testing"
	"time"
)

func TestParseDailyUsage(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
	day2 := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC).UnixMilli()

	t.Run("derives team percentages once after folding", func(t *testing.T) {
		resp := &DailyUsageResponse{Data: []DailyUsageRecord{
			{Email: "a@acme.dev", Date: day1, IsActive: true, TotalLinesAdded: 600, AcceptedLinesAdded: 500, TotalTabsShown: 100, TotalTabsAccepted: 90},
			{Email: "b@acme.dev", Date: day1, IsActive: true, TotalLinesAdded: 400, AcceptedLinesAdded: 200, TotalTabsShown: 100, TotalTabsAccepted: 80},
		}}

		m := ParseDailyUsage(resp)

		// 700 of 1000 lines accepted
		if m.Totals.AICodePercent != 70 {
			t.Errorf("expected aiCodePercent 70, got %v", m.Totals.AICodePercent)
		}
		// 170 of 200 tabs accepted
		if m.Totals.TabAcceptRate != 85 {
			t.Errorf("expected tabAcceptRate 85, got %v", m.Totals.TabAcceptRate)
		}
	})

	t.Run("derives per-user percentages from that user's counters", func(t *testing.T) {
		resp := &DailyUsageResponse{Data: []DailyUsageRecord{
			{Email: "a@acme.dev", Date: day1, TotalLinesAdded: 100, AcceptedLinesAdded: 25},
			{Email: "a@acme.dev", Date: day2, TotalLinesAdded: 100, AcceptedLinesAdded: 75},
			{Email: "b@acme.dev", Date: day1, TotalLinesAdded: 10, AcceptedLinesAdded: 10},
		}}

		m := ParseDailyUsage(resp)

		a := m.ByUser["a@acme.dev"]
		if a == nil {
			t.Fatal("expected a@acme.dev in byUser")
		}
		// (25+75) / (100+100), folded before deriving
		if a.AICodePercent != 50 {
			t.Errorf("expected 50, got %v", a.AICodePercent)
		}
		if m.ByUser["b@acme.dev"].AICodePercent != 100 {
			t.Errorf("expected 100, got %v", m.ByUser["b@acme.dev"].AICodePercent)
		}
	})

	t.Run("counts distinct active members across days", func(t *testing.T) {
		resp := &DailyUsageResponse{Data: []DailyUsageRecord{
			{Email: "a@acme.dev", Date: day1, IsActive: true},
			{Email: "a@acme.dev", Date: day2, IsActive: true},
			{Email: "b@acme.dev", Date: day1, IsActive: false},
		}}

		m := ParseDailyUsage(resp)

		// a is active on two days but counts once; b never counts
		if m.Totals.ActiveUsers != 1 {
			t.Errorf("expected 1 active user, got %d", m.Totals.ActiveUsers)
		}
		if m.ByDate["2026-03-10"].ActiveUsers != 1 {
			t.Errorf("expected 1 active on day 1, got %d", m.ByDate["2026-03-10"].ActiveUsers)
		}
	})

	t.Run("sums request counters into totalRequests", func(t *testing.T) {
		resp := &DailyUsageResponse{Data: []DailyUsageRecord{
			{Email: "a@acme.dev", Date: day1, ComposerRequests: 3, ChatRequests: 5, AgentRequests: 2},
		}}

		m := ParseDailyUsage(resp)
		if m.Totals.TotalRequests != 10 {
			t.Errorf("expected 10 requests, got %d", m.Totals.TotalRequests)
		}
		if m.ByUser["a@acme.dev"].Requests != 10 {
			t.Errorf("expected 10 per-user requests, got %d", m.ByUser["a@acme.dev"].Requests)
		}
	})

	t.Run("record without email aggregates under unknown", func(t *testing.T) {
		resp := &DailyUsageResponse{Data: []DailyUsageRecord{{Date: day1, TotalLinesAdded: 5}}}
		m := ParseDailyUsage(resp)
		if m.ByUser["unknown"] == nil {
			t.Fatal("expected unknown bucket")
		}
	})

	t.Run("record without date skips byDate only", func(t *testing.T) {
		resp := &DailyUsageResponse{Data: []DailyUsageRecord{{Email: "a@acme.dev", TotalLinesAdded: 5}}}
		m := ParseDailyUsage(resp)
		if m.Totals.TotalLinesAdded != 5 {
			t.Errorf("expected totals to include the record")
		}
		if len(m.ByDate) != 0 {
			t.Errorf("expected empty byDate, got %v", m.ByDate)
		}
	})

	t.Run("empty response yields zero aggregate", func(t *testing.T) {
		m := ParseDailyUsage(&DailyUsageResponse{})
		if m.Totals.AICodePercent != 0 || m.Totals.ActiveUsers != 0 {
			t.Errorf("expected zero totals, got %+v", m.Totals)
		}
	})
}

func TestParseSpend(t *testing.T) {
	t.Run("converts cents to exact dollars", func(t *testing.T) {
		resp := &SpendResponse{TeamMemberSpend: []TeamMemberSpend{
			{Email: "a@acme.dev", SpendCents: 7000, IncludedSpendCents: 2550, FastPremiumRequests: 12},
		}}

		m := ParseSpend(resp)

		if m.TotalSpendDollars != 70 {
			t.Errorf("expected 70, got %v", m.TotalSpendDollars)
		}
		a := m.ByUser["a@acme.dev"]
		if a.SpendDollars != 70 || a.IncludedSpendDollars != 25.5 {
			t.Errorf("unexpected per-user dollars: %+v", a)
		}
		if a.TotalUsageDollars != 95.5 {
			t.Errorf("expected 95.5 total usage, got %v", a.TotalUsageDollars)
		}
	})

	t.Run("included-only member still contributes usage", func(t *testing.T) {
		resp := &SpendResponse{TeamMemberSpend: []TeamMemberSpend{
			{Email: "b@acme.dev", SpendCents: 0, IncludedSpendCents: 1200},
		}}

		m := ParseSpend(resp)
		if m.TotalUsageDollars != 12 {
			t.Errorf("expected 12, got %v", m.TotalUsageDollars)
		}
	})

	t.Run("empty response yields zero aggregate", func(t *testing.T) {
		m := ParseSpend(&SpendResponse{})
		if m.TotalUsageDollars != 0 || len(m.ByUser) != 0 {
			t.Errorf("expected zeroes, got %+v", m)
		}
	})
}
