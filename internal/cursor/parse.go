package cursor

import (
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// UsageTotals accumulates team-wide editor usage. The percentage fields and
// ActiveUsers are derived once after all records are folded.
type UsageTotals struct {
	TotalLinesAdded    int64   `json:"totalLinesAdded"`
	TotalLinesDeleted  int64   `json:"totalLinesDeleted"`
	AcceptedLinesAdded int64   `json:"acceptedLinesAdded"`
	TotalTabsShown     int64   `json:"totalTabsShown"`
	TotalTabsAccepted  int64   `json:"totalTabsAccepted"`
	ComposerRequests   int64   `json:"composerRequests"`
	ChatRequests       int64   `json:"chatRequests"`
	AgentRequests      int64   `json:"agentRequests"`
	TotalRequests      int64   `json:"totalRequests"`
	ActiveUsers        int64   `json:"activeUsers"`
	AICodePercent      float64 `json:"aiCodePercent"`
	TabAcceptRate      float64 `json:"tabAcceptRate"`
}

// UserUsage accumulates one member's usage across the input range.
type UserUsage struct {
	TotalLinesAdded    int64   `json:"totalLinesAdded"`
	TotalLinesDeleted  int64   `json:"totalLinesDeleted"`
	AcceptedLinesAdded int64   `json:"acceptedLinesAdded"`
	TotalTabsShown     int64   `json:"totalTabsShown"`
	TotalTabsAccepted  int64   `json:"totalTabsAccepted"`
	Requests           int64   `json:"requests"`
	IsActive           bool    `json:"isActive"`
	AICodePercent      float64 `json:"aiCodePercent"`
	TabAcceptRate      float64 `json:"tabAcceptRate"`
}

// DayUsage accumulates one calendar day of team usage.
type DayUsage struct {
	LinesAdded    int64 `json:"linesAdded"`
	AcceptedLines int64 `json:"acceptedLines"`
	ActiveUsers   int64 `json:"activeUsers"`
}

// UsageMetrics is the normalized aggregate of a daily-usage response.
type UsageMetrics struct {
	Totals UsageTotals           `json:"totals"`
	ByUser map[string]*UserUsage `json:"byUser"`
	ByDate map[string]*DayUsage  `json:"byDate"`
}

// ParseDailyUsage folds a daily-usage response into a normalized aggregate.
//
// ActiveUsers counts distinct members ever flagged active across the whole
// input: a member active on three days counts once, while their counters
// still sum across all three days.
func ParseDailyUsage(resp *DailyUsageResponse) *UsageMetrics {
	m := &UsageMetrics{
		ByUser: make(map[string]*UserUsage),
		ByDate: make(map[string]*DayUsage),
	}

	activeSeen := make(map[string]struct{})
	for i := range resp.Data {
		rec := &resp.Data[i]
		email := rec.Identity()

		m.Totals.TotalLinesAdded += rec.TotalLinesAdded
		m.Totals.TotalLinesDeleted += rec.TotalLinesDeleted
		m.Totals.AcceptedLinesAdded += rec.AcceptedLinesAdded
		m.Totals.TotalTabsShown += rec.TotalTabsShown
		m.Totals.TotalTabsAccepted += rec.TotalTabsAccepted
		m.Totals.ComposerRequests += rec.ComposerRequests
		m.Totals.ChatRequests += rec.ChatRequests
		m.Totals.AgentRequests += rec.AgentRequests

		user := metrics.GetOrInit(m.ByUser, email)
		user.TotalLinesAdded += rec.TotalLinesAdded
		user.TotalLinesDeleted += rec.TotalLinesDeleted
		user.AcceptedLinesAdded += rec.AcceptedLinesAdded
		user.TotalTabsShown += rec.TotalTabsShown
		user.TotalTabsAccepted += rec.TotalTabsAccepted
		user.Requests += rec.ComposerRequests + rec.ChatRequests + rec.AgentRequests
		if rec.IsActive {
			user.IsActive = true
			activeSeen[email] = struct{}{}
		}

		if ts, ok := rec.Timestamp(); ok {
			day := metrics.GetOrInit(m.ByDate, metrics.DateKey(ts))
			day.LinesAdded += rec.TotalLinesAdded
			day.AcceptedLines += rec.AcceptedLinesAdded
			if rec.IsActive {
				day.ActiveUsers++
			}
		}
	}

	// Derived once, post-accumulation.
	m.Totals.TotalRequests = m.Totals.ComposerRequests + m.Totals.ChatRequests + m.Totals.AgentRequests
	m.Totals.ActiveUsers = int64(len(activeSeen))
	m.Totals.AICodePercent = metrics.SafePercent(float64(m.Totals.AcceptedLinesAdded), float64(m.Totals.TotalLinesAdded))
	m.Totals.TabAcceptRate = metrics.SafePercent(float64(m.Totals.TotalTabsAccepted), float64(m.Totals.TotalTabsShown))
	for _, user := range m.ByUser {
		user.AICodePercent = metrics.SafePercent(float64(user.AcceptedLinesAdded), float64(user.TotalLinesAdded))
		user.TabAcceptRate = metrics.SafePercent(float64(user.TotalTabsAccepted), float64(user.TotalTabsShown))
	}

	return m
}

// MemberSpendStats is one member's month-to-date spend, with dollar figures
// derived from the cent counters.
type MemberSpendStats struct {
	SpendCents           int64   `json:"spendCents"`
	SpendDollars         float64 `json:"spendDollars"`
	IncludedSpendCents   int64   `json:"includedSpendCents"`
	IncludedSpendDollars float64 `json:"includedSpendDollars"`
	TotalUsageDollars    float64 `json:"totalUsageDollars"`
	FastPremiumRequests  int64   `json:"fastPremiumRequests"`
}

// SpendMetrics is the normalized aggregate of a spend snapshot.
// TotalUsageDollars = metered spend + plan-included usage: a member with
// zero overage but nonzero included usage still contributes.
type SpendMetrics struct {
	TotalSpendCents           int64                        `json:"totalSpendCents"`
	TotalSpendDollars         float64                      `json:"totalSpendDollars"`
	TotalIncludedSpendCents   int64                        `json:"totalIncludedSpendCents"`
	TotalIncludedSpendDollars float64                      `json:"totalIncludedSpendDollars"`
	TotalUsageDollars         float64                      `json:"totalUsageDollars"`
	ByUser                    map[string]*MemberSpendStats `json:"byUser"`
}

// ParseSpend folds a spend response into a normalized aggregate.
func ParseSpend(resp *SpendResponse) *SpendMetrics {
	m := &SpendMetrics{
		ByUser: make(map[string]*MemberSpendStats),
	}

	for i := range resp.TeamMemberSpend {
		member := &resp.TeamMemberSpend[i]
		m.TotalSpendCents += member.SpendCents
		m.TotalIncludedSpendCents += member.IncludedSpendCents

		stats := metrics.GetOrInit(m.ByUser, member.Identity())
		stats.SpendCents += member.SpendCents
		stats.IncludedSpendCents += member.IncludedSpendCents
		stats.FastPremiumRequests += member.FastPremiumRequests
	}

	m.TotalSpendDollars = metrics.DollarsFloat(m.TotalSpendCents)
	m.TotalIncludedSpendDollars = metrics.DollarsFloat(m.TotalIncludedSpendCents)
	m.TotalUsageDollars = metrics.DollarsFloat(m.TotalSpendCents + m.TotalIncludedSpendCents)
	for _, stats := range m.ByUser {
		stats.SpendDollars = metrics.DollarsFloat(stats.SpendCents)
		stats.IncludedSpendDollars = metrics.DollarsFloat(stats.IncludedSpendCents)
		stats.TotalUsageDollars = metrics.DollarsFloat(stats.SpendCents + stats.IncludedSpendCents)
	}

	return m
}
