package dashboard

import (
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// summaryPolicies declares how each summary card folds across days. Every
// metric carries its policy explicitly; there is no provider-wide default.
var summaryPolicies = map[string]Policy{
	"github.prCount":           PolicySum,
	"github.mergedCount":       PolicySum,
	"github.avgCycleTimeHours": PolicyMean,
	"github.totalComments":     PolicySum,
	"cursor.totalLinesAdded":   PolicySum,
	"cursor.aiCodePercent":     PolicyLatest,
	"cursor.tabAcceptRate":     PolicyLatest,
	"cursor.activeUsers":       PolicyMean,
	"claude.sessions":          PolicySum,
	"claude.linesAdded":        PolicySum,
	"claude.commits":           PolicySum,
	"claude.costCents":         PolicySum,
}

// GitHubSummary is the pull-request summary card.
type GitHubSummary struct {
	PRCount           int64   `json:"prCount"`
	MergedCount       int64   `json:"mergedCount"`
	AvgCycleTimeHours float64 `json:"avgCycleTimeHours"`
	TotalComments     int64   `json:"totalComments"`
}

// CursorSummary is the editor summary card.
type CursorSummary struct {
	TotalLinesAdded int64   `json:"totalLinesAdded"`
	AICodePercent   float64 `json:"aiCodePercent"`
	TabAcceptRate   float64 `json:"tabAcceptRate"`
	ActiveUsers     float64 `json:"activeUsers"`
	SpendDollars    float64 `json:"spendDollars"`
	UsageDollars    float64 `json:"usageDollars"`
}

// ClaudeSummary is the assistant summary card.
type ClaudeSummary struct {
	Sessions    int64   `json:"sessions"`
	LinesAdded  int64   `json:"linesAdded"`
	Commits     int64   `json:"commits"`
	CostDollars float64 `json:"costDollars"`
}

// Summary is the top dashboard view: one card per provider.
type Summary struct {
	GitHub GitHubSummary `json:"github"`
	Cursor CursorSummary `json:"cursor"`
	Claude ClaudeSummary `json:"claude"`
}

// BuildSummary folds the stored rows of a range into per-provider summary
// cards. Days a provider has no row for simply contribute nothing.
func BuildSummary(rows []db.StoredMetric) (*Summary, error) {
	data, err := decodeRows(rows)
	if err != nil {
		return nil, err
	}

	folders := make(map[string]*folder, len(summaryPolicies))
	for name, policy := range summaryPolicies {
		folders[name] = &folder{policy: policy}
	}
	observe := func(name string, v float64) {
		folders[name].observe(v)
	}

	// Date-ordered iteration so PolicyLatest lands on the newest day.
	for _, date := range sortedKeys(data.github) {
		day := data.github[date]
		observe("github.prCount", float64(day.Totals.PRCount))
		observe("github.mergedCount", float64(day.Totals.MergedCount))
		observe("github.totalComments", float64(day.Totals.TotalComments))
		if day.Totals.MergedCount > 0 {
			observe("github.avgCycleTimeHours", day.Totals.AvgCycleTimeHours)
		}
	}
	for _, date := range sortedKeys(data.cursorDaily) {
		day := data.cursorDaily[date]
		observe("cursor.totalLinesAdded", float64(day.Totals.TotalLinesAdded))
		observe("cursor.aiCodePercent", day.Totals.AICodePercent)
		observe("cursor.tabAcceptRate", day.Totals.TabAcceptRate)
		observe("cursor.activeUsers", float64(day.Totals.ActiveUsers))
	}
	for _, date := range sortedKeys(data.claude) {
		day := data.claude[date]
		observe("claude.sessions", float64(day.Totals.Sessions))
		observe("claude.linesAdded", float64(day.Totals.LinesAdded))
		observe("claude.commits", float64(day.Totals.Commits))
		observe("claude.costCents", float64(day.Totals.CostCents))
	}

	s := &Summary{
		GitHub: GitHubSummary{
			PRCount:           int64(folders["github.prCount"].value()),
			MergedCount:       int64(folders["github.mergedCount"].value()),
			AvgCycleTimeHours: folders["github.avgCycleTimeHours"].value(),
			TotalComments:     int64(folders["github.totalComments"].value()),
		},
		Cursor: CursorSummary{
			TotalLinesAdded: int64(folders["cursor.totalLinesAdded"].value()),
			AICodePercent:   folders["cursor.aiCodePercent"].value(),
			TabAcceptRate:   folders["cursor.tabAcceptRate"].value(),
			ActiveUsers:     folders["cursor.activeUsers"].value(),
		},
		Claude: ClaudeSummary{
			Sessions:    int64(folders["claude.sessions"].value()),
			LinesAdded:  int64(folders["claude.linesAdded"].value()),
			Commits:     int64(folders["claude.commits"].value()),
			CostDollars: metrics.DollarsFloat(int64(folders["claude.costCents"].value())),
		},
	}

	if data.spend != nil {
		s.Cursor.SpendDollars = data.spend.TotalSpendDollars
		s.Cursor.UsageDollars = data.spend.TotalUsageDollars
	}

	return s, nil
}
