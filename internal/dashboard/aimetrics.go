package dashboard

import (
	"sort"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/identity"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// AISummary relates AI-assisted output to what actually shipped through
// pull requests. Percent fields are 0..100; rate fields are 0..1.
type AISummary struct {
	PRLinesAdded          int64   `json:"prLinesAdded"`
	PRLinesRemoved        int64   `json:"prLinesRemoved"`
	MergedCount           int64   `json:"mergedCount"`
	AvgCycleTimeHours     float64 `json:"avgCycleTimeHours"`
	AIShippedPercent      float64 `json:"aiShippedPercent"`
	AIAttributedPRPercent float64 `json:"aiAttributedPrPercent"`
	CostCents             int64   `json:"costCents"`
}

// ClaudeBreakdown is the assistant's share of the AI metrics view.
type ClaudeBreakdown struct {
	LinesAdded     int64   `json:"linesAdded"`
	Sessions       int64   `json:"sessions"`
	Commits        int64   `json:"commits"`
	PRsCreated     int64   `json:"prsCreated"`
	AcceptanceRate float64 `json:"acceptanceRate"`
	CostCents      int64   `json:"costCents"`
}

// CursorBreakdown is the editor's share of the AI metrics view.
type CursorBreakdown struct {
	TotalLinesAdded    int64   `json:"totalLinesAdded"`
	AcceptedLinesAdded int64   `json:"acceptedLinesAdded"`
	AIPercent          float64 `json:"aiPercent"`
	AcceptanceRate     float64 `json:"acceptanceRate"`
	CostCents          int64   `json:"costCents"`
}

// AIUserCursor is a user's editor column group in the AI metrics table.
type AIUserCursor struct {
	TotalLines int64   `json:"totalLines"`
	AIPercent  float64 `json:"aiPercent"`
}

// AIUserClaude is a user's assistant column group in the AI metrics table.
type AIUserClaude struct {
	LinesAdded int64 `json:"linesAdded"`
	Sessions   int64 `json:"sessions"`
	CostCents  int64 `json:"costCents"`
}

// AIUserRow is one user in the AI metrics table.
type AIUserRow struct {
	Identifier string       `json:"identifier"`
	IsUnmapped bool         `json:"isUnmapped"`
	Cursor     AIUserCursor `json:"cursor"`
	Claude     AIUserClaude `json:"claude"`
}

// AIMetricsView is the AI-adoption dashboard view.
type AIMetricsView struct {
	Summary AISummary       `json:"summary"`
	Claude  ClaudeBreakdown `json:"claude"`
	Cursor  CursorBreakdown `json:"cursor"`
	ByUser  []AIUserRow     `json:"byUser"`
}

// BuildAIMetrics folds the stored rows of a range into the AI-adoption view.
//
// AIShippedPercent divides AI-produced lines (assistant lines added plus
// editor accepted lines) by PR lines added. The numerator and denominator
// come from different systems, so values above 100 are possible and are
// reported as computed.
func BuildAIMetrics(rows []db.StoredMetric, resolver *identity.Resolver) (*AIMetricsView, error) {
	data, err := decodeRows(rows)
	if err != nil {
		return nil, err
	}

	view := &AIMetricsView{}

	var cycleTimeSum float64
	var cycleTimeDays int64
	for _, day := range data.github {
		view.Summary.PRLinesAdded += day.Totals.LinesAdded
		view.Summary.PRLinesRemoved += day.Totals.LinesRemoved
		view.Summary.MergedCount += day.Totals.MergedCount
		if day.Totals.MergedCount > 0 {
			cycleTimeSum += day.Totals.AvgCycleTimeHours
			cycleTimeDays++
		}
	}
	if cycleTimeDays > 0 {
		view.Summary.AvgCycleTimeHours = cycleTimeSum / float64(cycleTimeDays)
	}

	for _, day := range data.cursorDaily {
		view.Cursor.TotalLinesAdded += day.Totals.TotalLinesAdded
		view.Cursor.AcceptedLinesAdded += day.Totals.AcceptedLinesAdded
	}
	var tabsShown, tabsAccepted int64
	for _, day := range data.cursorDaily {
		tabsShown += day.Totals.TotalTabsShown
		tabsAccepted += day.Totals.TotalTabsAccepted
	}
	view.Cursor.AIPercent = metrics.SafePercent(float64(view.Cursor.AcceptedLinesAdded), float64(view.Cursor.TotalLinesAdded))
	view.Cursor.AcceptanceRate = metrics.SafeRate(float64(tabsAccepted), float64(tabsShown))
	if data.spend != nil {
		view.Cursor.CostCents = data.spend.TotalSpendCents + data.spend.TotalIncludedSpendCents
	}

	var editAcc, editRej, writeAcc, writeRej int64
	for _, day := range data.claude {
		view.Claude.LinesAdded += day.Totals.LinesAdded
		view.Claude.Sessions += day.Totals.Sessions
		view.Claude.Commits += day.Totals.Commits
		view.Claude.PRsCreated += day.Totals.PullRequests
		view.Claude.CostCents += day.Totals.CostCents
		editAcc += day.Totals.EditAccepted
		editRej += day.Totals.EditRejected
		writeAcc += day.Totals.WriteAccepted
		writeRej += day.Totals.WriteRejected
	}
	accepted := editAcc + writeAcc
	view.Claude.AcceptanceRate = metrics.SafeRate(float64(accepted), float64(accepted+editRej+writeRej))

	aiLines := view.Claude.LinesAdded + view.Cursor.AcceptedLinesAdded
	view.Summary.AIShippedPercent = metrics.SafePercent(float64(aiLines), float64(view.Summary.PRLinesAdded))
	view.Summary.AIAttributedPRPercent = metrics.SafePercent(float64(view.Claude.PRsCreated), float64(view.Summary.MergedCount))
	view.Summary.CostCents = view.Claude.CostCents + view.Cursor.CostCents

	view.ByUser = buildAIUserRows(data, resolver)
	return view, nil
}

// buildAIUserRows merges per-user editor and assistant figures under one
// identity. The editor and assistant both key by email, so reconciliation
// here only decides whether a row belongs to a known team member.
func buildAIUserRows(data *rangeData, resolver *identity.Resolver) []AIUserRow {
	type userAcc struct {
		row AIUserRow
	}
	users := make(map[string]*userAcc)
	user := func(identifier string) *userAcc {
		u := metrics.GetOrInit(users, identifier)
		u.row.Identifier = identifier
		return u
	}

	for email, usage := range data.foldCursorUsers() {
		u := user(email)
		u.row.Cursor.TotalLines = usage.TotalLinesAdded
		u.row.Cursor.AIPercent = usage.AICodePercent
	}
	for email, acc := range data.foldClaudeUsers() {
		u := user(email)
		u.row.Claude.LinesAdded = acc.LinesAdded
		u.row.Claude.Sessions = acc.Sessions
		u.row.Claude.CostCents = acc.CostCents
	}

	rows := make([]AIUserRow, 0, len(users))
	for identifier, u := range users {
		_, mapped := resolver.LoginForEmail(identifier)
		u.row.IsUnmapped = !mapped && identifier != ""
		rows = append(rows, u.row)
	}

	// Biggest AI footprint first, lines added from either tool.
	sort.Slice(rows, func(i, j int) bool {
		a := rows[i].Claude.LinesAdded + rows[i].Cursor.TotalLines
		b := rows[j].Claude.LinesAdded + rows[j].Cursor.TotalLines
		if a != b {
			return a > b
		}
		return rows[i].Identifier < rows[j].Identifier
	})
	return rows
}
