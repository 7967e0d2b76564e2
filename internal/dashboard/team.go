package dashboard

import (
	"sort"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/identity"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// TeamMember is one row of the team table. Mapped members are identified by
// email and carry data from every provider; GitHub-only members without a
// mapping are identified by login and flagged unmapped.
type TeamMember struct {
	Identifier string `json:"identifier"`
	IsUnmapped bool   `json:"isUnmapped"`

	GitHubPRCount           int64   `json:"githubPrCount"`
	GitHubMergedCount       int64   `json:"githubMergedCount"`
	GitHubAvgCycleTimeHours float64 `json:"githubAvgCycleTimeHours"`
	GitHubLinesAdded        int64   `json:"githubLinesAdded"`
	GitHubCommentsMade      int64   `json:"githubCommentsMade"`
	GitHubCommentsReceived  int64   `json:"githubCommentsReceived"`

	CursorLinesAdded        int64   `json:"cursorLinesAdded"`
	CursorAICodePercent     float64 `json:"cursorAiCodePercent"`
	CursorTabAcceptRate     float64 `json:"cursorTabAcceptRate"`
	CursorRequests          int64   `json:"cursorRequests"`
	CursorTotalUsageDollars float64 `json:"cursorTotalUsageDollars"`

	ClaudeSessions    int64   `json:"claudeSessions"`
	ClaudeLinesAdded  int64   `json:"claudeLinesAdded"`
	ClaudeCostDollars float64 `json:"claudeCostDollars"`

	TotalCostDollars float64 `json:"totalCostDollars"`
}

// TeamView is the reconciled per-member dashboard view.
type TeamView struct {
	Users []TeamMember `json:"users"`
}

// BuildTeamView folds the stored rows of a range per member and reconciles
// GitHub logins with provider emails through the mapping table. An unmapped
// login keeps its own row rather than being dropped or guessed at.
func BuildTeamView(rows []db.StoredMetric, resolver *identity.Resolver) (*TeamView, error) {
	data, err := decodeRows(rows)
	if err != nil {
		return nil, err
	}

	members := make(map[string]*TeamMember)
	member := func(identifier string) *TeamMember {
		m := metrics.GetOrInit(members, identifier)
		m.Identifier = identifier
		return m
	}

	for login, stats := range data.foldGitHubAuthors() {
		identifier, mapped := resolver.EmailForLogin(login)
		if !mapped {
			identifier = login
		}
		m := member(identifier)
		m.IsUnmapped = !mapped
		m.GitHubPRCount += stats.PRCount
		m.GitHubMergedCount += stats.MergedCount
		m.GitHubLinesAdded += stats.LinesAdded
		m.GitHubCommentsMade += stats.CommentsMade
		m.GitHubCommentsReceived += stats.CommentsReceived
		if stats.MergedCount > 0 {
			m.GitHubAvgCycleTimeHours = stats.TotalCycleTimeHours / float64(stats.MergedCount)
		}
	}

	for email, usage := range data.foldCursorUsers() {
		m := member(email)
		m.CursorLinesAdded += usage.TotalLinesAdded
		m.CursorAICodePercent = usage.AICodePercent
		m.CursorTabAcceptRate = usage.TabAcceptRate
		m.CursorRequests += usage.Requests
	}

	for email, spend := range data.spendUsers() {
		member(email).CursorTotalUsageDollars = spend.TotalUsageDollars
	}

	for email, acc := range data.foldClaudeUsers() {
		m := member(email)
		m.ClaudeSessions += acc.Sessions
		m.ClaudeLinesAdded += acc.LinesAdded
		m.ClaudeCostDollars = metrics.DollarsFloat(acc.CostCents)
	}

	view := &TeamView{Users: make([]TeamMember, 0, len(members))}
	for _, m := range members {
		m.TotalCostDollars = m.CursorTotalUsageDollars + m.ClaudeCostDollars
		view.Users = append(view.Users, *m)
	}

	// Mapped members first, each group alphabetical.
	sort.Slice(view.Users, func(i, j int) bool {
		a, b := &view.Users[i], &view.Users[j]
		if a.IsUnmapped != b.IsUnmapped {
			return !a.IsUnmapped
		}
		return a.Identifier < b.Identifier
	})

	return view, nil
}
