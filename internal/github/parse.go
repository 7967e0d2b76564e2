package github

import (
	"strconv"
	"strings"

	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// PRTotals accumulates organization-wide pull-request metrics.
// AvgCycleTimeHours is derived once after accumulation, over merged PRs only.
type PRTotals struct {
	PRCount           int64   `json:"prCount"`
	MergedCount       int64   `json:"mergedCount"`
	AvgCycleTimeHours float64 `json:"avgCycleTimeHours"`
	TotalComments     int64   `json:"totalComments"`
	LinesAdded        int64   `json:"linesAdded"`
	LinesRemoved      int64   `json:"linesRemoved"`
}

// AuthorStats accumulates per-author pull-request metrics. Cycle time is
// kept as a running sum so callers can average over MergedCount themselves.
type AuthorStats struct {
	PRCount             int64   `json:"prCount"`
	MergedCount         int64   `json:"mergedCount"`
	TotalCycleTimeHours float64 `json:"totalCycleTimeHours"`
	LinesAdded          int64   `json:"linesAdded"`
	LinesRemoved        int64   `json:"linesRemoved"`
	CommentsMade        int64   `json:"commentsMade"`
	CommentsReceived    int64   `json:"commentsReceived"`
}

// DayStats accumulates per-day pull-request metrics keyed by creation date.
type DayStats struct {
	PRCount             int64   `json:"prCount"`
	MergedCount         int64   `json:"mergedCount"`
	TotalCycleTimeHours float64 `json:"totalCycleTimeHours"`
	LinesAdded          int64   `json:"linesAdded"`
	LinesRemoved        int64   `json:"linesRemoved"`
}

// PRMetrics is the normalized aggregate the PR parser produces.
type PRMetrics struct {
	Totals   PRTotals                `json:"totals"`
	ByAuthor map[string]*AuthorStats `json:"byAuthor"`
	ByDate   map[string]*DayStats    `json:"byDate"`
}

// CycleTimeHours returns the PR's creation-to-merge time in hours.
// The second return is false for unmerged PRs, which contribute to counts
// but never to cycle-time averages.
func CycleTimeHours(pr *PullRequest) (float64, bool) {
	if pr.MergedAt == nil {
		return 0, false
	}
	return pr.MergedAt.Sub(pr.CreatedAt).Hours(), true
}

// ParsePRs folds pull requests and optional review comments into a
// normalized aggregate. Comments may be nil; they only feed the per-author
// made/received counters.
func ParsePRs(prs []PullRequest, comments []ReviewComment) *PRMetrics {
	m := &PRMetrics{
		ByAuthor: make(map[string]*AuthorStats),
		ByDate:   make(map[string]*DayStats),
	}

	var cycleTimeSum float64
	for i := range prs {
		pr := &prs[i]
		author := pr.AuthorLogin()
		date := metrics.DateKey(pr.CreatedAt)

		m.Totals.PRCount++
		m.Totals.TotalComments += pr.Comments
		m.Totals.LinesAdded += pr.Additions
		m.Totals.LinesRemoved += pr.Deletions

		byAuthor := metrics.GetOrInit(m.ByAuthor, author)
		byAuthor.PRCount++
		byAuthor.LinesAdded += pr.Additions
		byAuthor.LinesRemoved += pr.Deletions

		byDate := metrics.GetOrInit(m.ByDate, date)
		byDate.PRCount++
		byDate.LinesAdded += pr.Additions
		byDate.LinesRemoved += pr.Deletions

		if hours, merged := CycleTimeHours(pr); merged {
			m.Totals.MergedCount++
			cycleTimeSum += hours
			byAuthor.MergedCount++
			byAuthor.TotalCycleTimeHours += hours
			byDate.MergedCount++
			byDate.TotalCycleTimeHours += hours
		}
	}

	// Derived once, after all records are folded. Unmerged PRs are excluded
	// from numerator and denominator alike, never treated as zero-hour merges.
	if m.Totals.MergedCount > 0 {
		m.Totals.AvgCycleTimeHours = cycleTimeSum / float64(m.Totals.MergedCount)
	}

	attributeComments(m, prs, comments)
	return m
}

// attributeComments credits each comment to its author ("made") and to the
// PR author ("received"). A self-comment counts only as made.
func attributeComments(m *PRMetrics, prs []PullRequest, comments []ReviewComment) {
	if len(comments) == 0 {
		return
	}

	authorByNumber := make(map[int]string, len(prs))
	for i := range prs {
		authorByNumber[prs[i].Number] = prs[i].AuthorLogin()
	}

	for i := range comments {
		c := &comments[i]
		commenter := c.CommenterLogin()
		metrics.GetOrInit(m.ByAuthor, commenter).CommentsMade++

		number, ok := prNumberFromURL(c.PullRequestURL)
		if !ok {
			continue
		}
		prAuthor, ok := authorByNumber[number]
		if !ok || prAuthor == commenter {
			continue
		}
		metrics.GetOrInit(m.ByAuthor, prAuthor).CommentsReceived++
	}
}

// FilterCommentsByPR keeps only comments that belong to one of the given
// pull requests. Used when a comment stream spanning a whole range is
// attributed day by day.
func FilterCommentsByPR(comments []ReviewComment, prs []PullRequest) []ReviewComment {
	if len(comments) == 0 || len(prs) == 0 {
		return nil
	}
	numbers := make(map[int]struct{}, len(prs))
	for i := range prs {
		numbers[prs[i].Number] = struct{}{}
	}

	var kept []ReviewComment
	for i := range comments {
		if n, ok := prNumberFromURL(comments[i].PullRequestURL); ok {
			if _, ok := numbers[n]; ok {
				kept = append(kept, comments[i])
			}
		}
	}
	return kept
}

// prNumberFromURL extracts the PR number from an API URL like
// https://api.github.com/repos/org/repo/pulls/42.
func prNumberFromURL(rawURL string) (int, bool) {
	idx := strings.LastIndex(rawURL, "/")
	if idx < 0 || idx == len(rawURL)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(rawURL[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
