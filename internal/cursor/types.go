package cursor

import (
	"fmt"
	"time"
)

// DailyUsageResponse is the admin API response for /teams/daily-usage-data.
type DailyUsageResponse struct {
	Data   []DailyUsageRecord `json:"data"`
	Period *Period            `json:"period,omitempty"`
}

// Period echoes the requested window in epoch milliseconds.
type Period struct {
	StartDate int64 `json:"startDate"`
	EndDate   int64 `json:"endDate"`
}

// DailyUsageRecord is one member-day of editor usage. All counters are
// optional on the wire and default to zero.
type DailyUsageRecord struct {
	Email              string `json:"email"`
	Date               int64  `json:"date"` // epoch milliseconds
	IsActive           bool   `json:"isActive"`
	TotalLinesAdded    int64  `json:"totalLinesAdded"`
	TotalLinesDeleted  int64  `json:"totalLinesDeleted"`
	AcceptedLinesAdded int64  `json:"acceptedLinesAdded"`
	TotalTabsShown     int64  `json:"totalTabsShown"`
	TotalTabsAccepted  int64  `json:"totalTabsAccepted"`
	ComposerRequests   int64  `json:"composerRequests"`
	ChatRequests       int64  `json:"chatRequests"`
	AgentRequests      int64  `json:"agentRequests"`
}

// Identity returns the member's email, or "unknown" when absent.
func (r *DailyUsageRecord) Identity() string {
	if r.Email == "" {
		return "unknown"
	}
	return r.Email
}

// Timestamp converts the epoch-millisecond date; ok is false when the
// record carries no date at all.
func (r *DailyUsageRecord) Timestamp() (time.Time, bool) {
	if r.Date == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(r.Date).UTC(), true
}

// SpendResponse is the admin API response for /teams/spend.
type SpendResponse struct {
	TeamMemberSpend []TeamMemberSpend `json:"teamMemberSpend"`
}

// TeamMemberSpend is one member's month-to-date spend. SpendCents is
// metered overage; IncludedSpendCents is usage covered by the plan.
type TeamMemberSpend struct {
	Email               string `json:"email"`
	SpendCents          int64  `json:"spendCents"`
	IncludedSpendCents  int64  `json:"includedSpendCents"`
	FastPremiumRequests int64  `json:"fastPremiumRequests"`
}

// Identity returns the member's email, or "unknown" when absent.
func (s *TeamMemberSpend) Identity() string {
	if s.Email == "" {
		return "unknown"
	}
	return s.Email
}

// APIError is a non-success response from the Cursor admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cursor API error (status %d): %s", e.StatusCode, e.Body)
}
