package dashboard

import (
	"fmt"
	"sort"

	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/identity"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// TrendSeries holds one value per date-axis position. Days without data are
// zero-filled so every series stays aligned with Dates.
type TrendSeries struct {
	LinesShipped []float64 `json:"linesShipped"`
	LinesRemoved []float64 `json:"linesRemoved"`
	AIPercent    []float64 `json:"aiPercent"`
	CostCents    []float64 `json:"costCents"`
}

// DailySeries is the daily trends view: a shared date axis, the series over
// it, and the identities available for per-user filtering.
type DailySeries struct {
	Dates  []string    `json:"dates"`
	Series TrendSeries `json:"series"`
	Users  []string    `json:"users"`
}

// BuildDailySeries folds the stored rows of [start, end] into aligned daily
// series. With a user filter, GitHub contributions come from the mapped
// login's per-author stats and assistant/editor contributions from the
// user's email; an empty filter folds whole-team totals.
func BuildDailySeries(rows []db.StoredMetric, start, end, user string, resolver *identity.Resolver) (*DailySeries, error) {
	startDay, err := metrics.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	endDay, err := metrics.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("end date %s precedes start date %s", end, start)
	}

	data, err := decodeRows(rows)
	if err != nil {
		return nil, err
	}

	// The filter may arrive as either an email or a login; resolve the
	// missing side when a mapping exists.
	email, login := user, user
	if user != "" {
		if l, ok := resolver.LoginForEmail(user); ok {
			login = l
		} else if e, ok := resolver.EmailForLogin(user); ok {
			email = e
		}
	}

	out := &DailySeries{Users: collectUsers(data, resolver)}
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		date := metrics.DateKey(day)
		out.Dates = append(out.Dates, date)

		var ghAdded, ghRemoved, cursorAccepted, claudeAdded, claudeCost float64
		if gh := data.github[date]; gh != nil {
			if user == "" {
				ghAdded = float64(gh.Totals.LinesAdded)
				ghRemoved = float64(gh.Totals.LinesRemoved)
			} else if stats := gh.ByAuthor[login]; stats != nil {
				ghAdded = float64(stats.LinesAdded)
				ghRemoved = float64(stats.LinesRemoved)
			}
		}
		if cu := data.cursorDaily[date]; cu != nil {
			if user == "" {
				cursorAccepted = float64(cu.Totals.AcceptedLinesAdded)
			} else if u := cu.ByUser[email]; u != nil {
				cursorAccepted = float64(u.AcceptedLinesAdded)
			}
		}
		if cl := data.claude[date]; cl != nil {
			if user == "" {
				claudeAdded = float64(cl.Totals.LinesAdded)
				claudeCost = float64(cl.Totals.CostCents)
			} else if acc := cl.ByUser[email]; acc != nil {
				claudeAdded = float64(acc.LinesAdded)
				claudeCost = float64(acc.CostCents)
			}
		}

		out.Series.LinesShipped = append(out.Series.LinesShipped, ghAdded)
		out.Series.LinesRemoved = append(out.Series.LinesRemoved, ghRemoved)
		out.Series.AIPercent = append(out.Series.AIPercent, metrics.SafePercent(claudeAdded+cursorAccepted, ghAdded))
		out.Series.CostCents = append(out.Series.CostCents, claudeCost)
	}

	return out, nil
}

// collectUsers lists every identity seen in range: provider emails plus
// GitHub logins, with mapped logins folded into their email.
func collectUsers(data *rangeData, resolver *identity.Resolver) []string {
	seen := make(map[string]struct{})
	for _, day := range data.cursorDaily {
		for email := range day.ByUser {
			seen[email] = struct{}{}
		}
	}
	for _, day := range data.claude {
		for email := range day.ByUser {
			seen[email] = struct{}{}
		}
	}
	for _, day := range data.github {
		for login := range day.ByAuthor {
			if email, ok := resolver.EmailForLogin(login); ok {
				seen[email] = struct{}{}
			} else {
				seen[login] = struct{}{}
			}
		}
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}
