package backfill

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/DevPulseHQ/devpulse-web/internal/anthropic"
	"github.com/DevPulseHQ/devpulse-web/internal/cursor"
	"github.com/DevPulseHQ/devpulse-web/internal/db"
	"github.com/DevPulseHQ/devpulse-web/internal/github"
	"github.com/DevPulseHQ/devpulse-web/internal/logger"
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// Store persists normalized aggregates.
type Store interface {
	SaveMetric(ctx context.Context, source metrics.Source, kind metrics.Kind, date string, payload json.RawMessage) (*db.StoredMetric, error)
}

// GitHubSource fetches pull-request activity.
type GitHubSource interface {
	FetchPRsInRange(ctx context.Context, owner, repo string, start, end time.Time) ([]github.PullRequest, error)
	ListReviewComments(ctx context.Context, owner, repo string, since time.Time) ([]github.ReviewComment, error)
}

// CursorSource fetches editor usage and spend.
type CursorSource interface {
	FetchDailyUsage(ctx context.Context, start, end time.Time) (*cursor.DailyUsageResponse, error)
	FetchSpend(ctx context.Context) (*cursor.SpendResponse, error)
}

// ClaudeSource fetches assistant usage reports.
type ClaudeSource interface {
	FetchUsageReport(ctx context.Context, date string) (*anthropic.UsageReport, error)
}

// Runner executes backfill requests. A nil provider client means the
// provider is not configured and is skipped silently unless the request
// names it explicitly.
type Runner struct {
	Store  Store
	GitHub GitHubSource
	Cursor CursorSource
	Claude ClaudeSource

	// Repos lists "owner/repo" references for the GitHub provider.
	Repos []string

	// Limiter paces remote calls across providers; nil disables pacing.
	Limiter *rate.Limiter

	// Now is overridable for tests; the spend snapshot is keyed to it.
	Now func() time.Time
}

// DayStatus records the outcome of one (source, date) unit of a run.
type DayStatus struct {
	Source metrics.Source `json:"source"`
	Date   string         `json:"date"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

const (
	// StatusSaved marks a day whose aggregate was upserted.
	StatusSaved = "saved"
	// StatusFailed marks a day that was skipped after a fetch or store
	// error. The rest of the run continues.
	StatusFailed = "failed"
)

// Result summarizes one backfill run.
type Result struct {
	RunID  string      `json:"runId"`
	Start  string      `json:"startDate"`
	End    string      `json:"endDate"`
	Saved  int         `json:"saved"`
	Failed int         `json:"failed"`
	Days   []DayStatus `json:"days"`
}

// Run validates the request and backfills each configured provider day by
// day. A day that fails is recorded in the result and skipped; only an
// invalid request or an unworkable source selection fails the run itself.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !r.hasSource(req) {
		return nil, ErrNoSources
	}

	res := &Result{
		RunID: uuid.NewString(),
		Start: req.Start,
		End:   req.End,
	}
	log := logger.With("run_id", res.RunID, "start", req.Start, "end", req.End)
	log.Info("backfill run started")

	if r.GitHub != nil && req.wants(metrics.SourceGitHub) {
		r.runGitHub(ctx, req, res)
	}
	if r.Cursor != nil && req.wants(metrics.SourceCursor) {
		r.runCursor(ctx, req, res)
	}
	if r.Claude != nil && req.wants(metrics.SourceClaude) {
		r.runClaude(ctx, req, res)
	}

	log.Info("backfill run finished", "saved", res.Saved, "failed", res.Failed)
	return res, nil
}

// hasSource reports whether at least one requested provider is configured.
func (r *Runner) hasSource(req Request) bool {
	return (r.GitHub != nil && req.wants(metrics.SourceGitHub)) ||
		(r.Cursor != nil && req.wants(metrics.SourceCursor)) ||
		(r.Claude != nil && req.wants(metrics.SourceClaude))
}

func (r *Runner) wait(ctx context.Context) error {
	if r.Limiter == nil {
		return nil
	}
	return r.Limiter.Wait(ctx)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// save marshals and upserts one day's aggregate and records the outcome.
func (r *Runner) save(ctx context.Context, res *Result, source metrics.Source, kind metrics.Kind, date string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err == nil {
		_, err = r.Store.SaveMetric(ctx, source, kind, date, body)
	}
	if err != nil {
		r.fail(res, source, date, fmt.Errorf("failed to save: %w", err))
		return
	}
	res.Saved++
	res.Days = append(res.Days, DayStatus{Source: source, Date: date, Status: StatusSaved})
}

// fail records a skipped day without stopping the run.
func (r *Runner) fail(res *Result, source metrics.Source, date string, err error) {
	logger.Warn("backfill day failed", "source", string(source), "date", date, "error", err.Error())
	res.Failed++
	res.Days = append(res.Days, DayStatus{Source: source, Date: date, Status: StatusFailed, Error: err.Error()})
}

// failRange marks every day of the request failed for one source, used
// when the range-level fetch itself errors.
func (r *Runner) failRange(res *Result, req Request, source metrics.Source, err error) {
	for _, date := range req.days() {
		r.fail(res, source, date, err)
	}
}

// runGitHub fetches the range's pull requests and review comments once,
// then stores one aggregate per day. Comments are attributed to the day
// their pull request was created on.
func (r *Runner) runGitHub(ctx context.Context, req Request, res *Result) {
	start, _ := metrics.ParseDate(req.Start)
	end, _ := metrics.ParseDate(req.End)

	var prs []github.PullRequest
	var comments []github.ReviewComment
	for _, ref := range r.Repos {
		owner, repo, err := SplitRepo(ref)
		if err != nil {
			r.failRange(res, req, metrics.SourceGitHub, err)
			return
		}
		if err := r.wait(ctx); err != nil {
			r.failRange(res, req, metrics.SourceGitHub, err)
			return
		}
		repoPRs, err := r.GitHub.FetchPRsInRange(ctx, owner, repo, start, end)
		if err != nil {
			r.failRange(res, req, metrics.SourceGitHub, fmt.Errorf("failed to fetch pull requests for %s: %w", ref, err))
			return
		}
		if err := r.wait(ctx); err != nil {
			r.failRange(res, req, metrics.SourceGitHub, err)
			return
		}
		repoComments, err := r.GitHub.ListReviewComments(ctx, owner, repo, start)
		if err != nil {
			r.failRange(res, req, metrics.SourceGitHub, fmt.Errorf("failed to fetch review comments for %s: %w", ref, err))
			return
		}
		prs = append(prs, repoPRs...)
		comments = append(comments, repoComments...)
	}

	byDay := make(map[string][]github.PullRequest)
	for i := range prs {
		date := metrics.DateKey(prs[i].CreatedAt)
		byDay[date] = append(byDay[date], prs[i])
	}

	for _, date := range req.days() {
		dayPRs := byDay[date]
		dayComments := github.FilterCommentsByPR(comments, dayPRs)
		r.save(ctx, res, metrics.SourceGitHub, metrics.KindDaily, date, github.ParsePRs(dayPRs, dayComments))
	}
}

// runCursor fetches the range's usage once and stores one aggregate per
// day, then stores the current spend snapshot under today's date.
func (r *Runner) runCursor(ctx context.Context, req Request, res *Result) {
	start, _ := metrics.ParseDate(req.Start)
	end, _ := metrics.ParseDate(req.End)

	if err := r.wait(ctx); err != nil {
		r.failRange(res, req, metrics.SourceCursor, err)
		return
	}
	resp, err := r.Cursor.FetchDailyUsage(ctx, start, end)
	if err != nil {
		r.failRange(res, req, metrics.SourceCursor, fmt.Errorf("failed to fetch daily usage: %w", err))
		return
	}

	byDay := make(map[string][]cursor.DailyUsageRecord)
	for i := range resp.Data {
		if ts, ok := resp.Data[i].Timestamp(); ok {
			date := metrics.DateKey(ts)
			byDay[date] = append(byDay[date], resp.Data[i])
		}
	}

	for _, date := range req.days() {
		day := &cursor.DailyUsageResponse{Data: byDay[date]}
		r.save(ctx, res, metrics.SourceCursor, metrics.KindDaily, date, cursor.ParseDailyUsage(day))
	}

	// Spend is month-to-date, not range-scoped: snapshot it under today so
	// the latest row always reflects the current billing period.
	today := metrics.DateKey(r.now())
	if err := r.wait(ctx); err != nil {
		r.fail(res, metrics.SourceCursor, today, err)
		return
	}
	spend, err := r.Cursor.FetchSpend(ctx)
	if err != nil {
		r.fail(res, metrics.SourceCursor, today, fmt.Errorf("failed to fetch spend: %w", err))
		return
	}
	r.save(ctx, res, metrics.SourceCursor, metrics.KindSpend, today, cursor.ParseSpend(spend))
}

// runClaude fetches one usage report per day; each day stands alone so a
// failed report only loses that day.
func (r *Runner) runClaude(ctx context.Context, req Request, res *Result) {
	for _, date := range req.days() {
		if err := r.wait(ctx); err != nil {
			r.fail(res, metrics.SourceClaude, date, err)
			continue
		}
		report, err := r.Claude.FetchUsageReport(ctx, date)
		if err != nil {
			r.fail(res, metrics.SourceClaude, date, fmt.Errorf("failed to fetch usage report: %w", err))
			continue
		}
		r.save(ctx, res, metrics.SourceClaude, metrics.KindDaily, date, anthropic.ParseUsageReport(report))
	}
}
