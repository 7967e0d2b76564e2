package anthropic

import (
	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// Accumulator is the assistant metric shape used at every granularity:
// organization totals, per-user and per-date all carry the same counters.
// Cost and tokens are summed across all models within each record.
type Accumulator struct {
	Sessions      int64 `json:"sessions"`
	LinesAdded    int64 `json:"linesAdded"`
	LinesRemoved  int64 `json:"linesRemoved"`
	Commits       int64 `json:"commits"`
	PullRequests  int64 `json:"prs"`
	EditAccepted  int64 `json:"editAccepted"`
	EditRejected  int64 `json:"editRejected"`
	WriteAccepted int64 `json:"writeAccepted"`
	WriteRejected int64 `json:"writeRejected"`
	CostCents     int64 `json:"costCents"`
	TokensInput   int64 `json:"tokensInput"`
	TokensOutput  int64 `json:"tokensOutput"`
}

// add folds one usage record into the accumulator.
func (a *Accumulator) add(r *UsageRecord) {
	added, removed := r.Lines()
	editAcc, editRej := r.EditCounts()
	writeAcc, writeRej := r.WriteCounts()

	a.Sessions += r.Sessions()
	a.LinesAdded += added
	a.LinesRemoved += removed
	a.Commits += r.Commits()
	a.PullRequests += r.PullRequests()
	a.EditAccepted += editAcc
	a.EditRejected += editRej
	a.WriteAccepted += writeAcc
	a.WriteRejected += writeRej

	for i := range r.ModelBreakdown {
		model := &r.ModelBreakdown[i]
		input, output := model.TokenIO()
		a.CostCents += model.CostCents()
		a.TokensInput += input
		a.TokensOutput += output
	}
}

// AssistantMetrics is the normalized aggregate of a usage report.
type AssistantMetrics struct {
	Totals Accumulator             `json:"totals"`
	ByUser map[string]*Accumulator `json:"byUser"`
	ByDate map[string]*Accumulator `json:"byDate"`
}

// ParseUsageReport folds a usage report into a normalized aggregate.
// Records without an actor aggregate under "unknown"; records without a
// usable date contribute to totals and byUser but not byDate.
func ParseUsageReport(report *UsageReport) *AssistantMetrics {
	m := &AssistantMetrics{
		ByUser: make(map[string]*Accumulator),
		ByDate: make(map[string]*Accumulator),
	}

	for i := range report.Data {
		rec := &report.Data[i]

		m.Totals.add(rec)
		metrics.GetOrInit(m.ByUser, rec.ActorKey()).add(rec)
		if day, ok := rec.DateKey(); ok {
			metrics.GetOrInit(m.ByDate, day).add(rec)
		}
	}

	return m
}
