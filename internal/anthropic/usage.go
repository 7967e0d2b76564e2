package anthropic

import (
	"fmt"
	"strings"

	"github.com/DevPulseHQ/devpulse-web/internal/metrics"
)

// UsageReport is the admin API response for the Claude Code usage report.
type UsageReport struct {
	Data    []UsageRecord `json:"data"`
	HasMore bool          `json:"has_more"`
}

// UsageRecord is one actor-day of Claude Code usage. Every field is
// optional; nested objects stay nil when absent and are read through the
// nil-tolerant accessors below.
type UsageRecord struct {
	Date           string        `json:"date"`
	Actor          *UsageActor   `json:"actor,omitempty"`
	TerminalType   string        `json:"terminal_type,omitempty"`
	CoreMetrics    *CoreMetrics  `json:"core_metrics,omitempty"`
	ToolActions    *ToolActions  `json:"tool_actions,omitempty"`
	ModelBreakdown []ModelUsage  `json:"model_breakdown,omitempty"`
}

// UsageActor identifies who the usage is attributed to: a user (email) or
// an API key.
type UsageActor struct {
	Type         string `json:"type,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	APIKeyName   string `json:"api_key_name,omitempty"`
}

// CoreMetrics carries session-level counters.
type CoreMetrics struct {
	NumSessions              int64        `json:"num_sessions"`
	LinesOfCode              *LinesOfCode `json:"lines_of_code,omitempty"`
	CommitsByClaudeCode      int64        `json:"commits_by_claude_code"`
	PullRequestsByClaudeCode int64        `json:"pull_requests_by_claude_code"`
}

// LinesOfCode counts lines the assistant added and removed.
type LinesOfCode struct {
	Added   int64 `json:"added"`
	Removed int64 `json:"removed"`
}

// ToolActions carries accept/reject counters per tool.
type ToolActions struct {
	EditTool         *ToolActionCounts `json:"edit_tool,omitempty"`
	WriteTool        *ToolActionCounts `json:"write_tool,omitempty"`
	NotebookEditTool *ToolActionCounts `json:"notebook_edit_tool,omitempty"`
}

// ToolActionCounts is an accepted/rejected pair.
type ToolActionCounts struct {
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

// ModelUsage is one model's share of a session; a single record may carry
// several (one session can span multiple model invocations).
type ModelUsage struct {
	Model         string       `json:"model,omitempty"`
	Tokens        *TokenCounts `json:"tokens,omitempty"`
	EstimatedCost *Cost        `json:"estimated_cost,omitempty"`
}

// TokenCounts breaks token usage down by category.
type TokenCounts struct {
	Input         int64 `json:"input"`
	Output        int64 `json:"output"`
	CacheRead     int64 `json:"cache_read"`
	CacheCreation int64 `json:"cache_creation"`
}

// Cost is an amount in the smallest currency unit (cents for USD).
type Cost struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// ActorKey returns the identity to aggregate under: the actor's email,
// else its API key name, else "unknown".
func (r *UsageRecord) ActorKey() string {
	if r.Actor != nil {
		if r.Actor.EmailAddress != "" {
			return r.Actor.EmailAddress
		}
		if r.Actor.APIKeyName != "" {
			return r.Actor.APIKeyName
		}
	}
	return "unknown"
}

// DateKey truncates the record's timestamp to a YYYY-MM-DD key; ok is
// false when the record carries no usable date.
func (r *UsageRecord) DateKey() (string, bool) {
	if r.Date == "" {
		return "", false
	}
	day, _, _ := strings.Cut(r.Date, "T")
	if _, err := metrics.ParseDate(day); err != nil {
		return "", false
	}
	return day, true
}

// Sessions returns num_sessions, 0 when core metrics are absent.
func (r *UsageRecord) Sessions() int64 {
	if r.CoreMetrics == nil {
		return 0
	}
	return r.CoreMetrics.NumSessions
}

// Lines returns (added, removed), zeros when absent at any level.
func (r *UsageRecord) Lines() (int64, int64) {
	if r.CoreMetrics == nil || r.CoreMetrics.LinesOfCode == nil {
		return 0, 0
	}
	return r.CoreMetrics.LinesOfCode.Added, r.CoreMetrics.LinesOfCode.Removed
}

// Commits returns commits_by_claude_code, 0 when absent.
func (r *UsageRecord) Commits() int64 {
	if r.CoreMetrics == nil {
		return 0
	}
	return r.CoreMetrics.CommitsByClaudeCode
}

// PullRequests returns pull_requests_by_claude_code, 0 when absent.
func (r *UsageRecord) PullRequests() int64 {
	if r.CoreMetrics == nil {
		return 0
	}
	return r.CoreMetrics.PullRequestsByClaudeCode
}

// EditCounts returns the edit tool's accepted/rejected pair, zeros when absent.
func (r *UsageRecord) EditCounts() (int64, int64) {
	if r.ToolActions == nil || r.ToolActions.EditTool == nil {
		return 0, 0
	}
	return r.ToolActions.EditTool.Accepted, r.ToolActions.EditTool.Rejected
}

// WriteCounts returns the write tool's accepted/rejected pair, zeros when absent.
func (r *UsageRecord) WriteCounts() (int64, int64) {
	if r.ToolActions == nil || r.ToolActions.WriteTool == nil {
		return 0, 0
	}
	return r.ToolActions.WriteTool.Accepted, r.ToolActions.WriteTool.Rejected
}

// CostCents returns the model's estimated cost, 0 when absent.
func (m *ModelUsage) CostCents() int64 {
	if m.EstimatedCost == nil {
		return 0
	}
	return m.EstimatedCost.Amount
}

// TokenIO returns the model's input/output token counts, zeros when absent.
func (m *ModelUsage) TokenIO() (int64, int64) {
	if m.Tokens == nil {
		return 0, 0
	}
	return m.Tokens.Input, m.Tokens.Output
}

// APIError represents an error response from the Anthropic API.
type APIError struct {
	Type        string       `json:"type"`
	ErrorDetail ErrorDetails `json:"error"`
	StatusCode  int          `json:"-"`
}

// ErrorDetails contains the error details.
type ErrorDetails struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic API error (status %d, type %s): %s", e.StatusCode, e.ErrorDetail.Type, e.ErrorDetail.Message)
}
