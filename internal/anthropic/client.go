// Package anthropic provides a client for the Anthropic admin usage-report
// API and the parser that normalizes Claude Code usage records.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/DevPulseHQ/devpulse-web/internal/logger"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// usageReportLimit caps records per report request.
	usageReportLimit = 1000
)

// Client is an HTTP client for the Anthropic admin API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTimeout sets a custom HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new Anthropic admin API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUsageReport fetches the Claude Code usage report for one calendar
// day (YYYY-MM-DD).
func (c *Client) FetchUsageReport(ctx context.Context, date string) (*UsageReport, error) {
	query := url.Values{
		"starting_at": {date},
		"limit":       {fmt.Sprintf("%d", usageReportLimit)},
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+"/v1/organizations/usage_report/claude_code?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		apiErr.StatusCode = resp.StatusCode
		return nil, &apiErr
	}

	var report UsageReport
	if err := json.Unmarshal(respBody, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if report.HasMore {
		logger.Warn("usage report truncated at page limit",
			"date", date, "limit", usageReportLimit)
	}

	return &report, nil
}
