// Package cursor fetches team usage and spend data from the Cursor admin
// API and normalizes it into per-day, per-member aggregates.
package cursor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.cursor.com"
	userAgent      = "DevPulse/1.0"

	// MaxRangeDays is the admin API's hard limit per daily-usage request.
	MaxRangeDays = 30
)

// ErrRangeTooLong is returned before any fetch when the requested window
// exceeds the admin API's 30-day maximum.
var ErrRangeTooLong = errors.New("date range cannot exceed 30 days")

// Client is an HTTP client for the Cursor admin API.
// Authentication is HTTP basic with the API key as username.
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

// NewClient creates a new Cursor admin API client.
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

func (c *Client) post(ctx context.Context, path string, reqBody, out interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":"))
	httpReq.Header.Set("Authorization", "Basic "+auth)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// FetchDailyUsage fetches per-member daily usage for [start, end].
// The window is validated against the API's 30-day maximum before any
// request is made.
func (c *Client) FetchDailyUsage(ctx context.Context, start, end time.Time) (*DailyUsageResponse, error) {
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return nil, ErrRangeTooLong
	}

	req := map[string]int64{
		"startDate": start.UnixMilli(),
		"endDate":   end.UnixMilli(),
	}
	var resp DailyUsageResponse
	if err := c.post(ctx, "/teams/daily-usage-data", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchSpend fetches the team's month-to-date spend snapshot.
func (c *Client) FetchSpend(ctx context.Context) (*SpendResponse, error) {
	var resp SpendResponse
	if err := c.post(ctx, "/teams/spend", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
