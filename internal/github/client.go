// Package github fetches pull-request activity from the GitHub REST API and
// normalizes it into per-day, per-author aggregates.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100
	userAgent      = "DevPulse/1.0"
)

// Client is an HTTP client for the GitHub REST API.
type Client struct {
	token      string
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

// NewClient creates a new GitHub API client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:   token,
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

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// ListPullRequests fetches all pull requests for a repository, following
// pagination until the API returns a short page.
func (c *Client) ListPullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	var all []PullRequest
	for page := 1; ; page++ {
		query := url.Values{
			"state":    {"all"},
			"per_page": {fmt.Sprintf("%d", perPage)},
			"page":     {fmt.Sprintf("%d", page)},
		}

		var batch []PullRequest
		if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), query, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			break
		}
	}
	return all, nil
}

// ListReviewComments fetches review comments created since the given time,
// following pagination.
func (c *Client) ListReviewComments(ctx context.Context, owner, repo string, since time.Time) ([]ReviewComment, error) {
	var all []ReviewComment
	for page := 1; ; page++ {
		query := url.Values{
			"since":    {since.UTC().Format(time.RFC3339)},
			"per_page": {fmt.Sprintf("%d", perPage)},
			"page":     {fmt.Sprintf("%d", page)},
		}

		var batch []ReviewComment
		if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/pulls/comments", owner, repo), query, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			break
		}
	}
	return all, nil
}

// FetchPRsInRange returns pull requests created within [start, end]
// (end inclusive through end of day).
func (c *Client) FetchPRsInRange(ctx context.Context, owner, repo string, start, end time.Time) ([]PullRequest, error) {
	all, err := c.ListPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	cutoff := end.Add(24 * time.Hour)
	var inRange []PullRequest
	for _, pr := range all {
		if !pr.CreatedAt.Before(start) && pr.CreatedAt.Before(cutoff) {
			inRange = append(inRange, pr)
		}
	}
	return inRange, nil
}
