package github

import (
	"fmt"
	"time"
)

// PullRequest is the subset of the GitHub pulls API payload the parser
// consumes. Every field is optional on the wire; absent scalars decode to
// zero and absent objects stay nil.
type PullRequest struct {
	Number    int        `json:"number"`
	User      *Actor     `json:"user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	Comments  int64      `json:"comments"`
	Additions int64      `json:"additions"`
	Deletions int64      `json:"deletions"`
}

// Actor is a GitHub user reference.
type Actor struct {
	Login string `json:"login"`
}

// AuthorLogin returns the PR author's login, or "unknown" when the author
// is absent so the record stays visible in per-user aggregates.
func (pr *PullRequest) AuthorLogin() string {
	if pr.User == nil || pr.User.Login == "" {
		return "unknown"
	}
	return pr.User.Login
}

// ReviewComment is a review or issue comment attached to a pull request.
type ReviewComment struct {
	User           *Actor `json:"user,omitempty"`
	PullRequestURL string `json:"pull_request_url"`
}

// CommenterLogin returns the comment author's login, defaulting to "unknown".
func (c *ReviewComment) CommenterLogin() string {
	if c.User == nil || c.User.Login == "" {
		return "unknown"
	}
	return c.User.Login
}

// APIError is a non-success response from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github API error (status %d): %s", e.StatusCode, e.Body)
}
