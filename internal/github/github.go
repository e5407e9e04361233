// Package github fetches pull request diffs and posts review comments
// through the GitHub REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/nikolliervin/code-unc/internal/model"
)

const defaultAPIURL = "https://api.github.com"

// Client talks to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a GitHub client. The token comes from GITHUB_TOKEN;
// baseURL overrides the API endpoint for GitHub Enterprise.
func NewClient(baseURL string) (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is not set")
	}
	if baseURL == "" {
		baseURL = os.Getenv("GITHUB_API_URL")
	}
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(baseURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// GetPRDiff fetches the unified diff of a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3.diff")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching PR diff: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("PR #%d not found in %s/%s", number, owner, repo)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("authentication failed: %s", string(body))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

// ReviewComment is one inline comment in a PR review.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ReviewRequest is the review payload posted to GitHub.
type ReviewRequest struct {
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []ReviewComment `json:"comments"`
}

// PostReview posts a pull request review with inline comments.
func (c *Client) PostReview(ctx context.Context, owner, repo string, number int, review ReviewRequest) error {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.apiURL, owner, repo, number)

	payload, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("posting review: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return fmt.Errorf("GitHub rejected review (422): %s", string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// BuildReview converts a review result into a GitHub PR review payload.
// Issues with a reliable in-diff location become inline comments; the
// rest go into the summary body. diffFiles is the set of paths in the
// PR diff.
func BuildReview(res *model.ReviewResult, diffFiles map[string]bool) ReviewRequest {
	var comments []ReviewComment
	var bodyItems []string

	for _, is := range res.Issues {
		if !is.Location.Inferred && is.Location.Valid() && diffFiles[is.Location.FilePath] {
			comments = append(comments, ReviewComment{
				Path: is.Location.FilePath,
				Line: inlineLine(is.Location),
				Body: formatInline(is),
			})
			continue
		}
		bodyItems = append(bodyItems, formatBodyItem(is))
	}

	var sb strings.Builder
	sb.WriteString("## Automated Code Review\n\n")
	if res.Summary != "" {
		sb.WriteString(res.Summary)
		sb.WriteString("\n\n")
	}
	m := res.Metrics
	sb.WriteString("| Severity | Count |\n|----------|-------|\n")
	fmt.Fprintf(&sb, "| Critical | %d |\n", m.CriticalIssues)
	fmt.Fprintf(&sb, "| High | %d |\n", m.HighIssues)
	fmt.Fprintf(&sb, "| Medium | %d |\n", m.MediumIssues)
	fmt.Fprintf(&sb, "| Low | %d |\n", m.LowIssues)
	fmt.Fprintf(&sb, "| Info | %d |\n\n", m.InfoIssues)

	if len(bodyItems) > 0 {
		sb.WriteString("### Other Findings\n\n")
		for _, item := range bodyItems {
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	event := "COMMENT"
	if res.Approved() {
		event = "APPROVE"
	}
	return ReviewRequest{
		Body:     sb.String(),
		Event:    event,
		Comments: comments,
	}
}

func inlineLine(loc model.Location) int {
	if loc.LineEnd > loc.LineStart {
		return loc.LineEnd
	}
	return loc.LineStart
}

func formatInline(is model.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** (%s, %s, confidence: %.0f%%)\n\n", is.Title, is.Severity, is.Category, is.Confidence*100)
	sb.WriteString(is.Description)
	if is.SuggestedFix != "" {
		fmt.Fprintf(&sb, "\n\n**Suggested fix:**\n```\n%s\n```", strings.TrimRight(is.SuggestedFix, "\n"))
	}
	return sb.String()
}

func formatBodyItem(is model.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- **%s** (%s, %s): %s", is.Title, is.Severity, is.Category, is.Description)
	if is.Location.Valid() {
		fmt.Fprintf(&sb, " (`%s`)", is.FormatLocation())
	}
	return sb.String()
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from the git remote origin URL.
func DetectRepo() (owner, repo string, err error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from an HTTPS or SSH remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")
	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
