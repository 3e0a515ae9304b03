// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/ka-sarthak/track-github-issues/internal/config"
	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

// apiVersion pins the REST API version sent with every request.
const apiVersion = "2022-11-28"

// Client encapsulates the GitHub API client. One Client is created per run
// and shared by every component of that run.
type Client struct {
	client *github.Client
}

// APIURL returns the REST API root for a GitHub domain: api.github.com for
// github.com, <domain>/api/v3/ for GitHub Enterprise.
func APIURL(domain string) string {
	if domain == "" || domain == config.DefaultDomain {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// versionTransport stamps the API version header onto every request.
type versionTransport struct {
	base http.RoundTripper
}

func (t versionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	return t.base.RoundTrip(req)
}

// NewClient creates a token-authenticated GitHub API client. No request is
// made; a missing token is rejected before any network activity.
func NewClient(ctx context.Context, cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, config.ErrMissingToken
	}

	apiURL := APIURL(cfg.Domain)
	logging.Info("github configuration",
		"domain", cfg.Domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(cfg.Token))

	// oauth2 wraps whatever client it finds in the context
	base := &http.Client{Transport: versionTransport{base: http.DefaultTransport}}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = cfg.RequestTimeout

	client := github.NewClient(tc)

	// If not using default GitHub.com, set custom API endpoint
	if apiURL != APIURL(config.DefaultDomain) {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	return &Client{client: client}, nil
}

// RepositoryAPIURL returns the API URL GitHub reports as repository_url for
// issues of repo, e.g. https://api.github.com/repos/owner/name.
func (c *Client) RepositoryAPIURL(repo models.Repository) string {
	return c.client.BaseURL.JoinPath("repos", repo.Owner, repo.Name).String()
}

// CurrentUser returns the login of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	user, resp, err := c.client.Users.Get(ctx, "")
	if err != nil {
		logging.Debug("failed to get authenticated user", "status_code", statusCode(resp), "error", err)
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// SearchIssues runs an issue search, most recently updated first, and
// returns a single page of at most perPage results.
func (c *Client) SearchIssues(ctx context.Context, query string, perPage int) ([]models.UpstreamIssue, error) {
	opts := &github.SearchOptions{
		Sort:  "updated",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	result, resp, err := c.client.Search.Issues(ctx, query, opts)
	if err != nil {
		logging.Debug("issue search failed", "query", query, "status_code", statusCode(resp), "error", err)
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	issues := make([]models.UpstreamIssue, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, toUpstreamIssue(issue))
	}

	logging.Debug("issue search complete",
		"query", query,
		"returned", len(issues),
		"total", result.GetTotal(),
		"incomplete", result.GetIncompleteResults())
	return issues, nil
}

// ListIssues returns one page of issues of repo carrying label, in any state.
func (c *Client) ListIssues(ctx context.Context, repo models.Repository, label string, page, perPage int) ([]models.TrackingIssue, error) {
	opts := &github.IssueListByRepoOptions{
		State:  "all",
		Labels: []string{label},
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	issues, resp, err := c.client.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		logging.Debug("failed to list issues",
			"repository", repo.String(),
			"page", page,
			"status_code", statusCode(resp),
			"error", err)
		return nil, fmt.Errorf("failed to list issues of %s (page %d): %w", repo, page, err)
	}

	result := make([]models.TrackingIssue, 0, len(issues))
	for _, issue := range issues {
		result = append(result, models.TrackingIssue{
			Number: issue.GetNumber(),
			State:  issue.GetState(),
			Body:   issue.GetBody(),
		})
	}
	return result, nil
}

// GetIssue fetches a single issue.
func (c *Client) GetIssue(ctx context.Context, ref models.IssueRef) (models.UpstreamIssue, error) {
	issue, resp, err := c.client.Issues.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		logging.Debug("failed to get issue", "issue", ref.String(), "status_code", statusCode(resp), "error", err)
		return models.UpstreamIssue{}, fmt.Errorf("failed to get issue %s: %w", ref, err)
	}
	return toUpstreamIssue(issue), nil
}

// CreateIssue opens a new issue in repo and returns its number.
func (c *Client) CreateIssue(ctx context.Context, repo models.Repository, req models.NewIssue) (int, error) {
	labels := req.Labels
	issue, resp, err := c.client.Issues.Create(ctx, repo.Owner, repo.Name, &github.IssueRequest{
		Title:  github.String(req.Title),
		Body:   github.String(req.Body),
		Labels: &labels,
	})
	if err != nil {
		logging.Debug("failed to create issue", "repository", repo.String(), "status_code", statusCode(resp), "error", err)
		return 0, fmt.Errorf("failed to create issue in %s: %w", repo, err)
	}
	return issue.GetNumber(), nil
}

// CloseIssue transitions an issue of repo to the closed state.
func (c *Client) CloseIssue(ctx context.Context, repo models.Repository, number int) error {
	_, resp, err := c.client.Issues.Edit(ctx, repo.Owner, repo.Name, number, &github.IssueRequest{
		State: github.String(models.StateClosed),
	})
	if err != nil {
		logging.Debug("failed to close issue", "repository", repo.String(), "issue_number", number, "status_code", statusCode(resp), "error", err)
		return fmt.Errorf("failed to close issue %s#%d: %w", repo, number, err)
	}
	return nil
}

// CreateComment adds a comment to an issue of repo.
func (c *Client) CreateComment(ctx context.Context, repo models.Repository, number int, body string) error {
	_, resp, err := c.client.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		logging.Debug("failed to comment on issue", "repository", repo.String(), "issue_number", number, "status_code", statusCode(resp), "error", err)
		return fmt.Errorf("failed to comment on issue %s#%d: %w", repo, number, err)
	}
	return nil
}

func toUpstreamIssue(issue *github.Issue) models.UpstreamIssue {
	return models.UpstreamIssue{
		ID:            issue.GetID(),
		URL:           issue.GetHTMLURL(),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		State:         issue.GetState(),
		CreatedAt:     issue.GetCreatedAt(),
		UpdatedAt:     issue.GetUpdatedAt(),
		RepositoryURL: issue.GetRepositoryURL(),
	}
}

// statusCode tolerates the nil response go-github returns on transport errors.
func statusCode(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
