package tracker

import (
	"context"
	"strings"

	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

// FetchResult holds the open issues assigned to the configured users.
type FetchResult struct {
	Issues []models.UpstreamIssue
	// FailedUsers lists users whose search failed; their issues are
	// missing from Issues.
	FailedUsers []string
}

// Partial reports whether at least one user's search failed.
func (r FetchResult) Partial() bool {
	return len(r.FailedUsers) > 0
}

// BuildSearchQuery returns the search query for the open issues assigned to
// user, restricted to any of orgs when given.
func BuildSearchQuery(user string, orgs []string) string {
	parts := []string{"is:issue", "is:open", "assignee:" + user}
	for _, org := range orgs {
		parts = append(parts, "org:"+org)
	}
	return strings.Join(parts, " ")
}

// searchLimit is the per_page sent with every search request.
func (t *Tracker) searchLimit() int {
	return min(t.opts.PerPage*t.opts.PageLimit, MaxSearchResults)
}

// FetchAssigned searches, one user at a time, for the open issues assigned
// to the configured users. Results are deduplicated by issue ID and issues
// of the tracking repository itself are dropped. A failed search is logged
// and recorded in FailedUsers; it never aborts the fetch.
func (t *Tracker) FetchAssigned(ctx context.Context) FetchResult {
	var (
		result FetchResult
		all    []models.UpstreamIssue
	)

	limit := t.searchLimit()
	for _, user := range t.opts.Users {
		if ctx.Err() != nil {
			result.FailedUsers = append(result.FailedUsers, user)
			continue
		}

		logging.Info("fetching issues for user", "user", user)
		query := BuildSearchQuery(user, t.opts.Orgs)

		issues, err := t.svc.SearchIssues(ctx, query, limit)
		if err != nil {
			logging.Warn("error searching issues", "user", user, "query", query, "error", err)
			result.FailedUsers = append(result.FailedUsers, user)
			continue
		}

		logging.Debug("search returned issues", "user", user, "count", len(issues))
		all = append(all, issues...)
	}

	selfURL := t.svc.RepositoryAPIURL(t.opts.Repository)
	for _, issue := range dedupeByID(all) {
		if issue.RepositoryURL == selfURL {
			logging.Debug("skipping issue of the tracking repository", "url", issue.URL)
			continue
		}
		result.Issues = append(result.Issues, issue)
	}

	return result
}

// dedupeByID keeps one issue per ID. The position of the first occurrence
// is kept, the value of the last one wins.
func dedupeByID(issues []models.UpstreamIssue) []models.UpstreamIssue {
	position := make(map[int64]int, len(issues))
	unique := make([]models.UpstreamIssue, 0, len(issues))
	for _, issue := range issues {
		if i, seen := position[issue.ID]; seen {
			unique[i] = issue
			continue
		}
		position[issue.ID] = len(unique)
		unique = append(unique, issue)
	}
	return unique
}
