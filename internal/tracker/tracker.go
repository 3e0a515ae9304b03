// Package tracker mirrors GitHub issues assigned to a set of users into a
// single tracking repository.
//
// A run has three parts. FetchAssigned searches for the open issues
// assigned to every configured user. FetchMirrors lists the tracking issues
// already present in the tracking repository. Sync reconciles the two: it
// creates a tracking issue for every assigned issue without one, and closes
// open tracking issues whose original issue is closed and no longer
// assigned. Everything runs sequentially and every network operation is
// isolated: a failure is logged and the run moves on.
package tracker

import (
	"context"

	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

const (
	// MaxSearchResults is the GitHub search API's hard ceiling on results.
	MaxSearchResults = 1000
	// MaxPageSize is the largest per_page the issue list endpoint honours.
	MaxPageSize = 100
)

// IssueService is the subset of the GitHub API the tracker needs.
type IssueService interface {
	SearchIssues(ctx context.Context, query string, perPage int) ([]models.UpstreamIssue, error)
	ListIssues(ctx context.Context, repo models.Repository, label string, page, perPage int) ([]models.TrackingIssue, error)
	GetIssue(ctx context.Context, ref models.IssueRef) (models.UpstreamIssue, error)
	CreateIssue(ctx context.Context, repo models.Repository, req models.NewIssue) (int, error)
	CloseIssue(ctx context.Context, repo models.Repository, number int) error
	CreateComment(ctx context.Context, repo models.Repository, number int, body string) error
	RepositoryAPIURL(repo models.Repository) string
}

// Options configures a Tracker.
type Options struct {
	// Repository is the tracking repository.
	Repository models.Repository
	// Users whose assigned issues are mirrored. At least one is required
	// for FetchAssigned.
	Users []string
	// Orgs optionally restricts the search to issues owned by any of them.
	Orgs []string
	// PerPage and PageLimit bound both the search and the mirror scan.
	PerPage   int
	PageLimit int
	// Label marks tracking issues.
	Label string
	// DryRun reports decisions without creating or closing anything.
	DryRun bool
	// CloseOnPartialFetch lets the reverse pass close tracking issues even
	// when a user's search failed during the same run.
	CloseOnPartialFetch bool
}

// Tracker reconciles assigned issues with their tracking issues.
type Tracker struct {
	svc  IssueService
	opts Options
}

// New returns a Tracker that talks to GitHub through svc.
func New(svc IssueService, opts Options) *Tracker {
	return &Tracker{svc: svc, opts: opts}
}

// Run performs a complete reconciliation: fetch, index, sync. The returned
// error is non-nil only when ctx is cancelled; per-item failures are
// reported in the Result.
func (t *Tracker) Run(ctx context.Context) (*Result, error) {
	logging.Info("starting issue sync",
		"repository", t.opts.Repository.String(),
		"users", t.opts.Users,
		"orgs", t.opts.Orgs,
		"per_page", t.opts.PerPage,
		"page_limit", t.opts.PageLimit,
		"dry_run", t.opts.DryRun)

	assigned := t.FetchAssigned(ctx)
	logging.Info("found assigned issues across organizations", "count", len(assigned.Issues))

	index := t.FetchMirrors(ctx)
	logging.Info("found existing tracking issues in this repo", "count", index.Len())

	if err := ctx.Err(); err != nil {
		return &Result{DryRun: t.opts.DryRun}, err
	}

	result, err := t.Sync(ctx, assigned, index)
	if err != nil {
		return result, err
	}

	logging.Info("issue sync completed",
		"created", result.Count(ActionCreated),
		"closed", result.Count(ActionClosed),
		"failed", result.Count(ActionFailed))
	return result, nil
}
