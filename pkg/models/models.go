// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"time"
)

// Issue states reported by the GitHub API.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// UpstreamIssue is an issue in some other repository that is assigned to
// one of the tracked users. It is a read-only snapshot taken once per run.
type UpstreamIssue struct {
	// ID is the GitHub-wide numeric issue ID
	ID int64

	// URL is the issue's HTML URL (e.g., https://github.com/org/repo/issues/5)
	URL string

	// Title is the issue's title or summary
	Title string

	// Body is the issue's description. Optional: an empty body means the
	// issue has no description.
	Body string

	// State is either StateOpen or StateClosed
	State string

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the issue was last updated
	UpdatedAt time.Time

	// RepositoryURL is the API URL of the owning repository
	// (e.g., https://api.github.com/repos/org/repo)
	RepositoryURL string
}

// HasBody reports whether the issue carries a description.
func (i UpstreamIssue) HasBody() bool {
	return i.Body != ""
}

// TrackingIssue is a mirror issue in the tracking repository. Its body holds
// the back-reference to the upstream issue it represents.
type TrackingIssue struct {
	// Number is the issue number inside the tracking repository
	Number int

	// State is either StateOpen or StateClosed
	State string

	// Body is the full body text, including the back-reference
	Body string
}

// IsOpen reports whether the tracking issue is open.
func (t TrackingIssue) IsOpen() bool {
	return t.State == StateOpen
}

// Repository identifies a GitHub repository by owner and name.
type Repository struct {
	Owner string
	Name  string
}

// String returns the repository in "owner/name" form.
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// IssueRef points at a single issue by owner, repository and number.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// Repository returns the repository the referenced issue lives in.
func (r IssueRef) Repository() Repository {
	return Repository{Owner: r.Owner, Name: r.Repo}
}

// String returns the reference in "owner/repo#number" form.
func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// NewIssue is the payload used to create an issue.
type NewIssue struct {
	Title  string
	Body   string
	Labels []string
}
