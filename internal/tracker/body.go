package tracker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

const (
	// NoDescription replaces the body of upstream issues that have none.
	NoDescription = "No description provided."
	// CloseComment is posted on a tracking issue when it is closed.
	CloseComment = "Closing this tracking issue as the original issue has been closed."
)

var (
	// backReferencePattern finds the original issue URL in a tracking
	// issue body. The URL ends at whitespace or a closing parenthesis.
	backReferencePattern = regexp.MustCompile(`Original Issue:(?:\*\*)?[ \t]*(https?://[^\s)]+)`)

	issueURLPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+)/issues/(\d+)`)

	repositoryAPIPattern = regexp.MustCompile(`/repos/([^/]+/[^/]+)`)
)

// RepositoryName turns a repository API URL such as
// https://api.github.com/repos/owner/repo into "owner/repo". Unrecognised
// URLs are returned unchanged.
func RepositoryName(repositoryURL string) string {
	if matches := repositoryAPIPattern.FindStringSubmatch(repositoryURL); matches != nil {
		return matches[1]
	}
	return repositoryURL
}

// TrackingTitle is the title of the tracking issue for issue.
func TrackingTitle(issue models.UpstreamIssue) string {
	return fmt.Sprintf("[%s] %s", RepositoryName(issue.RepositoryURL), issue.Title)
}

// TrackingBody renders the tracking issue body for issue. The first line
// carries the back-reference read by ExtractOriginalURL.
func TrackingBody(issue models.UpstreamIssue) string {
	body := issue.Body
	if !issue.HasBody() {
		body = NoDescription
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Original Issue:** %s\n\n", issue.URL)
	fmt.Fprintf(&b, "**Repository:** %s\n", RepositoryName(issue.RepositoryURL))
	fmt.Fprintf(&b, "**State:** %s\n", issue.State)
	fmt.Fprintf(&b, "**Created:** %s\n", formatTime(issue.CreatedAt))
	fmt.Fprintf(&b, "**Updated:** %s\n\n", formatTime(issue.UpdatedAt))
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// NewTrackingIssue builds the create request for the tracking issue of issue.
func NewTrackingIssue(issue models.UpstreamIssue, label string) models.NewIssue {
	return models.NewIssue{
		Title:  TrackingTitle(issue),
		Body:   TrackingBody(issue),
		Labels: []string{label},
	}
}

// ExtractOriginalURL returns the back-reference embedded in a tracking
// issue body.
func ExtractOriginalURL(body string) (string, bool) {
	matches := backReferencePattern.FindStringSubmatch(body)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// ParseIssueURL splits an issue HTML URL into owner, repository and number.
func ParseIssueURL(issueURL string) (models.IssueRef, error) {
	matches := issueURLPattern.FindStringSubmatch(issueURL)
	if matches == nil {
		return models.IssueRef{}, fmt.Errorf("not an issue url: %q", issueURL)
	}

	number, err := strconv.Atoi(matches[3])
	if err != nil || number <= 0 {
		return models.IssueRef{}, fmt.Errorf("invalid issue number in %q", issueURL)
	}

	return models.IssueRef{Owner: matches[1], Repo: matches[2], Number: number}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}
