package tracker

import (
	"context"

	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

// MirrorIndex holds the tracking issues of a run, keyed by the original
// issue URL embedded in their bodies.
type MirrorIndex struct {
	issues []models.TrackingIssue
	byURL  map[string]models.TrackingIssue
}

// NewMirrorIndex indexes issues by back-reference. When two tracking issues
// point at the same URL the first one wins. Issues without a back-reference
// are kept in the list but cannot be looked up.
func NewMirrorIndex(issues []models.TrackingIssue) *MirrorIndex {
	m := &MirrorIndex{
		byURL: make(map[string]models.TrackingIssue, len(issues)),
	}
	for _, issue := range issues {
		m.Add(issue)
	}
	return m
}

// Add appends issue to the index.
func (m *MirrorIndex) Add(issue models.TrackingIssue) {
	m.issues = append(m.issues, issue)

	originalURL, ok := ExtractOriginalURL(issue.Body)
	if !ok {
		return
	}
	if _, exists := m.byURL[originalURL]; exists {
		logging.Debug("duplicate tracking issue", "url", originalURL, "issue_number", issue.Number)
		return
	}
	m.byURL[originalURL] = issue
}

// Lookup returns the tracking issue, in any state, for an original URL.
func (m *MirrorIndex) Lookup(originalURL string) (models.TrackingIssue, bool) {
	issue, ok := m.byURL[originalURL]
	return issue, ok
}

// Issues returns every indexed tracking issue in fetch order.
func (m *MirrorIndex) Issues() []models.TrackingIssue {
	return m.issues
}

// Len returns the number of tracking issues.
func (m *MirrorIndex) Len() int {
	return len(m.issues)
}

// IndexStats summarises a MirrorIndex.
type IndexStats struct {
	Open     int
	Closed   int
	Unlinked int
}

// Stats counts open, closed and unlinked tracking issues.
func (m *MirrorIndex) Stats() IndexStats {
	var s IndexStats
	for _, issue := range m.issues {
		if issue.IsOpen() {
			s.Open++
		} else {
			s.Closed++
		}
		if _, ok := ExtractOriginalURL(issue.Body); !ok {
			s.Unlinked++
		}
	}
	return s
}

// pageSize is the per_page sent when listing tracking issues.
func (t *Tracker) pageSize() int {
	return min(t.opts.PerPage, MaxPageSize)
}

// FetchMirrors lists the tracking issues of the tracking repository, in any
// state, one page at a time. It stops at an empty or short page, or after
// PageLimit pages. A failed page ends the scan; the pages fetched so far are
// still returned.
func (t *Tracker) FetchMirrors(ctx context.Context) *MirrorIndex {
	var all []models.TrackingIssue

	size := t.pageSize()
	for page := 1; page <= t.opts.PageLimit; page++ {
		issues, err := t.svc.ListIssues(ctx, t.opts.Repository, t.opts.Label, page, size)
		if err != nil {
			logging.Warn("error fetching tracking issues", "page", page, "error", err)
			break
		}

		all = append(all, issues...)
		if len(issues) < size {
			break
		}
	}

	return NewMirrorIndex(all)
}
