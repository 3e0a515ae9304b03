package tracker

import (
	"context"

	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

// ActionKind classifies what the sync did with one issue.
type ActionKind string

const (
	// ActionCreated: a tracking issue was created.
	ActionCreated ActionKind = "created"
	// ActionExists: the assigned issue already has a tracking issue.
	ActionExists ActionKind = "exists"
	// ActionClosed: a tracking issue was closed.
	ActionClosed ActionKind = "closed"
	// ActionKept: an open tracking issue was checked and left open.
	ActionKept ActionKind = "kept"
	// ActionFailed: a create or close request failed.
	ActionFailed ActionKind = "failed"
)

// Action records one decision of a sync.
type Action struct {
	Kind ActionKind
	// OriginalURL is the upstream issue URL the decision concerns.
	OriginalURL string
	// TrackingNumber is the tracking issue number, zero when none exists.
	TrackingNumber int
	// Reason is a short human readable explanation.
	Reason string
}

// Result is the outcome of a sync.
type Result struct {
	// Assigned and Mirrors are the sizes of the two inputs.
	Assigned int
	Mirrors  int
	// PartialFetch is set when a user's search failed.
	PartialFetch bool
	DryRun       bool
	Actions      []Action
}

// Count returns the number of actions of the given kind.
func (r *Result) Count(kind ActionKind) int {
	n := 0
	for _, a := range r.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Result) record(a Action) {
	r.Actions = append(r.Actions, a)
}

// ProcessedSet holds the URLs of the issues seen in the forward pass of a
// single run.
type ProcessedSet map[string]struct{}

// Add inserts url.
func (s ProcessedSet) Add(url string) {
	s[url] = struct{}{}
}

// Has reports whether url was added.
func (s ProcessedSet) Has(url string) bool {
	_, ok := s[url]
	return ok
}

// Sync reconciles assigned issues with the tracking issues in index. The
// forward pass makes sure every assigned issue has a tracking issue; the
// reverse pass closes open tracking issues whose original is closed and no
// longer assigned. The error is non-nil only when ctx is cancelled.
func (t *Tracker) Sync(ctx context.Context, assigned FetchResult, index *MirrorIndex) (*Result, error) {
	result := &Result{
		Assigned:     len(assigned.Issues),
		Mirrors:      index.Len(),
		PartialFetch: assigned.Partial(),
		DryRun:       t.opts.DryRun,
	}

	processed, err := t.forwardPass(ctx, assigned.Issues, index, result)
	if err != nil {
		return result, err
	}

	if assigned.Partial() && !t.opts.CloseOnPartialFetch {
		logging.Warn("skipping close checks because some searches failed",
			"failed_users", assigned.FailedUsers)
		return result, nil
	}

	logging.Info("checking for tracking issues to close")
	return result, t.reversePass(ctx, index, processed, result)
}

func (t *Tracker) forwardPass(ctx context.Context, issues []models.UpstreamIssue, index *MirrorIndex, result *Result) (ProcessedSet, error) {
	processed := make(ProcessedSet, len(issues))

	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		processed.Add(issue.URL)

		if existing, ok := index.Lookup(issue.URL); ok {
			logging.Info("tracking issue exists", "url", issue.URL, "issue_number", existing.Number)
			result.record(Action{Kind: ActionExists, OriginalURL: issue.URL, TrackingNumber: existing.Number})
			continue
		}

		logging.Info("creating tracking issue", "url", issue.URL, "dry_run", t.opts.DryRun)
		if t.opts.DryRun {
			result.record(Action{Kind: ActionCreated, OriginalURL: issue.URL, Reason: "dry run"})
			continue
		}

		req := NewTrackingIssue(issue, t.opts.Label)
		number, err := t.svc.CreateIssue(ctx, t.opts.Repository, req)
		if err != nil {
			logging.Warn("error creating tracking issue", "url", issue.URL, "error", err)
			result.record(Action{Kind: ActionFailed, OriginalURL: issue.URL, Reason: "create: " + err.Error()})
			continue
		}

		logging.Info("created tracking issue", "url", issue.URL, "issue_number", number)
		index.Add(models.TrackingIssue{Number: number, State: models.StateOpen, Body: req.Body})
		result.record(Action{Kind: ActionCreated, OriginalURL: issue.URL, TrackingNumber: number})
	}

	return processed, nil
}

func (t *Tracker) reversePass(ctx context.Context, index *MirrorIndex, processed ProcessedSet, result *Result) error {
	for _, tracking := range index.Issues() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !tracking.IsOpen() {
			continue
		}

		originalURL, ok := ExtractOriginalURL(tracking.Body)
		if !ok {
			logging.Debug("tracking issue has no back-reference", "issue_number", tracking.Number)
			continue
		}

		// still assigned
		if processed.Has(originalURL) {
			continue
		}

		ref, err := ParseIssueURL(originalURL)
		if err != nil {
			logging.Debug("cannot parse original issue url", "issue_number", tracking.Number, "url", originalURL)
			continue
		}

		original, err := t.svc.GetIssue(ctx, ref)
		if err != nil {
			logging.Warn("error checking original issue", "url", originalURL, "error", err)
			result.record(Action{Kind: ActionKept, OriginalURL: originalURL, TrackingNumber: tracking.Number, Reason: "original not readable"})
			continue
		}
		if original.State != models.StateClosed {
			result.record(Action{Kind: ActionKept, OriginalURL: originalURL, TrackingNumber: tracking.Number, Reason: "original still " + original.State})
			continue
		}

		t.closeTracking(ctx, tracking, originalURL, result)
	}
	return nil
}

// closeTracking closes a tracking issue and then posts CloseComment on it.
func (t *Tracker) closeTracking(ctx context.Context, tracking models.TrackingIssue, originalURL string, result *Result) {
	logging.Info("closing tracking issue, original issue is closed",
		"issue_number", tracking.Number,
		"url", originalURL,
		"dry_run", t.opts.DryRun)

	if t.opts.DryRun {
		result.record(Action{Kind: ActionClosed, OriginalURL: originalURL, TrackingNumber: tracking.Number, Reason: "dry run"})
		return
	}

	if err := t.svc.CloseIssue(ctx, t.opts.Repository, tracking.Number); err != nil {
		logging.Warn("error closing tracking issue", "issue_number", tracking.Number, "error", err)
		result.record(Action{Kind: ActionFailed, OriginalURL: originalURL, TrackingNumber: tracking.Number, Reason: "close: " + err.Error()})
		return
	}

	action := Action{Kind: ActionClosed, OriginalURL: originalURL, TrackingNumber: tracking.Number}
	if err := t.svc.CreateComment(ctx, t.opts.Repository, tracking.Number, CloseComment); err != nil {
		logging.Warn("error commenting on closed tracking issue", "issue_number", tracking.Number, "error", err)
		action.Reason = "comment not posted"
	}
	result.record(action)
}
