package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ka-sarthak/track-github-issues/internal/tracker"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// renderSummary prints the actions of a sync that changed or tried to
// change something, followed by the totals.
func renderSummary(w io.Writer, repo models.Repository, result *tracker.Result) {
	title := "Sync summary for " + repo.String()
	if result.DryRun {
		title += " (dry run)"
	}

	t := newTable(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Action", "Tracking Issue", "Original Issue", "Note"})
	for _, a := range result.Actions {
		if a.Kind == tracker.ActionExists || a.Kind == tracker.ActionKept {
			continue
		}
		t.AppendRow(table.Row{colorKind(a.Kind), issueNumber(a.TrackingNumber), a.OriginalURL, a.Reason})
	}
	t.AppendFooter(table.Row{
		"",
		"",
		"Assigned / Tracked",
		fmt.Sprintf("%d / %d", result.Assigned, result.Mirrors),
	})
	t.Render()

	fmt.Fprintf(w, "created: %d  existing: %d  closed: %d  kept open: %d  failed: %d\n",
		result.Count(tracker.ActionCreated),
		result.Count(tracker.ActionExists),
		result.Count(tracker.ActionClosed),
		result.Count(tracker.ActionKept),
		result.Count(tracker.ActionFailed))

	if result.PartialFetch {
		fmt.Fprintln(w, text.FgYellow.Sprint("warning: some searches failed, results may be incomplete"))
	}
}

// renderStatus prints every tracking issue in index.
func renderStatus(w io.Writer, repo models.Repository, login string, index *tracker.MirrorIndex) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Tracking issues in %s (as %s)", repo.String(), login))
	t.AppendHeader(table.Row{"#", "State", "Original Issue"})
	for _, issue := range index.Issues() {
		original, ok := tracker.ExtractOriginalURL(issue.Body)
		if !ok {
			original = text.FgHiBlack.Sprint("not linked")
		}
		t.AppendRow(table.Row{issue.Number, colorState(issue.State), original})
	}
	t.Render()

	stats := index.Stats()
	fmt.Fprintf(w, "open: %d  closed: %d  not linked: %d\n", stats.Open, stats.Closed, stats.Unlinked)
}

func issueNumber(n int) string {
	if n == 0 {
		return "-"
	}
	return "#" + strconv.Itoa(n)
}

func colorKind(kind tracker.ActionKind) string {
	switch kind {
	case tracker.ActionCreated:
		return text.FgGreen.Sprint(string(kind))
	case tracker.ActionClosed:
		return text.FgCyan.Sprint(string(kind))
	case tracker.ActionFailed:
		return text.FgRed.Sprint(string(kind))
	default:
		return string(kind)
	}
}

func colorState(state string) string {
	if state == models.StateOpen {
		return text.FgGreen.Sprint(state)
	}
	return text.FgHiBlack.Sprint(state)
}
