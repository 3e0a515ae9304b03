package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

var (
	trackingRepo = models.Repository{Owner: "me", Name: "tracker"}
	selfAPIURL   = "https://api.github.com/repos/me/tracker"
	errBoom      = errors.New("boom")
)

// fakeService is an in-memory IssueService. Tracking issues created through
// it are visible to later ListIssues calls, so consecutive runs behave like
// runs against a real repository.
type fakeService struct {
	search       map[string][]models.UpstreamIssue
	searchErr    map[string]error
	searchLimits []int

	tracking  []models.TrackingIssue
	listErr   map[int]error
	listPages []int
	listSizes []int

	originals map[string]models.UpstreamIssue
	getErr    map[string]error
	getCalls  []models.IssueRef

	nextNumber int
	created    []models.NewIssue
	createErr  error

	closed   []int
	closeErr error

	comments   map[int][]string
	commentErr error
}

func newFakeService() *fakeService {
	return &fakeService{
		search:     map[string][]models.UpstreamIssue{},
		searchErr:  map[string]error{},
		listErr:    map[int]error{},
		originals:  map[string]models.UpstreamIssue{},
		getErr:     map[string]error{},
		comments:   map[int][]string{},
		nextNumber: 1000,
	}
}

func (f *fakeService) SearchIssues(_ context.Context, query string, perPage int) ([]models.UpstreamIssue, error) {
	f.searchLimits = append(f.searchLimits, perPage)
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	return f.search[query], nil
}

func (f *fakeService) ListIssues(_ context.Context, repo models.Repository, label string, page, perPage int) ([]models.TrackingIssue, error) {
	f.listPages = append(f.listPages, page)
	f.listSizes = append(f.listSizes, perPage)
	if repo != trackingRepo || label != "tracked-issue" {
		return nil, fmt.Errorf("unexpected list of %s with label %q", repo, label)
	}
	if err := f.listErr[page]; err != nil {
		return nil, err
	}

	start := (page - 1) * perPage
	if start >= len(f.tracking) {
		return []models.TrackingIssue{}, nil
	}
	end := min(start+perPage, len(f.tracking))
	return append([]models.TrackingIssue(nil), f.tracking[start:end]...), nil
}

func (f *fakeService) GetIssue(_ context.Context, ref models.IssueRef) (models.UpstreamIssue, error) {
	f.getCalls = append(f.getCalls, ref)
	if err := f.getErr[ref.String()]; err != nil {
		return models.UpstreamIssue{}, err
	}
	issue, ok := f.originals[ref.String()]
	if !ok {
		return models.UpstreamIssue{}, errors.New("404 Not Found")
	}
	return issue, nil
}

func (f *fakeService) CreateIssue(_ context.Context, repo models.Repository, req models.NewIssue) (int, error) {
	if repo != trackingRepo {
		return 0, fmt.Errorf("unexpected repository %s", repo)
	}
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.nextNumber++
	f.created = append(f.created, req)
	f.tracking = append(f.tracking, models.TrackingIssue{Number: f.nextNumber, State: models.StateOpen, Body: req.Body})
	return f.nextNumber, nil
}

func (f *fakeService) CloseIssue(_ context.Context, _ models.Repository, number int) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closed = append(f.closed, number)
	for i := range f.tracking {
		if f.tracking[i].Number == number {
			f.tracking[i].State = models.StateClosed
		}
	}
	return nil
}

func (f *fakeService) CreateComment(_ context.Context, _ models.Repository, number int, body string) error {
	if f.commentErr != nil {
		return f.commentErr
	}
	f.comments[number] = append(f.comments[number], body)
	return nil
}

func (f *fakeService) RepositoryAPIURL(repo models.Repository) string {
	return "https://api.github.com/repos/" + repo.Owner + "/" + repo.Name
}

// upstream returns an open issue #number of owner/repo with a stable ID.
func upstream(id int64, owner, repo string, number int) models.UpstreamIssue {
	return models.UpstreamIssue{
		ID:            id,
		URL:           fmt.Sprintf("https://github.com/%s/%s/issues/%d", owner, repo, number),
		Title:         fmt.Sprintf("Issue %d", number),
		Body:          "details",
		State:         models.StateOpen,
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		RepositoryURL: fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo),
	}
}

// mirrorOf returns a tracking issue pointing at issue.
func mirrorOf(number int, state string, issue models.UpstreamIssue) models.TrackingIssue {
	return models.TrackingIssue{Number: number, State: state, Body: TrackingBody(issue)}
}

func defaultOptions(users ...string) Options {
	return Options{
		Repository: trackingRepo,
		Users:      users,
		PerPage:    100,
		PageLimit:  10,
		Label:      "tracked-issue",
	}
}
