// Package repository resolves which GitHub repository acts as the tracking
// repository for a run.
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

// EnvRepository is set by GitHub Actions to "owner/name".
const EnvRepository = "GITHUB_REPOSITORY"

// ErrUnresolved is returned when neither the environment nor the git remote
// identifies the tracking repository.
var ErrUnresolved = errors.New("could not determine repository information")

// remotePattern matches both https://host/owner/repo(.git) and
// git@host:owner/repo(.git) remote URLs.
var remotePattern = regexp.MustCompile(`^(?:[a-z+]+://)?(?:[^@/]+@)?([^/:]+)[:/]([^/]+)/([^/]+?)(?:\.git)?/?$`)

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Output runs name with args and returns stdout.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Resolver determines the tracking repository.
type Resolver struct {
	// Getenv looks up environment variables; defaults to os.Getenv.
	Getenv func(string) string
	// Runner executes git; defaults to ExecRunner.
	Runner CommandRunner
	// Remote is the git remote to inspect; defaults to "origin".
	Remote string
}

// NewResolver returns a Resolver backed by the process environment and git.
func NewResolver() *Resolver {
	return &Resolver{
		Getenv: os.Getenv,
		Runner: ExecRunner{},
		Remote: "origin",
	}
}

// Resolve returns explicit when set, otherwise the repository named by
// GITHUB_REPOSITORY, otherwise the one the git remote points at.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (models.Repository, error) {
	if explicit != "" {
		repo, err := ParseFullName(explicit)
		if err != nil {
			return models.Repository{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
		}
		return repo, nil
	}

	if value := r.Getenv(EnvRepository); value != "" {
		repo, err := ParseFullName(value)
		if err == nil {
			logging.Debug("repository resolved from environment", "repository", repo.String())
			return repo, nil
		}
		logging.Warn("ignoring malformed repository environment variable",
			"variable", EnvRepository,
			"value", value)
	}

	out, err := r.Runner.Output(ctx, "git", "remote", "get-url", r.Remote)
	if err != nil {
		logging.Error("failed to read git remote", "remote", r.Remote, "error", err)
		return models.Repository{}, fmt.Errorf("%w: git remote %s: %v", ErrUnresolved, r.Remote, err)
	}

	repo, err := ParseRemoteURL(strings.TrimSpace(string(out)))
	if err != nil {
		return models.Repository{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}

	logging.Debug("repository resolved from git remote", "repository", repo.String())
	return repo, nil
}

// ParseFullName parses "owner/name".
func ParseFullName(value string) (models.Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return models.Repository{}, fmt.Errorf("invalid repository format: %s, expected format: owner/repo", value)
	}
	return models.Repository{Owner: owner, Name: name}, nil
}

// ParseRemoteURL extracts owner and name from an HTTPS or SSH git remote URL.
func ParseRemoteURL(remote string) (models.Repository, error) {
	matches := remotePattern.FindStringSubmatch(remote)
	if matches == nil {
		return models.Repository{}, fmt.Errorf("unrecognized git remote url: %q", remote)
	}
	return models.Repository{Owner: matches[2], Name: matches[3]}, nil
}
