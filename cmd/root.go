// Package cmd provides the command-line interface for track-issues.
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ka-sarthak/track-github-issues/internal/config"
	"github.com/ka-sarthak/track-github-issues/internal/github"
	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/internal/repository"
	"github.com/ka-sarthak/track-github-issues/internal/tracker"
)

// Exit codes returned by the process.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeConfig indicates missing or invalid configuration, including
	// an unresolvable tracking repository.
	ExitCodeConfig = 2
)

// issueClient is what the commands need from GitHub.
type issueClient interface {
	tracker.IssueService
	CurrentUser(ctx context.Context) (string, error)
}

var (
	// v holds flags, environment and config file values for one process.
	v = config.New()

	newGitHubClient = func(ctx context.Context, cfg config.GitHubConfig) (issueClient, error) {
		client, err := github.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	newResolver = repository.NewResolver
)

var rootCmd = &cobra.Command{
	Use:   "track-issues",
	Short: "Mirror GitHub issues assigned to you into a tracking repository",
	Long: `track-issues collects the open GitHub issues assigned to a set of users,
optionally limited to some organizations, and mirrors each of them as an issue
in a single tracking repository. Tracking issues are closed once their original
issue is closed and no longer assigned.

The tracking repository is taken from --repository, the GITHUB_REPOSITORY
environment variable, or the "origin" remote of the current git checkout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ReadFile(v, v.GetString("config")); err != nil {
			return err
		}
		logging.SetupLogger(cmd.ErrOrStderr(), logging.ParseLevel(v.GetString(config.KeyLogLevel)))
		return nil
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, config.ErrMissingToken),
		errors.Is(err, config.ErrMissingUsers),
		errors.Is(err, config.ErrInvalidPaging),
		errors.Is(err, repository.ErrUnresolved):
		return ExitCodeConfig
	default:
		return ExitCodeError
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("gh-token", "", "GitHub API token (default from GH_TOKEN or GITHUB_TOKEN)")
	flags.String("domain", config.DefaultDomain, "GitHub domain, set for GitHub Enterprise")
	flags.StringP("repository", "r", "", "Tracking repository as 'owner/repo' (default: detected)")
	flags.Duration("request-timeout", config.DefaultRequestTimeout, "Timeout for a single GitHub API request")
	flags.Int("per-page", config.DefaultPerPage, "Results per page")
	flags.Int("page-limit", config.DefaultPageLimit, "Number of pages to fetch")
	flags.String("label", config.DefaultLabel, "Label that marks tracking issues")

	bindFlags(flags, map[string]string{
		"config":          "config",
		"log-level":       config.KeyLogLevel,
		"gh-token":        config.KeyToken,
		"domain":          config.KeyDomain,
		"repository":      config.KeyRepository,
		"request-timeout": config.KeyRequestTimeout,
		"per-page":        config.KeyPerPage,
		"page-limit":      config.KeyPageLimit,
		"label":           config.KeyLabel,
	})

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

// bindFlags binds each flag name to its configuration key.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// loadConfig reads the merged configuration of this process.
func loadConfig() (*config.Config, error) {
	return config.Load(v)
}
