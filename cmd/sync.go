package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ka-sarthak/track-github-issues/internal/config"
	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/internal/tracker"
	"github.com/ka-sarthak/track-github-issues/pkg/models"
)

// syncCmd mirrors assigned issues into the tracking repository.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create and close tracking issues for assigned GitHub issues",
	Long: `Synchronize the issues assigned to the given users with the tracking repository.

For every open issue assigned to any of the users a tracking issue is created in
the tracking repository, unless one already refers to it. Open tracking issues
whose original issue is closed and no longer assigned are closed with a comment.

If the search for any user fails, no tracking issue is closed during that run.
Pass --close-on-partial-fetch to close them anyway.

Example:
  track-issues sync --users alice,bob --orgs acme
  track-issues sync -u alice --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := config.ValidateSyncConfig(cfg); err != nil {
			return err
		}

		ctx := cmd.Context()

		repo, err := newResolver().Resolve(ctx, cfg.GitHub.Repository)
		if err != nil {
			return err
		}

		client, err := newGitHubClient(ctx, cfg.GitHub)
		if err != nil {
			return fmt.Errorf("failed to initialize github client: %w", err)
		}

		result, err := tracker.New(client, trackerOptions(cfg, repo)).Run(ctx)
		if result != nil {
			renderSummary(cmd.OutOrStdout(), repo, result)
		}
		if err != nil {
			return fmt.Errorf("sync interrupted: %w", err)
		}

		if failed := result.Count(tracker.ActionFailed); failed > 0 {
			logging.Warn("some issues could not be synchronized", "failed", failed)
		}
		return nil
	},
}

func init() {
	flags := syncCmd.Flags()
	flags.StringP("users", "u", "", "Comma-separated GitHub usernames whose assigned issues are tracked")
	flags.StringP("orgs", "o", "", "Comma-separated organizations to restrict the search to")
	flags.Bool("dry-run", false, "Report what would change without creating or closing issues")
	flags.Bool("close-on-partial-fetch", false, "Close tracking issues even if a user's search failed")

	bindFlags(flags, map[string]string{
		"users":                  config.KeyUsers,
		"orgs":                   config.KeyOrgs,
		"dry-run":                config.KeyDryRun,
		"close-on-partial-fetch": config.KeyCloseOnPartialFetch,
	})
}

// trackerOptions maps the loaded configuration onto tracker options.
func trackerOptions(cfg *config.Config, repo models.Repository) tracker.Options {
	return tracker.Options{
		Repository:          repo,
		Users:               cfg.Sync.Users,
		Orgs:                cfg.Sync.Orgs,
		PerPage:             cfg.Sync.PerPage,
		PageLimit:           cfg.Sync.PageLimit,
		Label:               cfg.Sync.Label,
		DryRun:              cfg.Sync.DryRun,
		CloseOnPartialFetch: cfg.Sync.CloseOnPartialFetch,
	}
}
