package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ka-sarthak/track-github-issues/internal/logging"
	"github.com/ka-sarthak/track-github-issues/internal/tracker"
)

// statusCmd lists the tracking issues without changing anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracking issues in the tracking repository",
	Long: `List the issues carrying the tracking label in the tracking repository,
together with the original issue each of them refers to.

This command only reads from GitHub.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
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

		login, err := client.CurrentUser(ctx)
		if err != nil {
			logging.Warn("could not determine authenticated user", "error", err)
			login = "unknown"
		}

		index := tracker.New(client, trackerOptions(cfg, repo)).FetchMirrors(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}

		renderStatus(cmd.OutOrStdout(), repo, login, index)
		return nil
	},
}
