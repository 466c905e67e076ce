package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/secretsync/internal/syncer"
)

type quickOptions struct {
	path   string
	secret string
}

// NewQuickPullCommand creates the quick-pull command
func NewQuickPullCommand(app *App) *cobra.Command {
	var opts quickOptions

	cmd := &cobra.Command{
		Use:   "quick-pull",
		Short: "Pull one secret into a file without a manifest",
		Long: `Write a single secret to a file. A manifest is not required but its backend
settings are used when one is given with --config or found by discovery.
A relative --path is resolved against the current directory.`,
		Example: `  secret-sync quick-pull --path .env --secret myapp/dotenv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runQuick(cmd, pullDirection, opts)
		},
	}
	addQuickFlags(cmd, &opts, "File to write the secret to")

	return cmd
}

// NewQuickPushCommand creates the quick-push command
func NewQuickPushCommand(app *App) *cobra.Command {
	var opts quickOptions

	cmd := &cobra.Command{
		Use:   "quick-push",
		Short: "Push one file to a secret without a manifest",
		Long: `Store a single file's contents as a secret. A manifest is not required but
its backend settings are used when one is given with --config or found by
discovery. A relative --path is resolved against the current directory.`,
		Example: `  secret-sync quick-push --path .env --secret myapp/dotenv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runQuick(cmd, pushDirection, opts)
		},
	}
	addQuickFlags(cmd, &opts, "File to read the secret from")

	return cmd
}

func addQuickFlags(cmd *cobra.Command, opts *quickOptions, pathUsage string) {
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", pathUsage)
	cmd.Flags().StringVarP(&opts.secret, "secret", "s", "", "Name of the secret")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("secret")
}

func (a *App) runQuick(cmd *cobra.Command, dir direction, opts quickOptions) error {
	count, err := a.syncQuick(cmd.Context(), dir, opts)
	return a.finish(cmd,
		fmt.Sprintf("successfully %s %d secret file(s)", dir.verb, count),
		syncResult{Success: true, Count: count},
		err)
}

func (a *App) syncQuick(ctx context.Context, dir direction, opts quickOptions) (int, error) {
	if err := a.loadOptionalManifest(); err != nil {
		return 0, err
	}

	workingDir, err := a.Getwd()
	if err != nil {
		return 0, fmt.Errorf("failed to determine current directory: %w", err)
	}

	entry := syncer.Entry{Path: opts.path, SecretName: opts.secret}
	return a.syncEntries(ctx, dir, workingDir, []syncer.Entry{entry})
}
