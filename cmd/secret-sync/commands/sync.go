package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/systmms/secretsync/internal/syncer"
	"github.com/systmms/secretsync/pkg/filestore"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// direction is one way of syncing: pull or push
type direction struct {
	name string
	verb string
	run  func(ctx context.Context, store secretstore.SecretStore, files filestore.FileStore, workingDir string, entries []syncer.Entry) error
	// progress describes one completed entry for human output
	progress func(entry syncer.Entry) string
}

var (
	pullDirection = direction{
		name: "pull",
		verb: "pulled",
		run:  syncer.PullMany,
		progress: func(e syncer.Entry) string {
			return fmt.Sprintf("Pulled %s into %s", e.SecretName, e.Path)
		},
	}
	pushDirection = direction{
		name: "push",
		verb: "pushed",
		run:  syncer.PushMany,
		progress: func(e syncer.Entry) string {
			return fmt.Sprintf("Pushed %s to %s", e.Path, e.SecretName)
		},
	}
)

func addFilterFlags(cmd *cobra.Command, filter *syncer.TargetFilter) {
	cmd.Flags().StringArrayVar(&filter.Names, "file", nil, "Only sync the named file (repeatable)")
	cmd.Flags().StringArrayVarP(&filter.Globs, "glob", "g", nil, "Only sync files whose name matches the glob (repeatable)")
}

// NewPullCommand creates the pull command
func NewPullCommand(app *App) *cobra.Command {
	var filter syncer.TargetFilter

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Write secret files from the secret store",
		Long: `Fetch the secret of every declared file and write it to the file's path,
creating missing directories. Files are processed in manifest order and the
run stops at the first failure.

Use --file and --glob to pull a subset; an entry is selected when its name is
listed or matches any glob.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSync(cmd, pullDirection, filter)
		},
	}
	addFilterFlags(cmd, &filter)

	return cmd
}

// NewPushCommand creates the push command
func NewPushCommand(app *App) *cobra.Command {
	var filter syncer.TargetFilter

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Store secret files in the secret store",
		Long: `Read every declared file and store its contents as the file's secret.
Missing secrets are created with the file's metadata; existing secrets only
get a new value. Files are processed in manifest order and the run stops at
the first failure.

Use --file and --glob to push a subset; an entry is selected when its name is
listed or matches any glob.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSync(cmd, pushDirection, filter)
		},
	}
	addFilterFlags(cmd, &filter)

	return cmd
}

func (a *App) runSync(cmd *cobra.Command, dir direction, filter syncer.TargetFilter) error {
	count, err := a.syncManifest(cmd.Context(), dir, filter)
	return a.finish(cmd,
		fmt.Sprintf("successfully %s %d secret file(s)", dir.verb, count),
		syncResult{Success: true, Count: count},
		err)
}

func (a *App) syncManifest(ctx context.Context, dir direction, filter syncer.TargetFilter) (int, error) {
	if err := a.loadManifest(); err != nil {
		return 0, err
	}

	all := a.Config.Manifest.Entries()
	selected, err := syncer.Select(all, filter)
	if err != nil {
		return 0, err
	}
	if err := syncer.CheckSelection(len(all), len(selected), a.Config.Path); err != nil {
		return 0, err
	}

	workingDir, err := a.Config.WorkingDir()
	if err != nil {
		return 0, err
	}

	return a.syncEntries(ctx, dir, workingDir, selected)
}

// syncEntries runs dir over entries against the configured backend and
// returns how many entries completed.
func (a *App) syncEntries(ctx context.Context, dir direction, workingDir string, entries []syncer.Entry) (int, error) {
	started := time.Now()

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		a.recordRun(dir.name, 0, started, err)
		return 0, err
	}
	defer closeStore()

	a.Config.Logger.Debug("Starting %s of %d file(s) in %s", dir.name, len(entries), workingDir)
	err = dir.run(ctx, store, a.fileStore(), workingDir, entries)

	completed := syncer.Completed(entries, err)
	a.recordRun(dir.name, completed, started, err)
	if a.opts.Format == FormatHuman {
		for _, entry := range entries[:completed] {
			a.Config.Logger.Info("%s", dir.progress(entry))
		}
	}
	if err != nil {
		return completed, err
	}
	return len(entries), nil
}
