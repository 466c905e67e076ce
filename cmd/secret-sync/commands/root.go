package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/internal/logging"
)

// EnvPrefix prefixes the environment variables that set global flags,
// e.g. SECRET_SYNC_FORMAT=json.
const EnvPrefix = "SECRET_SYNC"

// NewRootCommand creates the secret-sync command tree.
func NewRootCommand(app *App, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "secret-sync",
		Short: "Synchronize local secret files with a secret store",
		Long: `secret-sync keeps local secret files (.env files, certificates, keys) in
sync with a remote secret store.

Files are declared in secret-sync.toml (or .yaml/.yml/.json), searched for in
the current directory and its parents. 'pull' writes each declared file from
its secret, 'push' stores each file's contents as its secret.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.initOptions(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Manifest path (default: nearest secret-sync.toml/.yaml/.yml/.json)")
	flags.StringP("format", "f", FormatHuman, "Output format: human or json")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("profile", "", "Override the AWS profile")
	flags.StringP("region", "r", "", "Override the AWS region")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file after pull/push")

	rootCmd.AddCommand(
		NewPullCommand(app),
		NewPushCommand(app),
		NewQuickPullCommand(app),
		NewQuickPushCommand(app),
		NewListCommand(app),
		NewDoctorCommand(app),
		NewBackendsCommand(app),
		NewCompletionCommand(),
	)

	return rootCmd
}

// initOptions merges flags, SECRET_SYNC_* variables and defaults through
// viper and sets up the logger.
func (a *App) initOptions(cmd *cobra.Command) error {
	v := a.viper
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	a.opts = globalOptions{
		ConfigPath:  v.GetString("config"),
		Format:      strings.ToLower(v.GetString("format")),
		NoColor:     v.GetBool("no-color"),
		Debug:       v.GetBool("debug"),
		Profile:     v.GetString("profile"),
		Region:      v.GetString("region"),
		MetricsFile: v.GetString("metrics-file"),
	}

	if a.opts.Format != FormatHuman && a.opts.Format != FormatJSON {
		return dserrors.UserError{
			Message:    fmt.Sprintf("Unknown output format %q", a.opts.Format),
			Suggestion: "Use --format human or --format json",
		}
	}

	a.Config.Logger = logging.NewWithWriter(cmd.ErrOrStderr(), a.opts.Debug, a.opts.NoColor)
	return nil
}
