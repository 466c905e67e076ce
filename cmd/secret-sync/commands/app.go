package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/systmms/secretsync/internal/config"
	localfs "github.com/systmms/secretsync/internal/filestore"
	"github.com/systmms/secretsync/internal/metrics"
	"github.com/systmms/secretsync/internal/secretstores"
	"github.com/systmms/secretsync/pkg/filestore"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// Output formats accepted by --format.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

// App carries the state shared by all commands of one invocation.
type App struct {
	Config   *config.Config
	Registry *secretstores.Registry
	Metrics  *metrics.Metrics

	// Files overrides the local file store.
	Files filestore.FileStore

	// Getwd returns the directory manifest discovery starts from and quick
	// commands resolve paths against.
	Getwd func() (string, error)

	viper *viper.Viper
	opts  globalOptions
}

// globalOptions are the persistent flags after flag, env and default
// values have been merged by viper.
type globalOptions struct {
	ConfigPath  string
	Format      string
	NoColor     bool
	Debug       bool
	Profile     string
	Region      string
	MetricsFile string
}

// NewApp creates an App using the built-in backends and the local disk.
func NewApp() *App {
	return &App{
		Config:   &config.Config{},
		Registry: secretstores.NewRegistry(),
		Metrics:  metrics.New(),
		Getwd:    os.Getwd,
		viper:    viper.New(),
	}
}

// loadManifest resolves and loads the manifest for commands that need one:
// the --config path when given, otherwise the nearest discovered manifest.
func (a *App) loadManifest() error {
	path := a.opts.ConfigPath
	if path == "" {
		wd, err := a.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine current directory: %w", err)
		}
		path, err = config.Discover(wd)
		if err != nil {
			return err
		}
	}

	a.Config.Path = path
	if err := a.Config.Load(); err != nil {
		return err
	}
	a.Config.Manifest.OverrideAWS(a.opts.Profile, a.opts.Region)
	return nil
}

// loadOptionalManifest is loadManifest for quick commands. A manifest
// given with --config must load; when discovery finds none the defaults
// are used.
func (a *App) loadOptionalManifest() error {
	err := a.loadManifest()
	if err != nil && a.opts.ConfigPath == "" && errors.Is(err, config.ErrManifestNotFound) {
		a.Config.Logger.Debug("No manifest found, using defaults")
		a.Config.Path = ""
		a.Config.UseDefault()
		a.Config.Manifest.OverrideAWS(a.opts.Profile, a.opts.Region)
		return nil
	}
	return err
}

// openStore creates the configured backend, instrumented for metrics. The
// returned close function releases backend connections.
func (a *App) openStore(ctx context.Context) (secretstore.SecretStore, func(), error) {
	manifest := a.Config.Manifest
	store, err := a.Registry.Create(ctx, manifest, a.Config.Logger)
	if err != nil {
		return nil, nil, err
	}

	closeStore := func() {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				a.Config.Logger.Debug("Failed to close %s backend: %v", manifest.Backend.Provider, err)
			}
		}
	}
	return secretstores.Instrument(store, manifest.Backend.Provider, a.Metrics), closeStore, nil
}

func (a *App) fileStore() filestore.FileStore {
	if a.Files != nil {
		return a.Files
	}
	return localfs.NewLocal(a.Config.Logger)
}

// withTimeout bounds a run by the manifest's backend timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.Config.Manifest.Backend.Timeout())
}

// recordRun records a finished run and flushes --metrics-file.
func (a *App) recordRun(operation string, files int, started time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
	}
	a.Metrics.RecordRun(operation, status, files, time.Since(started).Seconds())

	if err := a.Metrics.WriteTextfile(a.opts.MetricsFile); err != nil {
		a.Config.Logger.Warn("%v", err)
	}
}

func (a *App) provider() string {
	if a.Config.Manifest == nil {
		return config.DefaultProvider
	}
	return a.Config.Manifest.Backend.Provider
}
