package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// BackendHealth is the outcome of the backend check
type BackendHealth struct {
	Provider   string `json:"provider"`
	Status     string `json:"status"` // healthy, error, unchecked
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// FileStatus reports whether a declared file exists locally
type FileStatus struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

type doctorResult struct {
	Success  bool          `json:"success"`
	Manifest string        `json:"manifest"`
	Backend  BackendHealth `json:"backend"`
	Files    []FileStatus  `json:"files"`
}

// ErrUnhealthy is returned by doctor when the backend check fails.
var ErrUnhealthy = errors.New("secret store is not healthy")

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the manifest, backend credentials and local files",
		Long: `Verify that secret-sync is ready to run.

This command checks:
- Manifest discovery, syntax and schema
- Backend credentials and connectivity
- Which declared files exist locally (missing files are created by pull)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadManifest(); err != nil {
				return app.finish(cmd, "", nil, err)
			}

			result := app.diagnose(cmd.Context())
			if app.opts.Format == FormatJSON {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				displayDoctorResult(cmd, result)
			}

			if !result.Success {
				return ErrUnhealthy
			}
			return nil
		},
	}

	return cmd
}

func (a *App) diagnose(ctx context.Context) doctorResult {
	result := doctorResult{
		Manifest: a.Config.Path,
		Backend:  a.checkBackend(ctx),
	}
	result.Success = result.Backend.Status == "healthy"

	workingDir, err := a.Config.WorkingDir()
	if err != nil {
		a.Config.Logger.Warn("Cannot check local files: %v", err)
		return result
	}
	for _, entry := range a.Config.Manifest.Entries() {
		_, statErr := os.Stat(entry.ResolvePath(workingDir))
		result.Files = append(result.Files, FileStatus{Name: entry.Name, Path: entry.Path, Exists: statErr == nil})
	}
	return result
}

func (a *App) checkBackend(ctx context.Context) BackendHealth {
	provider := a.provider()
	health := BackendHealth{Provider: provider}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	// Validation talks to the backend directly; it is not a sync call.
	store, err := a.Registry.Create(ctx, a.Config.Manifest, a.Config.Logger)
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
		health.Suggestion = dserrors.Suggestion(provider, err)
		return health
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	validator, ok := store.(secretstore.Validator)
	if !ok {
		health.Status = "unchecked"
		a.Config.Logger.Debug("Backend %s has no credential check", provider)
		return health
	}

	if err := validator.Validate(ctx); err != nil {
		health.Status = "error"
		health.Error = err.Error()
		health.Suggestion = dserrors.Suggestion(provider, err)
		return health
	}

	health.Status = "healthy"
	return health
}

func displayDoctorResult(cmd *cobra.Command, result doctorResult) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Manifest: %s\n\n", result.Manifest)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "BACKEND\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-------\t------\t-------\n")

	status := result.Backend.Status
	message := "Backend is ready"
	switch status {
	case "healthy":
		status = "✓ " + status
	case "error":
		status = "✗ " + status
		message = result.Backend.Error
	default:
		status = "? " + status
		message = "No credential check available"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", result.Backend.Provider, status, message)
	_ = w.Flush()

	if result.Backend.Suggestion != "" {
		_, _ = fmt.Fprintf(out, "\nSuggestion: %s\n", result.Backend.Suggestion)
	}

	if len(result.Files) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "FILE\tPATH\tLOCAL\n")
		_, _ = fmt.Fprintf(w, "----\t----\t-----\n")
		for _, f := range result.Files {
			local := "missing"
			if f.Exists {
				local = "present"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Path, local)
		}
		_ = w.Flush()
	}

	if result.Success {
		_, _ = fmt.Fprintln(out, "\n✓ All systems operational!")
	}
}
