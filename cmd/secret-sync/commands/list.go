package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/secretsync/internal/syncer"
)

type listedFile struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Secret string `json:"secret"`
}

type listResult struct {
	Success  bool         `json:"success"`
	Manifest string       `json:"manifest"`
	Files    []listedFile `json:"files"`
}

// NewListCommand creates the list command
func NewListCommand(app *App) *cobra.Command {
	var filter syncer.TargetFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the files declared in the manifest",
		Long: `List the declared files in manifest order with their paths and secret
names. --file and --glob select entries the same way as pull and push.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.listFiles(filter)
			if err != nil || app.opts.Format == FormatJSON {
				return app.finish(cmd, "", result, err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "NAME\tPATH\tSECRET\n")
			_, _ = fmt.Fprintf(w, "----\t----\t------\n")
			for _, f := range result.Files {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Path, f.Secret)
			}
			return w.Flush()
		},
	}
	addFilterFlags(cmd, &filter)

	return cmd
}

func (a *App) listFiles(filter syncer.TargetFilter) (listResult, error) {
	if err := a.loadManifest(); err != nil {
		return listResult{}, err
	}

	all := a.Config.Manifest.Entries()
	selected, err := syncer.Select(all, filter)
	if err != nil {
		return listResult{}, err
	}
	if err := syncer.CheckSelection(len(all), len(selected), a.Config.Path); err != nil {
		return listResult{}, err
	}

	result := listResult{Success: true, Manifest: a.Config.Path, Files: make([]listedFile, 0, len(selected))}
	for _, entry := range selected {
		result.Files = append(result.Files, listedFile{Name: entry.Name, Path: entry.Path, Secret: entry.SecretName})
	}
	return result, nil
}
