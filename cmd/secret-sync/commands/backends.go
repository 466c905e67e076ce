package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewBackendsCommand creates the backends command
func NewBackendsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the supported secret store backends",
		Long: `Display the backend providers that can be selected with backend.provider
in the manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "PROVIDER\tDESCRIPTION\n")
			_, _ = fmt.Fprintf(w, "--------\t-----------\n")
			for _, provider := range app.Registry.GetSupportedTypes() {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", provider, getBackendDescription(provider))
			}
			return w.Flush()
		},
	}
}

// getBackendDescription returns a description for a backend provider
func getBackendDescription(provider string) string {
	descriptions := map[string]string{
		"aws":      "AWS Secrets Manager (text and binary secrets)",
		"aws-ssm":  "AWS Systems Manager Parameter Store, SecureString parameters",
		"gcp":      "Google Cloud Secret Manager",
		"akeyless": "Akeyless static secrets (text only)",
		"keyring":  "OS keyring (macOS Keychain, Linux Secret Service, Windows Credential Manager)",
	}

	if desc, exists := descriptions[provider]; exists {
		return desc
	}
	return "No description available"
}
