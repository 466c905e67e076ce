package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	dserrors "github.com/systmms/secretsync/internal/errors"
)

type syncResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type failureResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// finish reports the outcome of a command. On success text or payload is
// written to stdout depending on --format. On failure the error gets a
// suggestion attached; in JSON mode a failure object is printed as well.
// The error is always returned so the process exits non-zero.
func (a *App) finish(cmd *cobra.Command, text string, payload any, err error) error {
	if err != nil {
		err = dserrors.Explain(a.provider(), err)
		if a.opts.Format == FormatJSON {
			if encErr := writeJSON(cmd, failureResult{Success: false, Error: err.Error()}); encErr != nil {
				a.Config.Logger.Debug("Failed to write JSON output: %v", encErr)
			}
		}
		return err
	}

	if a.opts.Format == FormatJSON {
		return writeJSON(cmd, payload)
	}
	_, werr := fmt.Fprintln(cmd.OutOrStdout(), text)
	return werr
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
