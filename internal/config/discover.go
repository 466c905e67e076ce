package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	dserrors "github.com/systmms/secretsync/internal/errors"
)

// ErrManifestNotFound is wrapped by errors reporting that no manifest
// exists where one was looked for.
var ErrManifestNotFound = errors.New("manifest not found")

// Discover looks for a manifest in startDir and then in each parent
// directory, returning the first match. Within one directory FileNames
// decides the priority.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to determine current directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err != nil {
				continue
			}
			if info.IsDir() {
				return "", dserrors.ConfigError{
					Path:    candidate,
					Message: fmt.Sprintf("expected %s to be a file but got a directory", name),
				}
			}
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", dserrors.ConfigError{
				Path:       startDir,
				Message:    "could not find a manifest in any parent directory",
				Suggestion: fmt.Sprintf("Create %s next to your secret files or pass --config", FileNames[0]),
				Err:        ErrManifestNotFound,
			}
		}
		dir = parent
	}
}
