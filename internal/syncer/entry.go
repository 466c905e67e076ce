package syncer

import (
	"path/filepath"

	"github.com/systmms/secretsync/pkg/secretstore"
)

// Entry maps one local file to one secret.
type Entry struct {
	// Name is the key the entry is declared under in the manifest.
	Name string

	// Path of the local file. Relative paths are resolved against the
	// working directory of the run.
	Path string

	// SecretName is the name of the secret in the store.
	SecretName string

	// Metadata is attached to the secret when a push creates it.
	Metadata secretstore.Metadata
}

// ResolvePath returns the entry's path, joined to workingDir when relative.
func (e Entry) ResolvePath(workingDir string) string {
	if filepath.IsAbs(e.Path) {
		return e.Path
	}
	return filepath.Join(workingDir, e.Path)
}

// label identifies the entry in error messages.
func (e Entry) label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Path
}
