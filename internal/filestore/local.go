// Package filestore implements filestore.FileStore on the local disk.
package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/filestore"
)

const (
	// DirMode is used for directories created for secret files.
	DirMode os.FileMode = 0700
	// FileMode is used for secret files that did not exist before.
	FileMode os.FileMode = 0600
)

// Local is a FileStore backed by the host file system.
type Local struct {
	logger *logging.Logger
}

// NewLocal creates a local file store. logger may be nil.
func NewLocal(logger *logging.Logger) *Local {
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &Local{logger: logger}
}

// Read returns the content of the file at path.
func (l *Local) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &filestore.NotFoundError{Path: path}
		}
		return nil, &filestore.IOError{Op: "inspect secret file", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &filestore.IOError{Op: "read secret file", Path: path, Err: errors.New("path is a directory")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &filestore.IOError{Op: "read secret file", Path: path, Err: err}
	}

	l.logger.Debug("Read %d bytes from %s", len(data), path)
	return data, nil
}

// Write stores data at path, creating missing parent directories.
//
// A bare relative name such as ".env" has the current directory as its
// parent and is written there. Only an empty path or a root path has no
// parent and is rejected.
func (l *Local) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parent, err := parentDir(path)
	if err != nil {
		return &filestore.IOError{Op: "determine parent directory of", Path: path, Err: err}
	}

	if _, err := os.Stat(parent); errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("Creating parent directory %s for %s", parent, path)
		// MkdirAll succeeds when another run already created the tree.
		if err := os.MkdirAll(parent, DirMode); err != nil {
			return &filestore.IOError{Op: "create parent directory for secret file", Path: parent, Err: err}
		}
	}

	if err := os.WriteFile(path, data, FileMode); err != nil {
		return &filestore.IOError{Op: "write secret to file", Path: path, Err: err}
	}

	l.logger.Debug("Wrote %d bytes to %s", len(data), path)
	return nil
}

// parentDir returns the directory containing path. Paths that name a root
// or have no directory component are rejected.
func parentDir(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}

	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return "", errors.New("file parent path does not exist")
	}

	return filepath.Dir(clean), nil
}

var _ filestore.FileStore = (*Local)(nil)
