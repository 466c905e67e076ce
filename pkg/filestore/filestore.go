// Package filestore defines the file capability the sync engine reads secret
// files from and writes them to.
package filestore

import (
	"context"
	"errors"
	"fmt"
)

// FileStore reads and writes secret files.
type FileStore interface {
	// Read returns the content of the file at path.
	//
	// Returns *NotFoundError if the file does not exist and *IOError for any
	// other failure. The returned slice belongs to the caller.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write stores data at path, creating the parent directory tree first.
	//
	// Directories may be left behind when the write itself fails; a retry
	// must tolerate them. data is wiped by the caller once Write returns.
	Write(ctx context.Context, path string, data []byte) error
}

// NotFoundError indicates that a secret file does not exist.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot push secret, file does not exist: %s", e.Path)
}

// IOError wraps a file system failure with the operation and path.
type IOError struct {
	// Op describes the failed step, e.g. "read secret file".
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to %s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
