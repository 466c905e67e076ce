package secretstore

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that the requested secret does not exist.
type NotFoundError struct {
	// Backend is the backend type that reported the missing secret.
	Backend string

	// Name is the secret that could not be found.
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("secret %q not found", e.Name)
	}
	return fmt.Sprintf("secret %q not found in %s", e.Name, e.Backend)
}

// AlreadyExistsError is returned by a backend's create step when the secret
// already exists. Upsert consumes it to switch to the update step.
type AlreadyExistsError struct {
	Backend string
	Name    string
}

// Error implements the error interface.
func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("secret %q already exists in %s", e.Name, e.Backend)
}

// BackendError wraps a transport or API failure with the operation and
// secret it happened on.
type BackendError struct {
	// Backend is the backend type, e.g. "aws" or "gcp".
	Backend string

	// Op is the failed operation: "get", "create" or "update".
	Op string

	// Name is the secret being operated on.
	Name string

	// Err is the underlying SDK error.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s %s secret %q failed", e.Backend, e.Op, e.Name)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// IsAlreadyExists reports whether err is or wraps an *AlreadyExistsError.
func IsAlreadyExists(err error) bool {
	var exists *AlreadyExistsError
	return errors.As(err, &exists)
}
