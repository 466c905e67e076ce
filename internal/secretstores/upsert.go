package secretstores

import (
	"context"
	"errors"

	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// ErrBinaryUnsupported is returned by backends that only hold text.
var ErrBinaryUnsupported = errors.New("backend does not support binary secret values")

// createOrUpdate runs the write protocol shared by all backends.
//
// create must return a *secretstore.AlreadyExistsError when the backend
// reports that the secret exists; update then writes the value alone. Both
// functions return raw backend errors, wrapped here.
func createOrUpdate(ctx context.Context, logger *logging.Logger, backend, name string, create, update func(context.Context) error) error {
	err := create(ctx)
	if err == nil {
		logger.Debug("Created secret %s in %s", name, backend)
		return nil
	}

	if !secretstore.IsAlreadyExists(err) {
		return &secretstore.BackendError{Backend: backend, Op: "create", Name: name, Err: err}
	}

	logger.Debug("Secret %s already exists in %s, updating value", name, backend)
	if err := update(ctx); err != nil {
		return &secretstore.BackendError{Backend: backend, Op: "update", Name: name, Err: err}
	}
	return nil
}
