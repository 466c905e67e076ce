package secretstores

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"

	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// keyringProbeKey is looked up by Validate; it is never written.
const keyringProbeKey = "secret-sync::probe"

// KeyringStore stores secrets in the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
type KeyringStore struct {
	service string
	logger  *logging.Logger
}

// NewKeyringStore creates the keyring backend. Entries are grouped under
// cfg.Service.
func NewKeyringStore(cfg config.KeyringConfig, logger *logging.Logger) *KeyringStore {
	service := cfg.Service
	if service == "" {
		service = config.DefaultKeyringService
	}
	return &KeyringStore{service: service, logger: logger}
}

// Get reads the named entry
func (s *KeyringStore) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	if err := ctx.Err(); err != nil {
		return secretstore.Secret{}, err
	}

	val, err := keyring.Get(s.service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return secretstore.Secret{}, &secretstore.NotFoundError{Backend: config.ProviderKeyring, Name: name}
		}
		return secretstore.Secret{}, &secretstore.BackendError{Backend: config.ProviderKeyring, Op: "get", Name: name, Err: err}
	}
	return secretstore.Text(val), nil
}

// Upsert writes the entry. Keyring entries carry no metadata and only text,
// so Set covers both create and update.
func (s *KeyringStore) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if value.IsBinary() {
		return &secretstore.BackendError{Backend: config.ProviderKeyring, Op: "set", Name: name, Err: ErrBinaryUnsupported}
	}
	if !metadata.IsEmpty() {
		s.logger.Debug("Keyring backend does not support metadata, ignoring it for %s", name)
	}

	if err := keyring.Set(s.service, name, value.Text()); err != nil {
		return &secretstore.BackendError{Backend: config.ProviderKeyring, Op: "set", Name: name, Err: err}
	}
	return nil
}

// Validate checks that the keyring can be reached
func (s *KeyringStore) Validate(ctx context.Context) error {
	_, err := keyring.Get(s.service, keyringProbeKey)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return &secretstore.BackendError{Backend: config.ProviderKeyring, Op: "validate", Name: keyringProbeKey, Err: err}
}

var (
	_ secretstore.SecretStore = (*KeyringStore)(nil)
	_ secretstore.Validator   = (*KeyringStore)(nil)
)
