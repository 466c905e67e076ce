package fakes

import (
	"context"
	"maps"
	"sync"

	"github.com/systmms/secretsync/pkg/secretstore"
)

// StoredSecret is the state of one secret in a FakeSecretStore.
type StoredSecret struct {
	Value    secretstore.Secret
	Metadata secretstore.Metadata
	// Versions counts how many times a value was written.
	Versions int
}

// FakeSecretStore is an in-memory secretstore.SecretStore that follows the
// create-or-update protocol: metadata is only recorded on create.
type FakeSecretStore struct {
	// Backend is reported in NotFoundError. Defaults to "fake".
	Backend string

	// GetErrors and UpsertErrors inject failures per secret name.
	GetErrors    map[string]error
	UpsertErrors map[string]error

	// ValidateErr is returned by Validate.
	ValidateErr error

	mu      sync.Mutex
	secrets map[string]*StoredSecret
	log     *CallLog
}

// NewFakeSecretStore creates an empty store.
func NewFakeSecretStore() *FakeSecretStore {
	return &FakeSecretStore{
		Backend:      "fake",
		GetErrors:    make(map[string]error),
		UpsertErrors: make(map[string]error),
		secrets:      make(map[string]*StoredSecret),
	}
}

// WithCallLog records every call into log.
func (f *FakeSecretStore) WithCallLog(log *CallLog) *FakeSecretStore {
	f.log = log
	return f
}

// Put seeds a secret without recording a call.
func (f *FakeSecretStore) Put(name string, value secretstore.Secret) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[name] = &StoredSecret{Value: cloneSecret(value), Versions: 1}
}

// Stored returns a copy of the named secret's state.
func (f *FakeSecretStore) Stored(name string) (StoredSecret, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.secrets[name]
	if !ok {
		return StoredSecret{}, false
	}
	return StoredSecret{
		Value:    cloneSecret(s.Value),
		Metadata: cloneMetadata(s.Metadata),
		Versions: s.Versions,
	}, true
}

// Len returns the number of stored secrets.
func (f *FakeSecretStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.secrets)
}

// Get implements secretstore.SecretStore.
func (f *FakeSecretStore) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	f.log.Record("Get", name)
	if err := ctx.Err(); err != nil {
		return secretstore.Secret{}, err
	}
	if err, ok := f.GetErrors[name]; ok {
		return secretstore.Secret{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.secrets[name]
	if !ok {
		return secretstore.Secret{}, &secretstore.NotFoundError{Backend: f.Backend, Name: name}
	}
	return cloneSecret(s.Value), nil
}

// Upsert implements secretstore.SecretStore.
func (f *FakeSecretStore) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	f.log.Record("Upsert", name)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.UpsertErrors[name]; ok {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.secrets[name]; ok {
		existing.Value = cloneSecret(value)
		existing.Versions++
		return nil
	}
	f.secrets[name] = &StoredSecret{
		Value:    cloneSecret(value),
		Metadata: cloneMetadata(metadata),
		Versions: 1,
	}
	return nil
}

// Validate implements secretstore.Validator.
func (f *FakeSecretStore) Validate(ctx context.Context) error {
	f.log.Record("Validate", "")
	return f.ValidateErr
}

func cloneSecret(s secretstore.Secret) secretstore.Secret {
	if s.IsBinary() {
		b := make([]byte, s.Len())
		copy(b, s.Bytes())
		return secretstore.Binary(b)
	}
	return secretstore.Text(s.Text())
}

func cloneMetadata(m secretstore.Metadata) secretstore.Metadata {
	return secretstore.Metadata{Description: m.Description, Tags: maps.Clone(m.Tags)}
}

var (
	_ secretstore.SecretStore = (*FakeSecretStore)(nil)
	_ secretstore.Validator   = (*FakeSecretStore)(nil)
)
