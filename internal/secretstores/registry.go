package secretstores

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/systmms/secretsync/internal/config"
	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// Factory creates a secret store from the manifest's backend settings
type Factory func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error)

// Registry maps backend providers to their factories
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in backends
func NewRegistry() *Registry {
	registry := &Registry{
		factories: make(map[string]Factory),
	}

	registry.RegisterFactory(config.ProviderAWS, func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
		return NewAWSSecretsManagerStore(ctx, m.AWS, logger)
	})
	registry.RegisterFactory(config.ProviderAWSSSM, func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
		return NewAWSSSMStore(ctx, m.AWS, logger)
	})
	registry.RegisterFactory(config.ProviderGCP, func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
		return NewGCPSecretManagerStore(ctx, m.GCP, logger)
	})
	registry.RegisterFactory(config.ProviderKeyring, func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
		return NewKeyringStore(m.Keyring, logger), nil
	})
	registry.RegisterFactory(config.ProviderAkeyless, func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
		return NewAkeylessStore(m.Akeyless, logger)
	})

	return registry
}

// RegisterFactory registers or replaces the factory for a provider
func (r *Registry) RegisterFactory(provider string, factory Factory) {
	r.factories[provider] = factory
}

// Create builds the store selected by m.Backend.Provider
func (r *Registry) Create(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
	provider := m.Backend.Provider
	if provider == "" {
		provider = config.DefaultProvider
	}

	if !r.IsSupported(provider) {
		return nil, dserrors.ConfigError{
			Field:      "backend.provider",
			Value:      provider,
			Message:    "unsupported backend provider",
			Suggestion: "Use one of: " + strings.Join(r.GetSupportedTypes(), ", "),
		}
	}

	logger.Debug("Using %s backend", provider)
	return r.factories[provider](ctx, m, logger)
}

// GetSupportedTypes returns the registered providers in sorted order
func (r *Registry) GetSupportedTypes() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// IsSupported checks if a provider is registered
func (r *Registry) IsSupported(provider string) bool {
	_, exists := r.factories[provider]
	return exists
}
