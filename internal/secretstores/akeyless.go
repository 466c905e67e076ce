package secretstores

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/systmms/secretsync/internal/config"
	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// Errors an AkeylessClient reports for the conditions the backend reacts to.
var (
	ErrAkeylessItemNotFound = errors.New("akeyless item not found")
	ErrAkeylessItemExists   = errors.New("akeyless item already exists")
)

// AkeylessClient abstracts the Akeyless API operations the akeyless backend
// uses, so tests can run without a gateway
type AkeylessClient interface {
	// Authenticate obtains an access token
	Authenticate(ctx context.Context) (token string, expiresIn time.Duration, err error)

	// GetSecretValue returns the value of a static secret
	GetSecretValue(ctx context.Context, token, path string) (string, error)

	// CreateSecret creates a static secret. It fails with
	// ErrAkeylessItemExists when the path is taken
	CreateSecret(ctx context.Context, token string, item AkeylessItem) error

	// UpdateSecretValue replaces the value of an existing static secret
	UpdateSecretValue(ctx context.Context, token, path, value string) error
}

// AkeylessItem is a static secret sent to CreateSecret
type AkeylessItem struct {
	Path        string
	Value       string
	Description string
	// Tags are "key:value" strings
	Tags []string
}

// AkeylessStore stores secrets as Akeyless static secrets
type AkeylessStore struct {
	client AkeylessClient
	logger *logging.Logger

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// AkeylessOption is a functional option for the akeyless backend
type AkeylessOption func(*AkeylessStore)

// WithAkeylessClient sets a custom API client (for testing)
func WithAkeylessClient(client AkeylessClient) AkeylessOption {
	return func(s *AkeylessStore) {
		s.client = client
	}
}

// WithAkeylessClock replaces time.Now for token expiry (for testing)
func WithAkeylessClock(now func() time.Time) AkeylessOption {
	return func(s *AkeylessStore) {
		s.now = now
	}
}

// NewAkeylessStore creates the akeyless backend from manifest settings
func NewAkeylessStore(cfg config.AkeylessConfig, logger *logging.Logger, opts ...AkeylessOption) (*AkeylessStore, error) {
	s := &AkeylessStore{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		if cfg.AccessID == "" {
			cfg.AccessID = os.Getenv("AKEYLESS_ACCESS_ID")
		}
		if cfg.AccessKey == "" {
			cfg.AccessKey = logging.Secret(os.Getenv("AKEYLESS_ACCESS_KEY"))
		}
		if cfg.AccessID == "" || cfg.AccessKey == "" {
			return nil, dserrors.ConfigError{
				Field:      "akeyless.access_id",
				Message:    "access id and access key are required for the akeyless backend",
				Suggestion: "Set akeyless.access_id and akeyless.access_key, or export AKEYLESS_ACCESS_ID and AKEYLESS_ACCESS_KEY",
			}
		}
		if cfg.GatewayURL == "" {
			cfg.GatewayURL = config.DefaultAkeylessGateway
		}
		s.client = newAkeylessSDKClient(cfg)
		logger.Debug("Akeyless gateway %s", cfg.GatewayURL)
	}

	return s, nil
}

// Get retrieves a static secret's value
func (s *AkeylessStore) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	token, err := s.getToken(ctx)
	if err != nil {
		return secretstore.Secret{}, &secretstore.BackendError{Backend: config.ProviderAkeyless, Op: "get", Name: name, Err: err}
	}

	value, err := s.client.GetSecretValue(ctx, token, akeylessPath(name))
	if err != nil {
		if errors.Is(err, ErrAkeylessItemNotFound) {
			return secretstore.Secret{}, &secretstore.NotFoundError{Backend: config.ProviderAkeyless, Name: name}
		}
		return secretstore.Secret{}, &secretstore.BackendError{Backend: config.ProviderAkeyless, Op: "get", Name: name, Err: err}
	}
	return secretstore.Text(value), nil
}

// Upsert creates a static secret with description and tags, or replaces the
// value of an existing one. Static secrets only hold text.
func (s *AkeylessStore) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	if value.IsBinary() {
		return &secretstore.BackendError{Backend: config.ProviderAkeyless, Op: "create", Name: name, Err: ErrBinaryUnsupported}
	}

	token, err := s.getToken(ctx)
	if err != nil {
		return &secretstore.BackendError{Backend: config.ProviderAkeyless, Op: "create", Name: name, Err: err}
	}
	path := akeylessPath(name)

	create := func(ctx context.Context) error {
		item := AkeylessItem{
			Path:        path,
			Value:       value.Text(),
			Description: metadata.Description,
		}
		for _, k := range sortedTagKeys(metadata.Tags) {
			item.Tags = append(item.Tags, k+":"+metadata.Tags[k])
		}

		err := s.client.CreateSecret(ctx, token, item)
		if errors.Is(err, ErrAkeylessItemExists) {
			return &secretstore.AlreadyExistsError{Backend: config.ProviderAkeyless, Name: name}
		}
		return err
	}

	update := func(ctx context.Context) error {
		return s.client.UpdateSecretValue(ctx, token, path, value.Text())
	}

	return createOrUpdate(ctx, s.logger, config.ProviderAkeyless, name, create, update)
}

// Validate checks that the access credentials authenticate
func (s *AkeylessStore) Validate(ctx context.Context) error {
	if _, err := s.getToken(ctx); err != nil {
		return &secretstore.BackendError{Backend: config.ProviderAkeyless, Op: "validate", Err: err}
	}
	return nil
}

// getToken returns the cached token or authenticates for a new one
func (s *AkeylessStore) getToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expires) {
		return s.token, nil
	}

	token, ttl, err := s.client.Authenticate(ctx)
	if err != nil {
		return "", fmt.Errorf("akeyless authentication failed: %w", err)
	}

	s.token = token
	s.expires = s.now().Add(ttl)
	s.logger.Debug("Authenticated with Akeyless, token valid for %s", ttl)
	return token, nil
}

// akeylessPath makes a secret name absolute, as Akeyless item names are
func akeylessPath(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

var (
	_ secretstore.SecretStore = (*AkeylessStore)(nil)
	_ secretstore.Validator   = (*AkeylessStore)(nil)
)
