package fakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/systmms/secretsync/internal/secretstores"
)

// ErrFakeAkeylessUnauthorized is a typical authentication failure
var ErrFakeAkeylessUnauthorized = errors.New("unauthorized: authentication failed")

// FakeAkeylessClient is an in-memory stand-in for the Akeyless API.
// CreateSecret fails with secretstores.ErrAkeylessItemExists for known
// paths, mirroring the gateway.
type FakeAkeylessClient struct {
	// Token and TokenTTL are returned by Authenticate
	Token    string
	TokenTTL time.Duration

	// Items maps item paths to their stored data
	Items map[string]*AkeylessItemData

	// AuthErr is returned by Authenticate if set
	AuthErr error
	// GetErr, CreateErr and UpdateErr override the matching operation
	GetErr    error
	CreateErr error
	UpdateErr error

	// Created and Updated record what was sent, in call order
	Created []secretstores.AkeylessItem
	Updated []string

	// AuthCallCount tracks how many times Authenticate was called
	AuthCallCount int
	// Tokens records the token passed to each data call
	Tokens []string

	mu sync.Mutex
}

// AkeylessItemData holds a fake static secret
type AkeylessItemData struct {
	Value       string
	Description string
	Tags        []string
	Versions    int
}

// NewFakeAkeylessClient creates a fake client with defaults
func NewFakeAkeylessClient() *FakeAkeylessClient {
	return &FakeAkeylessClient{
		Token:    "fake-akeyless-token",
		TokenTTL: 30 * time.Minute,
		Items:    make(map[string]*AkeylessItemData),
	}
}

// SetSecret seeds a static secret
func (f *FakeAkeylessClient) SetSecret(path, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Items[path] = &AkeylessItemData{Value: value, Versions: 1}
}

// Authenticate returns Token unless AuthErr is set
func (f *FakeAkeylessClient) Authenticate(ctx context.Context) (string, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AuthCallCount++
	if f.AuthErr != nil {
		return "", 0, f.AuthErr
	}
	return f.Token, f.TokenTTL, nil
}

// GetSecretValue reads a seeded or created item
func (f *FakeAkeylessClient) GetSecretValue(ctx context.Context, token, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	if f.GetErr != nil {
		return "", f.GetErr
	}
	item, ok := f.Items[path]
	if !ok {
		return "", secretstores.ErrAkeylessItemNotFound
	}
	return item.Value, nil
}

// CreateSecret stores a new item, failing when the path is taken
func (f *FakeAkeylessClient) CreateSecret(ctx context.Context, token string, item secretstores.AkeylessItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	f.Created = append(f.Created, item)
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, ok := f.Items[item.Path]; ok {
		return secretstores.ErrAkeylessItemExists
	}
	f.Items[item.Path] = &AkeylessItemData{
		Value:       item.Value,
		Description: item.Description,
		Tags:        item.Tags,
		Versions:    1,
	}
	return nil
}

// UpdateSecretValue replaces the value of an existing item
func (f *FakeAkeylessClient) UpdateSecretValue(ctx context.Context, token, path, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	f.Updated = append(f.Updated, path)
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	item, ok := f.Items[path]
	if !ok {
		return secretstores.ErrAkeylessItemNotFound
	}
	item.Value = value
	item.Versions++
	return nil
}

var _ secretstores.AkeylessClient = (*FakeAkeylessClient)(nil)
