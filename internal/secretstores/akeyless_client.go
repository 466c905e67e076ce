package secretstores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	akeyless "github.com/akeylesslabs/akeyless-go/v3"

	"github.com/systmms/secretsync/internal/config"
)

// akeylessTokenTTL is kept below the gateway's 30 minute token lifetime
const akeylessTokenTTL = 25 * time.Minute

// akeylessSDKClient implements AkeylessClient with the official SDK
type akeylessSDKClient struct {
	api       *akeyless.APIClient
	accessID  string
	accessKey string
}

func newAkeylessSDKClient(cfg config.AkeylessConfig) *akeylessSDKClient {
	configuration := akeyless.NewConfiguration()
	configuration.Servers = []akeyless.ServerConfiguration{
		{URL: cfg.GatewayURL},
	}

	return &akeylessSDKClient{
		api:       akeyless.NewAPIClient(configuration),
		accessID:  cfg.AccessID,
		accessKey: string(cfg.AccessKey),
	}
}

// Authenticate exchanges the API key for a token
func (c *akeylessSDKClient) Authenticate(ctx context.Context) (string, time.Duration, error) {
	body := akeyless.NewAuthWithDefaults()
	body.SetAccessId(c.accessID)
	body.SetAccessKey(c.accessKey)

	res, _, err := c.api.V2Api.Auth(ctx).Body(*body).Execute()
	if err != nil {
		return "", 0, fmt.Errorf("api key authentication failed: %w", classifyAkeylessError(err))
	}
	return res.GetToken(), akeylessTokenTTL, nil
}

// GetSecretValue reads a static secret
func (c *akeylessSDKClient) GetSecretValue(ctx context.Context, token, path string) (string, error) {
	body := akeyless.NewGetSecretValue([]string{path})
	body.SetToken(token)

	res, _, err := c.api.V2Api.GetSecretValue(ctx).Body(*body).Execute()
	if err != nil {
		return "", classifyAkeylessError(err)
	}

	// The response maps each requested path to its value.
	value, ok := res[path]
	if !ok {
		return "", ErrAkeylessItemNotFound
	}
	return value, nil
}

// CreateSecret creates a static secret with its description and tags
func (c *akeylessSDKClient) CreateSecret(ctx context.Context, token string, item AkeylessItem) error {
	body := akeyless.NewCreateSecret(item.Path, item.Value)
	body.SetToken(token)
	if item.Description != "" {
		body.SetDescription(item.Description)
	}
	if len(item.Tags) > 0 {
		body.SetTags(item.Tags)
	}

	_, _, err := c.api.V2Api.CreateSecret(ctx).Body(*body).Execute()
	return classifyAkeylessError(err)
}

// UpdateSecretValue sets a new value on an existing static secret
func (c *akeylessSDKClient) UpdateSecretValue(ctx context.Context, token, path, value string) error {
	body := akeyless.NewUpdateSecretVal(path, value)
	body.SetToken(token)

	_, _, err := c.api.V2Api.UpdateSecretVal(ctx).Body(*body).Execute()
	return classifyAkeylessError(err)
}

// classifyAkeylessError maps gateway errors onto ErrAkeylessItemNotFound and
// ErrAkeylessItemExists. The reason is only in the response body.
func classifyAkeylessError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	var apiErr interface{ Body() []byte }
	if errors.As(err, &apiErr) {
		msg += " " + string(apiErr.Body())
	}

	switch {
	case strings.Contains(msg, "itemNotFound") || strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %w", ErrAkeylessItemNotFound, err)
	case strings.Contains(msg, "already exist"):
		return fmt.Errorf("%w: %w", ErrAkeylessItemExists, err)
	}
	return err
}

var _ AkeylessClient = (*akeylessSDKClient)(nil)
