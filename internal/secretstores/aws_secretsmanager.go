package secretstores

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// SecretsManagerClientAPI defines the Secrets Manager operations the aws
// backend uses. This allows for fakes in tests
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error)
}

// AWSSecretsManagerStore stores secrets in AWS Secrets Manager
type AWSSecretsManagerStore struct {
	client SecretsManagerClientAPI
	sts    STSClientAPI
	logger *logging.Logger
}

// NewAWSSecretsManagerStore creates the aws backend from manifest settings
func NewAWSSecretsManagerStore(ctx context.Context, cfg config.AWSConfig, logger *logging.Logger, opts ...AWSOption) (*AWSSecretsManagerStore, error) {
	clients, err := buildAWSClients(ctx, cfg, logger, false, opts)
	if err != nil {
		return nil, err
	}

	return &AWSSecretsManagerStore{
		client: clients.secretsManager,
		sts:    clients.sts,
		logger: logger,
	}, nil
}

// Get retrieves the current version of a secret. A string payload wins over
// a binary one.
func (s *AWSSecretsManagerStore) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return secretstore.Secret{}, &secretstore.NotFoundError{Backend: config.ProviderAWS, Name: name}
		}
		return secretstore.Secret{}, &secretstore.BackendError{Backend: config.ProviderAWS, Op: "get", Name: name, Err: err}
	}

	switch {
	case out.SecretString != nil:
		return secretstore.Text(*out.SecretString), nil
	case out.SecretBinary != nil:
		return secretstore.Binary(out.SecretBinary), nil
	default:
		return secretstore.Secret{}, &secretstore.BackendError{
			Backend: config.ProviderAWS,
			Op:      "get",
			Name:    name,
			Err:     errors.New("secret has neither a string nor a binary value"),
		}
	}
}

// Upsert creates the secret with its description and tags, or updates only
// its value when it already exists
func (s *AWSSecretsManagerStore) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	create := func(ctx context.Context) error {
		input := &secretsmanager.CreateSecretInput{Name: aws.String(name)}
		if metadata.Description != "" {
			input.Description = aws.String(metadata.Description)
		}
		for _, k := range sortedTagKeys(metadata.Tags) {
			input.Tags = append(input.Tags, types.Tag{Key: aws.String(k), Value: aws.String(metadata.Tags[k])})
		}
		if value.IsBinary() {
			input.SecretBinary = value.Bytes()
		} else {
			input.SecretString = aws.String(value.Text())
		}

		_, err := s.client.CreateSecret(ctx, input)
		var exists *types.ResourceExistsException
		if errors.As(err, &exists) {
			return &secretstore.AlreadyExistsError{Backend: config.ProviderAWS, Name: name}
		}
		return err
	}

	update := func(ctx context.Context) error {
		input := &secretsmanager.UpdateSecretInput{SecretId: aws.String(name)}
		if value.IsBinary() {
			input.SecretBinary = value.Bytes()
		} else {
			input.SecretString = aws.String(value.Text())
		}
		_, err := s.client.UpdateSecret(ctx, input)
		return err
	}

	return createOrUpdate(ctx, s.logger, config.ProviderAWS, name, create, update)
}

// Validate checks that AWS credentials resolve to an identity
func (s *AWSSecretsManagerStore) Validate(ctx context.Context) error {
	return validateAWSIdentity(ctx, s.sts, config.ProviderAWS, s.logger)
}

var (
	_ secretstore.SecretStore = (*AWSSecretsManagerStore)(nil)
	_ secretstore.Validator   = (*AWSSecretsManagerStore)(nil)
)
