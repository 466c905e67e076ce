package secretstores

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// SSMClientAPI defines the Parameter Store operations the aws-ssm backend
// uses. This allows for fakes in tests
type SSMClientAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// AWSSSMStore stores secrets as SecureString parameters in SSM Parameter Store
type AWSSSMStore struct {
	client   SSMClientAPI
	sts      STSClientAPI
	kmsKeyID string
	logger   *logging.Logger
}

// NewAWSSSMStore creates the aws-ssm backend from manifest settings
func NewAWSSSMStore(ctx context.Context, cfg config.AWSConfig, logger *logging.Logger, opts ...AWSOption) (*AWSSSMStore, error) {
	clients, err := buildAWSClients(ctx, cfg, logger, true, opts)
	if err != nil {
		return nil, err
	}

	return &AWSSSMStore{
		client:   clients.ssm,
		sts:      clients.sts,
		kmsKeyID: cfg.KMSKeyID,
		logger:   logger,
	}, nil
}

// Get retrieves a parameter, decrypting SecureString values
func (s *AWSSSMStore) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return secretstore.Secret{}, &secretstore.NotFoundError{Backend: config.ProviderAWSSSM, Name: name}
		}
		return secretstore.Secret{}, &secretstore.BackendError{Backend: config.ProviderAWSSSM, Op: "get", Name: name, Err: err}
	}

	if out.Parameter == nil || out.Parameter.Value == nil {
		return secretstore.Secret{}, &secretstore.BackendError{
			Backend: config.ProviderAWSSSM,
			Op:      "get",
			Name:    name,
			Err:     errors.New("parameter has no value"),
		}
	}
	return secretstore.Text(*out.Parameter.Value), nil
}

// Upsert creates a SecureString parameter with description and tags, or
// overwrites the value of an existing one. Parameters only hold text.
func (s *AWSSSMStore) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	if value.IsBinary() {
		return &secretstore.BackendError{Backend: config.ProviderAWSSSM, Op: "create", Name: name, Err: ErrBinaryUnsupported}
	}

	create := func(ctx context.Context) error {
		input := &ssm.PutParameterInput{
			Name:      aws.String(name),
			Value:     aws.String(value.Text()),
			Type:      types.ParameterTypeSecureString,
			Overwrite: aws.Bool(false),
		}
		if metadata.Description != "" {
			input.Description = aws.String(metadata.Description)
		}
		if s.kmsKeyID != "" {
			input.KeyId = aws.String(s.kmsKeyID)
		}
		for _, k := range sortedTagKeys(metadata.Tags) {
			input.Tags = append(input.Tags, types.Tag{Key: aws.String(k), Value: aws.String(metadata.Tags[k])})
		}

		_, err := s.client.PutParameter(ctx, input)
		var exists *types.ParameterAlreadyExists
		if errors.As(err, &exists) {
			return &secretstore.AlreadyExistsError{Backend: config.ProviderAWSSSM, Name: name}
		}
		return err
	}

	// Tags cannot be combined with Overwrite, and the existing key is kept.
	update := func(ctx context.Context) error {
		_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
			Name:      aws.String(name),
			Value:     aws.String(value.Text()),
			Type:      types.ParameterTypeSecureString,
			Overwrite: aws.Bool(true),
		})
		return err
	}

	return createOrUpdate(ctx, s.logger, config.ProviderAWSSSM, name, create, update)
}

// Validate checks that AWS credentials resolve to an identity
func (s *AWSSSMStore) Validate(ctx context.Context) error {
	return validateAWSIdentity(ctx, s.sts, config.ProviderAWSSSM, s.logger)
}

var (
	_ secretstore.SecretStore = (*AWSSSMStore)(nil)
	_ secretstore.Validator   = (*AWSSSMStore)(nil)
)
