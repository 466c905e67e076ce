package secretstores

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/internal/logging"
)

// DefaultAWSRegion is used when neither the manifest nor the default
// credential chain names a region.
const DefaultAWSRegion = "us-east-1"

// STSClientAPI is the subset of the STS client used to check credentials
type STSClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// awsClients holds injected or lazily built AWS service clients
type awsClients struct {
	secretsManager SecretsManagerClientAPI
	ssm            SSMClientAPI
	sts            STSClientAPI
}

// AWSOption is a functional option for the AWS backends
type AWSOption func(*awsClients)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing)
func WithSecretsManagerClient(client SecretsManagerClientAPI) AWSOption {
	return func(c *awsClients) {
		c.secretsManager = client
	}
}

// WithSSMClient sets a custom SSM client (for testing)
func WithSSMClient(client SSMClientAPI) AWSOption {
	return func(c *awsClients) {
		c.ssm = client
	}
}

// WithSTSClient sets a custom STS client (for testing)
func WithSTSClient(client STSClientAPI) AWSOption {
	return func(c *awsClients) {
		c.sts = client
	}
}

// loadAWSConfig resolves region, profile and credentials. Manifest values
// win over the default chain; the region falls back to DefaultAWSRegion.
func loadAWSConfig(ctx context.Context, cfg config.AWSConfig, logger *logging.Logger) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.Credentials != nil {
		logger.Debug("Using static AWS credentials from the manifest")
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				string(cfg.Credentials.AccessKeyID),
				string(cfg.Credentials.AccessKeySecret),
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = DefaultAWSRegion
	}

	logger.Debug("AWS region %s, profile %q", awsCfg.Region, cfg.Profile)
	return awsCfg, nil
}

// buildAWSClients applies opts and creates whichever clients are still
// missing from the resolved AWS configuration.
func buildAWSClients(ctx context.Context, cfg config.AWSConfig, logger *logging.Logger, needSSM bool, opts []AWSOption) (*awsClients, error) {
	clients := &awsClients{}
	for _, opt := range opts {
		opt(clients)
	}

	missing := clients.sts == nil ||
		(needSSM && clients.ssm == nil) ||
		(!needSSM && clients.secretsManager == nil)
	if !missing {
		return clients, nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	endpoint := cfg.Endpoint
	if needSSM && clients.ssm == nil {
		clients.ssm = ssm.NewFromConfig(awsCfg, func(o *ssm.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
	}
	if !needSSM && clients.secretsManager == nil {
		clients.secretsManager = secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
	}
	if clients.sts == nil {
		clients.sts = sts.NewFromConfig(awsCfg, func(o *sts.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
	}

	return clients, nil
}

// validateAWSIdentity checks that the credentials resolve to an identity
func validateAWSIdentity(ctx context.Context, client STSClientAPI, backend string, logger *logging.Logger) error {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("%s credential check failed: %w", backend, err)
	}
	logger.Debug("AWS identity %s (account %s)", aws.ToString(out.Arn), aws.ToString(out.Account))
	return nil
}

// sortedTagKeys keeps tag order stable across runs
func sortedTagKeys(tags map[string]string) []string {
	return slices.Sorted(maps.Keys(tags))
}
