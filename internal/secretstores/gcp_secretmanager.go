package secretstores

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/systmms/secretsync/internal/config"
	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// descriptionAnnotation holds the description, since GCP secrets have none
const descriptionAnnotation = "description"

// GCPSecretManagerClientAPI defines the Secret Manager operations the gcp
// backend uses. *secretmanager.Client satisfies it
type GCPSecretManagerClientAPI interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	Close() error
}

// GCPSecretManagerStore stores secrets in GCP Secret Manager
type GCPSecretManagerStore struct {
	client    GCPSecretManagerClientAPI
	projectID string
	logger    *logging.Logger
}

// GCPOption is a functional option for the gcp backend
type GCPOption func(*GCPSecretManagerStore)

// WithGCPClient sets a custom Secret Manager client (for testing)
func WithGCPClient(client GCPSecretManagerClientAPI) GCPOption {
	return func(s *GCPSecretManagerStore) {
		s.client = client
	}
}

// NewGCPSecretManagerStore creates the gcp backend from manifest settings
func NewGCPSecretManagerStore(ctx context.Context, cfg config.GCPConfig, logger *logging.Logger, opts ...GCPOption) (*GCPSecretManagerStore, error) {
	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = gcpProjectFromEnv()
	}
	if projectID == "" {
		return nil, dserrors.ConfigError{
			Field:      "gcp.project_id",
			Message:    "project_id is required for the gcp backend",
			Suggestion: "Set gcp.project_id in the manifest or the GOOGLE_CLOUD_PROJECT environment variable",
		}
	}

	s := &GCPSecretManagerStore{projectID: projectID, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		client, err := newGCPClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
		}
		s.client = client
	}

	logger.Debug("GCP project %s", projectID)
	return s, nil
}

func newGCPClient(ctx context.Context, cfg config.GCPConfig) (*secretmanager.Client, error) {
	var clientOptions []option.ClientOption

	if cfg.CredentialsFile != "" {
		path := cfg.CredentialsFile
		if strings.HasPrefix(path, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get home directory: %w", err)
			}
			path = filepath.Join(home, path[2:])
		}
		clientOptions = append(clientOptions, option.WithCredentialsFile(path))
	}

	if cfg.ImpersonateServiceAccount != "" {
		ts, err := impersonate.CredentialsTokenSource(ctx, impersonate.CredentialsConfig{
			TargetPrincipal: cfg.ImpersonateServiceAccount,
			Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
		}, clientOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create impersonated credentials: %w", err)
		}
		clientOptions = append(clientOptions, option.WithTokenSource(ts))
	}

	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, option.WithEndpoint(cfg.Endpoint))
	}

	return secretmanager.NewClient(ctx, clientOptions...)
}

func gcpProjectFromEnv() string {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"} {
		if projectID := os.Getenv(key); projectID != "" {
			return projectID
		}
	}
	return ""
}

func (s *GCPSecretManagerStore) secretName(name string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, name)
}

// Get accesses the latest version. The payload is classified like file
// content: valid UTF-8 is text, anything else binary.
func (s *GCPSecretManagerStore) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: s.secretName(name) + "/versions/latest",
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return secretstore.Secret{}, &secretstore.NotFoundError{Backend: config.ProviderGCP, Name: name}
		}
		return secretstore.Secret{}, &secretstore.BackendError{Backend: config.ProviderGCP, Op: "get", Name: name, Err: err}
	}

	payload := resp.GetPayload()
	if payload == nil {
		return secretstore.Secret{}, &secretstore.BackendError{
			Backend: config.ProviderGCP, Op: "get", Name: name,
			Err: fmt.Errorf("secret version has no payload"),
		}
	}
	if payload.DataCrc32C != nil && int64(crc32.Checksum(payload.GetData(), crc32c)) != payload.GetDataCrc32C() {
		return secretstore.Secret{}, &secretstore.BackendError{
			Backend: config.ProviderGCP, Op: "get", Name: name,
			Err: fmt.Errorf("payload checksum mismatch"),
		}
	}

	return secretstore.FromBytes(payload.GetData()), nil
}

var crc32c = crc32.MakeTable(crc32.Castagnoli)

// Upsert creates the secret with labels and a description annotation and
// adds the value as its first version. For an existing secret only a new
// version is added.
func (s *GCPSecretManagerStore) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	data := value.Bytes()
	addVersion := func(ctx context.Context) error {
		checksum := int64(crc32.Checksum(data, crc32c))
		_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
			Parent: s.secretName(name),
			Payload: &secretmanagerpb.SecretPayload{
				Data:       data,
				DataCrc32C: &checksum,
			},
		})
		return err
	}

	create := func(ctx context.Context) error {
		secret := &secretmanagerpb.Secret{
			Replication: &secretmanagerpb.Replication{
				Replication: &secretmanagerpb.Replication_Automatic_{
					Automatic: &secretmanagerpb.Replication_Automatic{},
				},
			},
			Labels: metadata.Tags,
		}
		if metadata.Description != "" {
			secret.Annotations = map[string]string{descriptionAnnotation: metadata.Description}
		}

		_, err := s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   "projects/" + s.projectID,
			SecretId: name,
			Secret:   secret,
		})
		if status.Code(err) == codes.AlreadyExists {
			return &secretstore.AlreadyExistsError{Backend: config.ProviderGCP, Name: name}
		}
		if err != nil {
			return err
		}
		return addVersion(ctx)
	}

	return createOrUpdate(ctx, s.logger, config.ProviderGCP, name, create, addVersion)
}

// Close releases the underlying gRPC connection
func (s *GCPSecretManagerStore) Close() error {
	return s.client.Close()
}

var _ secretstore.SecretStore = (*GCPSecretManagerStore)(nil)
