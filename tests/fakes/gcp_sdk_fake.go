package fakes

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FakeGCPSecretManagerClient is an in-memory stand-in for the GCP Secret
// Manager client. Secrets and their versions are keyed by full resource
// name (projects/P/secrets/S).
type FakeGCPSecretManagerClient struct {
	// Secrets maps secret resource names to their data
	Secrets map[string]*GCPSecretData
	// Errors maps secret resource names to errors returned by every operation
	Errors map[string]error

	// CreateRequests and AddVersionRequests record calls in order
	CreateRequests     []*secretmanagerpb.CreateSecretRequest
	AddVersionRequests []*secretmanagerpb.AddSecretVersionRequest

	AccessSecretVersionFunc func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
	CreateSecretFunc        func(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error)
	AddSecretVersionFunc    func(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error)

	Closed bool

	mu sync.Mutex
}

// GCPSecretData holds the data for a fake GCP secret
type GCPSecretData struct {
	Labels      map[string]string
	Annotations map[string]string
	// Versions holds payloads oldest first; "latest" is the last one
	Versions [][]byte
}

// NewFakeGCPSecretManagerClient creates an empty fake client
func NewFakeGCPSecretManagerClient() *FakeGCPSecretManagerClient {
	return &FakeGCPSecretManagerClient{
		Secrets: make(map[string]*GCPSecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecretString seeds a secret with one text version
func (f *FakeGCPSecretManagerClient) AddSecretString(projectID, secretID, value string) {
	f.Secrets[gcpSecretName(projectID, secretID)] = &GCPSecretData{
		Versions: [][]byte{[]byte(value)},
	}
}

// AddError configures an error for a specific secret
func (f *FakeGCPSecretManagerClient) AddError(projectID, secretID string, err error) {
	f.Errors[gcpSecretName(projectID, secretID)] = err
}

// Latest returns a copy of the newest payload of a secret
func (f *FakeGCPSecretManagerClient) Latest(projectID, secretID string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.Secrets[gcpSecretName(projectID, secretID)]
	if !ok || len(data.Versions) == 0 {
		return nil, false
	}
	return clone(data.Versions[len(data.Versions)-1]), true
}

// AccessSecretVersion fakes the AccessSecretVersion operation. Only the
// "latest" alias and numeric versions are understood.
func (f *FakeGCPSecretManagerClient) AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	if f.AccessSecretVersionFunc != nil {
		return f.AccessSecretVersionFunc(ctx, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	secretName, version, ok := strings.Cut(req.GetName(), "/versions/")
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "invalid version name %q", req.GetName())
	}
	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	data, exists := f.Secrets[secretName]
	if !exists || len(data.Versions) == 0 {
		return nil, GCPNotFoundError(req.GetName())
	}

	index := len(data.Versions)
	if version != "latest" {
		if _, err := fmt.Sscanf(version, "%d", &index); err != nil || index < 1 || index > len(data.Versions) {
			return nil, GCPNotFoundError(req.GetName())
		}
	}

	return &secretmanagerpb.AccessSecretVersionResponse{
		Name:    fmt.Sprintf("%s/versions/%d", secretName, index),
		Payload: &secretmanagerpb.SecretPayload{Data: clone(data.Versions[index-1])},
	}, nil
}

// CreateSecret fakes the CreateSecret operation
func (f *FakeGCPSecretManagerClient) CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error) {
	if f.CreateSecretFunc != nil {
		return f.CreateSecretFunc(ctx, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateRequests = append(f.CreateRequests, req)

	name := req.GetParent() + "/secrets/" + req.GetSecretId()
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}
	if _, exists := f.Secrets[name]; exists {
		return nil, status.Errorf(codes.AlreadyExists, "Secret [%s] already exists.", name)
	}

	f.Secrets[name] = &GCPSecretData{
		Labels:      maps.Clone(req.GetSecret().GetLabels()),
		Annotations: maps.Clone(req.GetSecret().GetAnnotations()),
	}
	return &secretmanagerpb.Secret{
		Name:        name,
		Labels:      req.GetSecret().GetLabels(),
		Annotations: req.GetSecret().GetAnnotations(),
	}, nil
}

// AddSecretVersion fakes the AddSecretVersion operation
func (f *FakeGCPSecretManagerClient) AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error) {
	if f.AddSecretVersionFunc != nil {
		return f.AddSecretVersionFunc(ctx, req)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.AddVersionRequests = append(f.AddVersionRequests, req)

	if err, exists := f.Errors[req.GetParent()]; exists {
		return nil, err
	}

	data, exists := f.Secrets[req.GetParent()]
	if !exists {
		return nil, GCPNotFoundError(req.GetParent())
	}

	data.Versions = append(data.Versions, clone(req.GetPayload().GetData()))
	return &secretmanagerpb.SecretVersion{
		Name:  fmt.Sprintf("%s/versions/%d", req.GetParent(), len(data.Versions)),
		State: secretmanagerpb.SecretVersion_ENABLED,
	}, nil
}

// Close records that the client was closed
func (f *FakeGCPSecretManagerClient) Close() error {
	f.Closed = true
	return nil
}

func gcpSecretName(projectID, secretID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", projectID, secretID)
}

// GCP error helpers

// GCPNotFoundError creates a GCP not found error
func GCPNotFoundError(resourceName string) error {
	return status.Errorf(codes.NotFound, "Resource %s not found", resourceName)
}

// GCPPermissionDeniedError creates a GCP permission denied error
func GCPPermissionDeniedError(message string) error {
	return status.Error(codes.PermissionDenied, message)
}

// GCPUnauthenticatedError creates a GCP unauthenticated error
func GCPUnauthenticatedError(message string) error {
	return status.Error(codes.Unauthenticated, message)
}
