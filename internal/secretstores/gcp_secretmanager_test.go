package secretstores_test

import (
	"context"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretsync/internal/config"
	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/internal/secretstores"
	"github.com/systmms/secretsync/pkg/secretstore"
	"github.com/systmms/secretsync/tests/fakes"
	"github.com/systmms/secretsync/tests/testutil"
)

func newGCPStore(t *testing.T, client *fakes.FakeGCPSecretManagerClient) *secretstores.GCPSecretManagerStore {
	t.Helper()
	store, err := secretstores.NewGCPSecretManagerStore(context.Background(),
		config.GCPConfig{ProjectID: "my-project"}, testutil.NewTestLogger(t).Logger,
		secretstores.WithGCPClient(client))
	require.NoError(t, err)
	return store
}

func TestGCPGet(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeGCPSecretManagerClient()
	client.AddSecretString("my-project", "dotenv", "hello=world")
	store := newGCPStore(t, client)

	value, err := store.Get(ctx, "dotenv")
	require.NoError(t, err)
	assert.Equal(t, "hello=world", value.Text())

	_, err = store.Get(ctx, "missing")
	assert.True(t, secretstore.IsNotFound(err))

	client.AddError("my-project", "denied", fakes.GCPPermissionDeniedError("denied"))
	_, err = store.Get(ctx, "denied")
	var backendErr *secretstore.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "gcp", backendErr.Backend)
}

func TestGCPGetChecksumMismatch(t *testing.T) {
	client := fakes.NewFakeGCPSecretManagerClient()
	client.AccessSecretVersionFunc = func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
		bad := int64(1)
		return &secretmanagerpb.AccessSecretVersionResponse{
			Payload: &secretmanagerpb.SecretPayload{Data: []byte("x"), DataCrc32C: &bad},
		}, nil
	}
	store := newGCPStore(t, client)

	_, err := store.Get(context.Background(), "s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestGCPUpsertCreateThenAddVersion(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeGCPSecretManagerClient()
	store := newGCPStore(t, client)

	meta := secretstore.Metadata{Description: "env file", Tags: map[string]string{"team": "core"}}
	require.NoError(t, store.Upsert(ctx, "dotenv", secretstore.Text("v1"), meta))
	require.NoError(t, store.Upsert(ctx, "dotenv", secretstore.Text("v2"), secretstore.Metadata{Description: "changed"}))

	require.Len(t, client.CreateRequests, 2)
	first := client.CreateRequests[0]
	assert.Equal(t, "projects/my-project", first.GetParent())
	assert.Equal(t, "dotenv", first.GetSecretId())
	assert.Equal(t, map[string]string{"team": "core"}, first.GetSecret().GetLabels())
	assert.Equal(t, map[string]string{"description": "env file"}, first.GetSecret().GetAnnotations())
	assert.NotNil(t, first.GetSecret().GetReplication().GetAutomatic())

	require.Len(t, client.AddVersionRequests, 2)
	assert.Equal(t, "projects/my-project/secrets/dotenv", client.AddVersionRequests[1].GetParent())
	assert.NotNil(t, client.AddVersionRequests[1].GetPayload().DataCrc32C)

	latest, ok := client.Latest("my-project", "dotenv")
	require.True(t, ok)
	assert.Equal(t, "v2", string(latest))
	assert.Equal(t, map[string]string{"description": "env file"},
		client.Secrets["projects/my-project/secrets/dotenv"].Annotations)

	value, err := store.Get(ctx, "dotenv")
	require.NoError(t, err)
	assert.Equal(t, "v2", value.Text())
}

func TestGCPBinaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeGCPSecretManagerClient()
	store := newGCPStore(t, client)

	raw := []byte{0xc3, 0x28, 0x00, 0xff}
	require.NoError(t, store.Upsert(ctx, "bin", secretstore.Binary(raw), secretstore.Metadata{}))

	value, err := store.Get(ctx, "bin")
	require.NoError(t, err)
	assert.True(t, value.IsBinary())
	assert.Equal(t, raw, value.Bytes())
}

func TestGCPUpsertCreateFailure(t *testing.T) {
	client := fakes.NewFakeGCPSecretManagerClient()
	client.CreateSecretFunc = func(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error) {
		return nil, fakes.GCPPermissionDeniedError("denied")
	}
	store := newGCPStore(t, client)

	err := store.Upsert(context.Background(), "s", secretstore.Text("v"), secretstore.Metadata{})
	var backendErr *secretstore.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "create", backendErr.Op)
	assert.Empty(t, client.AddVersionRequests)
}

func TestGCPProjectID(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GCLOUD_PROJECT", "")
	t.Setenv("GCP_PROJECT", "")

	_, err := secretstores.NewGCPSecretManagerStore(context.Background(), config.GCPConfig{},
		testutil.NewTestLogger(t).Logger, secretstores.WithGCPClient(fakes.NewFakeGCPSecretManagerClient()))
	var cfgErr dserrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "gcp.project_id", cfgErr.Field)

	t.Setenv("GOOGLE_CLOUD_PROJECT", "from-env")
	client := fakes.NewFakeGCPSecretManagerClient()
	client.AddSecretString("from-env", "s", "v")
	store, err := secretstores.NewGCPSecretManagerStore(context.Background(), config.GCPConfig{},
		testutil.NewTestLogger(t).Logger, secretstores.WithGCPClient(client))
	require.NoError(t, err)

	value, err := store.Get(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "v", value.Text())

	require.NoError(t, store.Close())
	assert.True(t, client.Closed)
}
