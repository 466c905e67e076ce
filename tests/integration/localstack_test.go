//go:build integration

// Package integration runs the sync engine against LocalStack.
//
// Start LocalStack and point the tests at it:
//
//	docker run -d -p 4566:4566 localstack/localstack
//	SECRET_SYNC_TEST_LOCALSTACK=http://localhost:4566 go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretsync/internal/config"
	localfs "github.com/systmms/secretsync/internal/filestore"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/internal/secretstores"
	"github.com/systmms/secretsync/internal/syncer"
	"github.com/systmms/secretsync/pkg/secretstore"
	"github.com/systmms/secretsync/tests/testutil"
)

func localStackAWS(t *testing.T) config.AWSConfig {
	t.Helper()
	endpoint := os.Getenv("SECRET_SYNC_TEST_LOCALSTACK")
	if endpoint == "" {
		t.Skip("SECRET_SYNC_TEST_LOCALSTACK not set")
	}
	return config.AWSConfig{
		Region:   "us-east-1",
		Endpoint: endpoint,
		Credentials: &config.AWSCredentials{
			AccessKeyID:     logging.Secret("test"),
			AccessKeySecret: logging.Secret("test"),
		},
	}
}

// uniqueName keeps reruns against the same LocalStack apart
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestSecretsManagerSync(t *testing.T) {
	awsCfg := localStackAWS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := testutil.NewTestLogger(t)
	store, err := secretstores.NewAWSSecretsManagerStore(ctx, awsCfg, logger.Logger)
	require.NoError(t, err)
	require.NoError(t, store.Validate(ctx))

	dir := t.TempDir()
	files := localfs.NewLocal(logger.Logger)
	entry := syncer.Entry{
		Name:       "dotenv",
		Path:       ".env",
		SecretName: uniqueName("secret-sync/dotenv"),
		Metadata:   secretstore.Metadata{Description: "integration", Tags: map[string]string{"suite": "localstack"}},
	}

	testutil.WriteFile(t, dir, ".env", []byte("hello=world"))
	require.NoError(t, syncer.PushOne(ctx, store, files, dir, entry))

	// second push takes the update path
	testutil.WriteFile(t, dir, ".env", []byte("hello=again"))
	require.NoError(t, syncer.PushOne(ctx, store, files, dir, entry))
	logger.AssertContains(t, "already exists")

	require.NoError(t, os.Remove(filepath.Join(dir, ".env")))
	require.NoError(t, syncer.PullOne(ctx, store, files, dir, entry))
	testutil.AssertFileContents(t, filepath.Join(dir, ".env"), "hello=again")

	_, err = store.Get(ctx, uniqueName("secret-sync/missing"))
	assert.True(t, secretstore.IsNotFound(err))
}

func TestSecretsManagerBinary(t *testing.T) {
	awsCfg := localStackAWS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := secretstores.NewAWSSecretsManagerStore(ctx, awsCfg, testutil.NewTestLogger(t).Logger)
	require.NoError(t, err)

	name := uniqueName("secret-sync/binary")
	raw := []byte{0x00, 0xff, 0xfe, 0x80}
	require.NoError(t, store.Upsert(ctx, name, secretstore.Binary(raw), secretstore.Metadata{}))

	value, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.True(t, value.IsBinary())
	assert.Equal(t, raw, value.Bytes())
}

func TestSSMSync(t *testing.T) {
	awsCfg := localStackAWS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := secretstores.NewAWSSSMStore(ctx, awsCfg, testutil.NewTestLogger(t).Logger)
	require.NoError(t, err)

	name := "/" + uniqueName("secret-sync/dotenv")
	require.NoError(t, store.Upsert(ctx, name, secretstore.Text("v1"), secretstore.Metadata{Tags: map[string]string{"suite": "localstack"}}))
	require.NoError(t, store.Upsert(ctx, name, secretstore.Text("v2"), secretstore.Metadata{Tags: map[string]string{"suite": "localstack"}}))

	value, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "v2", value.Text())
}
