package secretstores_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/internal/secretstores"
	"github.com/systmms/secretsync/pkg/secretstore"
	"github.com/systmms/secretsync/tests/fakes"
	"github.com/systmms/secretsync/tests/testutil"
)

func newSecretsManagerStore(t *testing.T, client *fakes.FakeSecretsManagerClient) (*secretstores.AWSSecretsManagerStore, *testutil.TestLogger) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	store, err := secretstores.NewAWSSecretsManagerStore(context.Background(), config.AWSConfig{}, logger.Logger,
		secretstores.WithSecretsManagerClient(client),
		secretstores.WithSTSClient(&fakes.FakeSTSClient{}),
	)
	require.NoError(t, err)
	return store, logger
}

func TestSecretsManagerGet(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("app/dotenv", "hello=world")
	client.AddSecretBinary("app/cert", []byte{0xde, 0xad, 0xbe, 0xef})
	store, _ := newSecretsManagerStore(t, client)

	t.Run("text", func(t *testing.T) {
		value, err := store.Get(ctx, "app/dotenv")
		require.NoError(t, err)
		assert.False(t, value.IsBinary())
		assert.Equal(t, "hello=world", value.Text())
	})

	t.Run("binary", func(t *testing.T) {
		value, err := store.Get(ctx, "app/cert")
		require.NoError(t, err)
		assert.True(t, value.IsBinary())
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, value.Bytes())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		require.Error(t, err)
		var notFound *secretstore.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.Name)
		assert.Contains(t, err.Error(), "missing")
	})

	t.Run("other failure", func(t *testing.T) {
		client.AddError("denied", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"})
		_, err := store.Get(ctx, "denied")

		var backendErr *secretstore.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "get", backendErr.Op)
		assert.False(t, secretstore.IsNotFound(err))
	})
}

func TestSecretsManagerGetPayloadRules(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeSecretsManagerClient()
	store, _ := newSecretsManagerStore(t, client)

	client.GetSecretValueFunc = func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
		return &secretsmanager.GetSecretValueOutput{
			SecretString: aws.String("text wins"),
			SecretBinary: []byte{0x01},
		}, nil
	}
	value, err := store.Get(ctx, "both")
	require.NoError(t, err)
	assert.Equal(t, "text wins", value.Text())

	client.GetSecretValueFunc = func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
		return &secretsmanager.GetSecretValueOutput{}, nil
	}
	_, err = store.Get(ctx, "neither")
	var backendErr *secretstore.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Contains(t, err.Error(), "neither a string nor a binary value")
}

func TestSecretsManagerUpsertCreates(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeSecretsManagerClient()
	store, _ := newSecretsManagerStore(t, client)

	err := store.Upsert(ctx, "app/dotenv", secretstore.Text("hello=world"), secretstore.Metadata{
		Description: "env file",
		Tags:        map[string]string{"team": "platform", "env": "dev"},
	})
	require.NoError(t, err)

	require.Len(t, client.CreateInputs, 1)
	assert.Empty(t, client.UpdateInputs)

	input := client.CreateInputs[0]
	assert.Equal(t, "hello=world", aws.ToString(input.SecretString))
	assert.Nil(t, input.SecretBinary)
	assert.Equal(t, "env file", aws.ToString(input.Description))
	assert.Equal(t, []types.Tag{
		{Key: aws.String("env"), Value: aws.String("dev")},
		{Key: aws.String("team"), Value: aws.String("platform")},
	}, input.Tags)
}

func TestSecretsManagerUpsertWithoutMetadata(t *testing.T) {
	client := fakes.NewFakeSecretsManagerClient()
	store, _ := newSecretsManagerStore(t, client)

	require.NoError(t, store.Upsert(context.Background(), "s", secretstore.Text("v"), secretstore.Metadata{}))

	require.Len(t, client.CreateInputs, 1)
	assert.Nil(t, client.CreateInputs[0].Description)
	assert.Empty(t, client.CreateInputs[0].Tags)
}

func TestSecretsManagerUpsertUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("app/dotenv", "old")
	store, logger := newSecretsManagerStore(t, client)

	err := store.Upsert(ctx, "app/dotenv", secretstore.Text("new"), secretstore.Metadata{Description: "ignored on update"})
	require.NoError(t, err)

	require.Len(t, client.UpdateInputs, 1)
	update := client.UpdateInputs[0]
	assert.Equal(t, "app/dotenv", aws.ToString(update.SecretId))
	assert.Equal(t, "new", aws.ToString(update.SecretString))
	assert.Nil(t, update.Description)

	assert.Equal(t, "new", aws.ToString(client.Secrets["app/dotenv"].SecretString))
	assert.Nil(t, client.Secrets["app/dotenv"].Description)
	logger.AssertContains(t, "already exists")
}

func TestSecretsManagerUpsertTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeSecretsManagerClient()
	store, _ := newSecretsManagerStore(t, client)

	require.NoError(t, store.Upsert(ctx, "s", secretstore.Text("same"), secretstore.Metadata{}))
	require.NoError(t, store.Upsert(ctx, "s", secretstore.Text("same"), secretstore.Metadata{}))

	value, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "same", value.Text())
	assert.Len(t, client.Secrets, 1)
}

func TestSecretsManagerUpsertBinary(t *testing.T) {
	ctx := context.Background()
	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("existing", "was text")
	store, _ := newSecretsManagerStore(t, client)

	raw := []byte{0x00, 0xff, 0x10}
	require.NoError(t, store.Upsert(ctx, "new", secretstore.Binary(raw), secretstore.Metadata{}))
	assert.Equal(t, raw, client.CreateInputs[0].SecretBinary)
	assert.Nil(t, client.CreateInputs[0].SecretString)

	require.NoError(t, store.Upsert(ctx, "existing", secretstore.Binary(raw), secretstore.Metadata{}))
	assert.Equal(t, raw, client.UpdateInputs[0].SecretBinary)
	assert.Nil(t, client.UpdateInputs[0].SecretString)
}

func TestSecretsManagerUpsertFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("create failure does not update", func(t *testing.T) {
		client := fakes.NewFakeSecretsManagerClient()
		client.CreateSecretFunc = func(ctx context.Context, params *secretsmanager.CreateSecretInput) (*secretsmanager.CreateSecretOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "ThrottlingException"}
		}
		store, _ := newSecretsManagerStore(t, client)

		err := store.Upsert(ctx, "s", secretstore.Text("v"), secretstore.Metadata{})
		var backendErr *secretstore.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "create", backendErr.Op)
		assert.Empty(t, client.UpdateInputs)
	})

	t.Run("update failure", func(t *testing.T) {
		client := fakes.NewFakeSecretsManagerClient()
		client.AddSecretString("s", "old")
		client.UpdateSecretFunc = func(ctx context.Context, params *secretsmanager.UpdateSecretInput) (*secretsmanager.UpdateSecretOutput, error) {
			return nil, errors.New("boom")
		}
		store, _ := newSecretsManagerStore(t, client)

		err := store.Upsert(ctx, "s", secretstore.Text("v"), secretstore.Metadata{})
		var backendErr *secretstore.BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "update", backendErr.Op)
		assert.False(t, secretstore.IsAlreadyExists(err))
	})
}

func TestSecretsManagerValidate(t *testing.T) {
	ctx := context.Background()
	sts := &fakes.FakeSTSClient{}
	store, err := secretstores.NewAWSSecretsManagerStore(ctx, config.AWSConfig{}, testutil.NewTestLogger(t).Logger,
		secretstores.WithSecretsManagerClient(fakes.NewFakeSecretsManagerClient()),
		secretstores.WithSTSClient(sts),
	)
	require.NoError(t, err)

	require.NoError(t, store.Validate(ctx))
	assert.Equal(t, 1, sts.Calls)

	sts.Err = &smithy.GenericAPIError{Code: "ExpiredTokenException"}
	err = store.Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential check failed")
}
