package secretstores_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretsync/internal/metrics"
	"github.com/systmms/secretsync/internal/secretstores"
	"github.com/systmms/secretsync/pkg/secretstore"
	"github.com/systmms/secretsync/tests/fakes"
)

func TestInstrumentCountsOutcomes(t *testing.T) {
	ctx := context.Background()
	fake := fakes.NewFakeSecretStore()
	fake.Put("present", secretstore.Text("v"))
	fake.GetErrors["broken"] = errors.New("boom")

	m := metrics.New()
	store := secretstores.Instrument(fake, "aws", m)

	_, err := store.Get(ctx, "present")
	require.NoError(t, err)
	_, err = store.Get(ctx, "absent")
	require.Error(t, err)
	_, err = store.Get(ctx, "broken")
	require.Error(t, err)
	require.NoError(t, store.Upsert(ctx, "new", secretstore.Text("v"), secretstore.Metadata{}))

	expected := `
# HELP secret_sync_backend_calls_total Total number of secret store calls by outcome
# TYPE secret_sync_backend_calls_total counter
secret_sync_backend_calls_total{backend="aws",call="get",outcome="error"} 1
secret_sync_backend_calls_total{backend="aws",call="get",outcome="not_found"} 1
secret_sync_backend_calls_total{backend="aws",call="get",outcome="ok"} 1
secret_sync_backend_calls_total{backend="aws",call="upsert",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected), "secret_sync_backend_calls_total"))

	stored, ok := fake.Stored("new")
	require.True(t, ok)
	assert.Equal(t, "v", stored.Value.Text())
}

func TestInstrumentWithoutMetrics(t *testing.T) {
	fake := fakes.NewFakeSecretStore()
	assert.Same(t, secretstore.SecretStore(fake), secretstores.Instrument(fake, "aws", nil))
}
