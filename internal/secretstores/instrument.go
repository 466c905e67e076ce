package secretstores

import (
	"context"

	"github.com/systmms/secretsync/internal/metrics"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// instrumented records the outcome of every call on the wrapped store
type instrumented struct {
	next    secretstore.SecretStore
	backend string
	metrics *metrics.Metrics
}

// Instrument wraps store so each Get and Upsert is counted by outcome. With
// nil metrics the store is returned unchanged.
func Instrument(store secretstore.SecretStore, backend string, m *metrics.Metrics) secretstore.SecretStore {
	if m == nil {
		return store
	}
	return &instrumented{next: store, backend: backend, metrics: m}
}

func (i *instrumented) Get(ctx context.Context, name string) (secretstore.Secret, error) {
	value, err := i.next.Get(ctx, name)
	i.metrics.RecordBackendCall(i.backend, "get", outcome(err))
	return value, err
}

func (i *instrumented) Upsert(ctx context.Context, name string, value secretstore.Secret, metadata secretstore.Metadata) error {
	err := i.next.Upsert(ctx, name, value, metadata)
	i.metrics.RecordBackendCall(i.backend, "upsert", outcome(err))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case secretstore.IsNotFound(err):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
