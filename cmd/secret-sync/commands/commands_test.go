package commands_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/systmms/secretsync/cmd/secret-sync/commands"
	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/secretstore"
	"github.com/systmms/secretsync/tests/fakes"
)

// harness runs the CLI against a fake secret store with dir as the
// current directory.
type harness struct {
	t     *testing.T
	app   *commands.App
	store *fakes.FakeSecretStore
	dir   string

	// manifests lists the manifests the backend factory was called with
	manifests []*config.Manifest
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		app:   commands.NewApp(),
		store: fakes.NewFakeSecretStore(),
		dir:   t.TempDir(),
	}

	factory := func(ctx context.Context, m *config.Manifest, logger *logging.Logger) (secretstore.SecretStore, error) {
		h.manifests = append(h.manifests, m)
		return h.store, nil
	}
	for _, provider := range h.app.Registry.GetSupportedTypes() {
		h.app.Registry.RegisterFactory(provider, factory)
	}
	h.app.Getwd = func() (string, error) { return h.dir, nil }

	return h
}

func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	h.t.Helper()
	root := commands.NewRootCommand(h.app, "test")

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.Execute()
	return out.String(), errOut.String(), err
}

func (h *harness) lastManifest() *config.Manifest {
	h.t.Helper()
	if len(h.manifests) == 0 {
		h.t.Fatal("backend was never created")
	}
	return h.manifests[len(h.manifests)-1]
}
