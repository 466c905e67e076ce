package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretsync/internal/config"
	"github.com/systmms/secretsync/tests/testutil"
)

func TestDiscoverWalksUpParents(t *testing.T) {
	root := t.TempDir()
	manifest := testutil.WriteManifest(t, root, "secret-sync.yaml", "files: {}\n")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o700))

	found, err := config.Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, manifest, found)
}

func TestDiscoverPrefersNearest(t *testing.T) {
	root := t.TempDir()
	testutil.WriteManifest(t, root, "secret-sync.yaml", "")
	child := filepath.Join(root, "child")
	require.NoError(t, os.MkdirAll(child, 0o700))
	nearest := testutil.WriteManifest(t, child, "secret-sync.json", "{}")

	found, err := config.Discover(child)
	require.NoError(t, err)
	assert.Equal(t, nearest, found)
}

func TestDiscoverPriorityWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteManifest(t, dir, "secret-sync.json", "{}")
	testutil.WriteManifest(t, dir, "secret-sync.yml", "")
	toml := testutil.WriteManifest(t, dir, "secret-sync.toml", "")

	found, err := config.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, toml, found)
}

func TestDiscoverRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "secret-sync.toml"), 0o700))

	_, err := config.Discover(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected secret-sync.toml to be a file but got a directory")
	assert.NotErrorIs(t, err, config.ErrManifestNotFound)
}

func TestDiscoverNotFound(t *testing.T) {
	// Nothing above a fresh temp dir is expected to hold a manifest.
	dir := t.TempDir()
	_, err := config.Discover(dir)
	if err == nil {
		t.Skip("a secret-sync manifest exists above the temp directory")
	}
	assert.ErrorIs(t, err, config.ErrManifestNotFound)
	assert.Contains(t, err.Error(), "could not find a manifest")
}
