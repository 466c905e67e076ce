package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(t *testing.T, dir, rel string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

// AssertFileContents verifies that a file exists and holds expected.
func AssertFileContents(t *testing.T, path string, expected string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if assert.NoError(t, err, "Failed to read file %s", path) {
		assert.Equal(t, expected, string(data), "Unexpected contents in %s", path)
	}
}

// AssertSecretRedacted verifies that a secret value does not appear in
// output and that the redaction marker does.
func AssertSecretRedacted(t *testing.T, output, secretValue string) {
	t.Helper()
	assert.NotContains(t, output, secretValue,
		"Secret value %q should be redacted, but appears in output", secretValue)
	assert.Contains(t, output, "[REDACTED]")
}
