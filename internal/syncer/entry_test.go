package syncer_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/secretsync/internal/syncer"
)

func TestResolvePath(t *testing.T) {
	work := filepath.Join(string(filepath.Separator), "srv", "app")
	abs := filepath.Join(string(filepath.Separator), "etc", "app", ".env")

	assert.Equal(t, filepath.Join(work, ".env"), syncer.Entry{Path: ".env"}.ResolvePath(work))
	assert.Equal(t, filepath.Join(work, "config", "db.json"), syncer.Entry{Path: "config/db.json"}.ResolvePath(work))
	assert.Equal(t, filepath.Join(filepath.Dir(work), "shared.env"), syncer.Entry{Path: "../shared.env"}.ResolvePath(work))
	assert.Equal(t, abs, syncer.Entry{Path: abs}.ResolvePath(work))
}
