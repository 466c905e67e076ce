package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/pkg/filestore"
)

func TestLocalRead(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocal(logging.New(false, true))

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("KEY=value\n"), 0600))

		data, err := store.Read(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []byte("KEY=value\n"), data)
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(dir, "missing.env")

		_, err := store.Read(ctx, path)
		require.Error(t, err)
		assert.True(t, filestore.IsNotFound(err))
		assert.Contains(t, err.Error(), "file does not exist")
		assert.Contains(t, err.Error(), path)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := store.Read(ctx, dir)
		require.Error(t, err)

		var ioErr *filestore.IOError
		assert.ErrorAs(t, err, &ioErr)
		assert.False(t, filestore.IsNotFound(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := store.Read(cancelled, filepath.Join(dir, ".env"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalWrite(t *testing.T) {
	ctx := context.Background()
	store := NewLocal(nil)

	t.Run("creates parent directories", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config", "nested", "app.env")

		require.NoError(t, store.Write(ctx, path, []byte("hello")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, FileMode, info.Mode().Perm())
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0600))

		require.NoError(t, store.Write(ctx, path, []byte("new")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("tolerates existing directories on retry", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "certs", "tls.key")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))

		require.NoError(t, store.Write(ctx, path, []byte{0x00, 0xff}))
		require.NoError(t, store.Write(ctx, path, []byte{0x00, 0xff}))
	})

	t.Run("empty path", func(t *testing.T) {
		err := store.Write(ctx, "", []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parent directory")
	})

	t.Run("root path", func(t *testing.T) {
		err := store.Write(ctx, string(filepath.Separator), []byte("x"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file parent path does not exist")
	})

	t.Run("bare name lands in the current directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		require.NoError(t, store.Write(ctx, ".env", []byte("A=1\n")))

		got, err := os.ReadFile(filepath.Join(dir, ".env"))
		require.NoError(t, err)
		assert.Equal(t, "A=1\n", string(got))
	})

	t.Run("parent is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

		err := store.Write(ctx, filepath.Join(blocker, "child", "app.env"), []byte("x"))
		require.Error(t, err)

		var ioErr *filestore.IOError
		assert.ErrorAs(t, err, &ioErr)
	})
}

func TestParentDir(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "nested relative", path: "config/app.env", want: "config"},
		{name: "bare name", path: ".env", want: "."},
		{name: "absolute", path: "/etc/app/app.env", want: "/etc/app"},
		{name: "root", path: "/", wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parentDir(filepath.FromSlash(tt.path))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}
