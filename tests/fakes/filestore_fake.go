package fakes

import (
	"context"
	"sync"

	"github.com/systmms/secretsync/pkg/filestore"
)

// FakeFileStore is an in-memory filestore.FileStore keyed by path.
type FakeFileStore struct {
	// ReadErrors and WriteErrors inject failures per path.
	ReadErrors  map[string]error
	WriteErrors map[string]error

	mu    sync.Mutex
	files map[string][]byte
	log   *CallLog
}

// NewFakeFileStore creates an empty file store.
func NewFakeFileStore() *FakeFileStore {
	return &FakeFileStore{
		ReadErrors:  make(map[string]error),
		WriteErrors: make(map[string]error),
		files:       make(map[string][]byte),
	}
}

// WithCallLog records every call into log.
func (f *FakeFileStore) WithCallLog(log *CallLog) *FakeFileStore {
	f.log = log
	return f
}

// Put seeds a file without recording a call.
func (f *FakeFileStore) Put(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = clone(data)
}

// Content returns a copy of the file at path.
func (f *FakeFileStore) Content(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	return clone(data), ok
}

// Len returns the number of files.
func (f *FakeFileStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

// Read implements filestore.FileStore.
func (f *FakeFileStore) Read(ctx context.Context, path string) ([]byte, error) {
	f.log.Record("Read", path)
	if err, ok := f.ReadErrors[path]; ok {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, &filestore.NotFoundError{Path: path}
	}
	return clone(data), nil
}

// Write implements filestore.FileStore.
func (f *FakeFileStore) Write(ctx context.Context, path string, data []byte) error {
	f.log.Record("Write", path)
	if err, ok := f.WriteErrors[path]; ok {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = clone(data)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ filestore.FileStore = (*FakeFileStore)(nil)
