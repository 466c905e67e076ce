package syncer

import (
	"context"

	"github.com/systmms/secretsync/internal/secure"
	"github.com/systmms/secretsync/pkg/filestore"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// PullOne fetches the entry's secret and writes it to the entry's file.
func PullOne(ctx context.Context, store secretstore.SecretStore, files filestore.FileStore, workingDir string, entry Entry) error {
	value, err := store.Get(ctx, entry.SecretName)
	if err != nil {
		return &EntryError{Op: "pull", Step: StepRetrieve, Entry: entry, Err: err}
	}

	data := value.Bytes()
	defer secure.Wipe(data)

	if err := files.Write(ctx, entry.ResolvePath(workingDir), data); err != nil {
		return &EntryError{Op: "pull", Step: StepWrite, Entry: entry, Err: err}
	}

	return nil
}

// PullMany pulls entries one after another in order and stops at the first
// failure. Entries before the failing one have already been written.
func PullMany(ctx context.Context, store secretstore.SecretStore, files filestore.FileStore, workingDir string, entries []Entry) error {
	for _, entry := range entries {
		if err := PullOne(ctx, store, files, workingDir, entry); err != nil {
			return err
		}
	}
	return nil
}
