package syncer

import (
	"context"

	"github.com/systmms/secretsync/internal/secure"
	"github.com/systmms/secretsync/pkg/filestore"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// PushOne reads the entry's file and upserts it as the entry's secret.
//
// File content that is valid UTF-8 is sent as text, anything else as binary.
func PushOne(ctx context.Context, store secretstore.SecretStore, files filestore.FileStore, workingDir string, entry Entry) error {
	data, err := files.Read(ctx, entry.ResolvePath(workingDir))
	if err != nil {
		return &EntryError{Op: "push", Step: StepRead, Entry: entry, Err: err}
	}
	defer secure.Wipe(data)

	value := secretstore.FromBytes(data)
	if err := store.Upsert(ctx, entry.SecretName, value, entry.Metadata); err != nil {
		return &EntryError{Op: "push", Step: StepStore, Entry: entry, Err: err}
	}

	return nil
}

// PushMany pushes entries one after another in order and stops at the first
// failure. Entries before the failing one have already been stored.
func PushMany(ctx context.Context, store secretstore.SecretStore, files filestore.FileStore, workingDir string, entries []Entry) error {
	for _, entry := range entries {
		if err := PushOne(ctx, store, files, workingDir, entry); err != nil {
			return err
		}
	}
	return nil
}
