// Package fakes provides test doubles for secret-sync interfaces.
//
// FakeSecretStore and FakeFileStore are in-memory implementations of the
// capabilities the sync engine depends on. The SDK fakes stand in for the
// AWS and GCP clients so backends can be tested without network access.
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Every fake copies byte slices it is handed or hands out, because the sync
// engine wipes its buffers once a call returns.
//
// Usage:
//
//	log := &fakes.CallLog{}
//	store := fakes.NewFakeSecretStore().WithCallLog(log)
//	files := fakes.NewFakeFileStore().WithCallLog(log)
//	store.Put("db", secretstore.Text("hunter2"))
//
//	err := syncer.PullMany(ctx, store, files, "/work", entries)
//	// Inspect log.Calls() for ordering...
package fakes
