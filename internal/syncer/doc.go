// Package syncer moves secret values between a secret store and local files.
//
// A run takes the entries declared in a manifest, narrows them down with a
// TargetFilter and then pulls (store to file) or pushes (file to store) each
// selected entry. Entries are processed one at a time, in declaration order,
// and the first failure stops the run. The side effects of a failed run are
// therefore always a prefix of the entry list, and re-running from the top
// is safe because both directions are idempotent.
//
// Entries are never processed concurrently; callers relying on ordering and
// on the failure prefix must not parallelize calls to PullOne or PushOne.
package syncer
