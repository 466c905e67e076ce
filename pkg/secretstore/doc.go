// Package secretstore defines the secret store capability used by secret-sync.
//
// A secret store is any remote system that holds named secret values: AWS
// Secrets Manager, AWS SSM Parameter Store, GCP Secret Manager or the local
// OS keyring. The sync engine only ever needs two things from a store:
//
//   - Get: fetch the current value of a secret by name
//   - Upsert: create the secret, or update its value if it already exists
//
// # Secret Values
//
// A Secret is either UTF-8 text or opaque binary data. Pulled values are used
// exactly as the store returned them. Pushed values are classified from the
// local file bytes with FromBytes: valid UTF-8 becomes Text, anything else
// becomes Binary. The classification only changes how a backend transmits
// the value (a string field versus a binary field), never its content.
//
// # The Upsert Protocol
//
// Backends implement Upsert as two steps:
//
//  1. Create the secret with its value and, when set, its Metadata
//     (description and tags).
//  2. If the backend reports that the secret already exists, update the
//     value only. Metadata is never sent on the update path.
//
// Metadata therefore only ever reflects what the first push declared, and
// repeated pushes cannot overwrite descriptions or tags managed elsewhere.
// AlreadyExistsError is the internal signal between the two steps and must
// not escape Upsert.
//
// # Error Handling
//
// Stores report failures with the types in this package:
//   - NotFoundError: the secret does not exist (rendered specially by the CLI)
//   - BackendError: any other transport or API failure, with context
//
// Use IsNotFound to test for a missing secret through wrapped errors.
//
// # Security Considerations
//
// Secret implements fmt.Stringer and fmt.GoStringer so that values never
// leak through %v, %s or %#v. Stores must never log secret values; use logging.Secret when a
// value has to appear in a log line.
package secretstore
