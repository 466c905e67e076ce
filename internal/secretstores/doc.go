// Package secretstores implements secretstore.SecretStore for the backends
// secret-sync can talk to: AWS Secrets Manager, AWS SSM Parameter Store,
// GCP Secret Manager and the OS keyring.
//
// Every backend follows the same write protocol. A push first tries to
// create the secret with its description and tags. When the backend reports
// that the secret already exists, the value alone is written as a new
// version, so metadata is only ever set on creation.
//
// Backends are built from manifest settings through a Registry. Instrument
// wraps any store to record call outcomes in Prometheus metrics.
package secretstores
