// Package testutil provides test helpers shared by secret-sync packages.
//
// It contains a manifest builder that writes secret-sync manifests into a
// temporary directory, a logger that captures output for assertions, and
// small file helpers.
package testutil
