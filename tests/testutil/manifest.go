package testutil

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

// TestManifestBuilder provides a fluent API for writing manifests.
//
// Files are written in the order they were added, so tests can rely on the
// declaration order surviving a round trip through the parser.
//
// Example usage:
//
//	path := NewTestManifest(t).
//	    WithProvider("aws").
//	    WithFile("dotenv", ".env", "app/dotenv").
//	    WriteYAML()
type TestManifestBuilder struct {
	t        *testing.T
	dir      string
	provider string
	timeout  int
	aws      map[string]string
	files    []manifestFile
}

type manifestFile struct {
	name        string
	path        string
	secret      string
	description string
	tags        map[string]string
}

// NewTestManifest creates a builder writing into a fresh temporary directory.
func NewTestManifest(t *testing.T) *TestManifestBuilder {
	t.Helper()
	return &TestManifestBuilder{t: t, dir: t.TempDir(), aws: map[string]string{}}
}

// Dir returns the directory the manifest is written to.
func (b *TestManifestBuilder) Dir() string {
	return b.dir
}

// InDir writes the manifest into dir instead of the temporary directory.
func (b *TestManifestBuilder) InDir(dir string) *TestManifestBuilder {
	b.dir = dir
	return b
}

// WithProvider sets backend.provider.
func (b *TestManifestBuilder) WithProvider(provider string) *TestManifestBuilder {
	b.provider = provider
	return b
}

// WithTimeout sets backend.timeout_ms.
func (b *TestManifestBuilder) WithTimeout(ms int) *TestManifestBuilder {
	b.timeout = ms
	return b
}

// WithAWS sets a key of the aws table, e.g. "region".
func (b *TestManifestBuilder) WithAWS(key, value string) *TestManifestBuilder {
	b.aws[key] = value
	return b
}

// WithFile declares a secret file.
func (b *TestManifestBuilder) WithFile(name, path, secret string) *TestManifestBuilder {
	b.files = append(b.files, manifestFile{name: name, path: path, secret: secret})
	return b
}

// WithFileMetadata declares a secret file with creation metadata.
func (b *TestManifestBuilder) WithFileMetadata(name, path, secret, description string, tags map[string]string) *TestManifestBuilder {
	b.files = append(b.files, manifestFile{
		name:        name,
		path:        path,
		secret:      secret,
		description: description,
		tags:        tags,
	})
	return b
}

// WriteYAML writes secret-sync.yaml and returns its path.
func (b *TestManifestBuilder) WriteYAML() string {
	b.t.Helper()

	var sb strings.Builder
	b.writeBackend(&sb, "backend:\n", "  %s: %s\n")
	if len(b.aws) > 0 {
		sb.WriteString("aws:\n")
		for _, k := range slices.Sorted(maps.Keys(b.aws)) {
			fmt.Fprintf(&sb, "  %s: %s\n", k, strconv.Quote(b.aws[k]))
		}
	}
	if len(b.files) > 0 {
		sb.WriteString("files:\n")
		for _, f := range b.files {
			fmt.Fprintf(&sb, "  %s:\n", strconv.Quote(f.name))
			fmt.Fprintf(&sb, "    path: %s\n", strconv.Quote(f.path))
			fmt.Fprintf(&sb, "    secret: %s\n", strconv.Quote(f.secret))
			if f.description != "" || len(f.tags) > 0 {
				sb.WriteString("    metadata:\n")
				if f.description != "" {
					fmt.Fprintf(&sb, "      description: %s\n", strconv.Quote(f.description))
				}
				if len(f.tags) > 0 {
					sb.WriteString("      tags:\n")
					for _, k := range slices.Sorted(maps.Keys(f.tags)) {
						fmt.Fprintf(&sb, "        %s: %s\n", strconv.Quote(k), strconv.Quote(f.tags[k]))
					}
				}
			}
		}
	}

	return b.write("secret-sync.yaml", sb.String())
}

// WriteTOML writes secret-sync.toml and returns its path.
func (b *TestManifestBuilder) WriteTOML() string {
	b.t.Helper()

	var sb strings.Builder
	b.writeBackend(&sb, "[backend]\n", "%s = %s\n")
	if len(b.aws) > 0 {
		sb.WriteString("\n[aws]\n")
		for _, k := range slices.Sorted(maps.Keys(b.aws)) {
			fmt.Fprintf(&sb, "%s = %s\n", k, strconv.Quote(b.aws[k]))
		}
	}
	for _, f := range b.files {
		fmt.Fprintf(&sb, "\n[files.%s]\n", strconv.Quote(f.name))
		fmt.Fprintf(&sb, "path = %s\n", strconv.Quote(f.path))
		fmt.Fprintf(&sb, "secret = %s\n", strconv.Quote(f.secret))
		if f.description != "" {
			fmt.Fprintf(&sb, "metadata.description = %s\n", strconv.Quote(f.description))
		}
		for _, k := range slices.Sorted(maps.Keys(f.tags)) {
			fmt.Fprintf(&sb, "metadata.tags.%s = %s\n", strconv.Quote(k), strconv.Quote(f.tags[k]))
		}
	}

	return b.write("secret-sync.toml", sb.String())
}

func (b *TestManifestBuilder) writeBackend(sb *strings.Builder, header, line string) {
	if b.provider == "" && b.timeout == 0 {
		return
	}
	sb.WriteString(header)
	if b.provider != "" {
		fmt.Fprintf(sb, line, "provider", strconv.Quote(b.provider))
	}
	if b.timeout != 0 {
		fmt.Fprintf(sb, line, "timeout_ms", strconv.Itoa(b.timeout))
	}
}

func (b *TestManifestBuilder) write(name, content string) string {
	b.t.Helper()
	path := filepath.Join(b.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		b.t.Fatalf("Failed to write manifest %s: %v", path, err)
	}
	return path
}

// WriteManifest writes content verbatim to dir/name and returns the path.
func WriteManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write manifest %s: %v", path, err)
	}
	return path
}
