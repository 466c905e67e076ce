package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	dserrors "github.com/systmms/secretsync/internal/errors"
	"github.com/systmms/secretsync/internal/logging"
	"github.com/systmms/secretsync/internal/syncer"
	"github.com/systmms/secretsync/pkg/secretstore"
)

// Backend providers.
const (
	ProviderAWS      = "aws"
	ProviderAWSSSM   = "aws-ssm"
	ProviderGCP      = "gcp"
	ProviderKeyring  = "keyring"
	ProviderAkeyless = "akeyless"
)

// Defaults applied to missing settings.
const (
	DefaultProvider        = ProviderAWS
	DefaultTimeoutMs       = 30000
	DefaultKeyringService  = "secret-sync"
	DefaultAkeylessGateway = "https://api.akeyless.io"
)

// Config holds the runtime configuration
type Config struct {
	// Path of the manifest. Empty when running without one.
	Path   string
	Logger *logging.Logger

	// Manifest is set by Load, or by UseDefault for manifest-less runs.
	Manifest *Manifest
}

// Manifest is the parsed secret-sync manifest.
type Manifest struct {
	Backend  BackendConfig  `yaml:"backend" toml:"backend"`
	AWS      AWSConfig      `yaml:"aws" toml:"aws"`
	GCP      GCPConfig      `yaml:"gcp" toml:"gcp"`
	Keyring  KeyringConfig  `yaml:"keyring" toml:"keyring"`
	Akeyless AkeylessConfig `yaml:"akeyless" toml:"akeyless"`

	// Files in declaration order.
	Files []File `yaml:"-" toml:"-"`
}

// BackendConfig selects the secret store.
type BackendConfig struct {
	// Provider is one of aws, aws-ssm, gcp, keyring or akeyless (default: aws)
	Provider string `yaml:"provider" toml:"provider"`

	// TimeoutMs bounds a whole run in milliseconds (default: 30000)
	TimeoutMs int `yaml:"timeout_ms" toml:"timeout_ms"`
}

// Timeout returns the run deadline as a duration.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(DefaultTimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// AWSConfig holds settings shared by the aws and aws-ssm backends.
type AWSConfig struct {
	// Profile from the shared AWS config files
	Profile string `yaml:"profile" toml:"profile"`

	// Region overrides the region from the default chain (fallback: us-east-1)
	Region string `yaml:"region" toml:"region"`

	// Endpoint replaces the service endpoint, e.g. for a local emulator
	Endpoint string `yaml:"endpoint" toml:"endpoint"`

	// KMSKeyID encrypts new SSM parameters with a customer managed key
	KMSKeyID string `yaml:"kms_key_id" toml:"kms_key_id"`

	// Credentials are static credentials used instead of the default chain
	Credentials *AWSCredentials `yaml:"credentials" toml:"credentials"`
}

// AWSCredentials are static AWS credentials.
type AWSCredentials struct {
	AccessKeyID     logging.Secret `yaml:"access_key_id" toml:"access_key_id"`
	AccessKeySecret logging.Secret `yaml:"access_key_secret" toml:"access_key_secret"`
}

// GCPConfig holds settings for the gcp backend.
type GCPConfig struct {
	// ProjectID owning the secrets (default: GOOGLE_CLOUD_PROJECT)
	ProjectID string `yaml:"project_id" toml:"project_id"`

	// CredentialsFile is a service account key file
	CredentialsFile string `yaml:"credentials_file" toml:"credentials_file"`

	// ImpersonateServiceAccount runs calls as another service account
	ImpersonateServiceAccount string `yaml:"impersonate_service_account" toml:"impersonate_service_account"`

	// Endpoint replaces the API endpoint, e.g. for a local emulator
	Endpoint string `yaml:"endpoint" toml:"endpoint"`
}

// KeyringConfig holds settings for the keyring backend.
type KeyringConfig struct {
	// Service groups secret-sync's entries in the OS keyring (default: secret-sync)
	Service string `yaml:"service" toml:"service"`
}

// AkeylessConfig holds settings for the akeyless backend. Missing access
// credentials fall back to AKEYLESS_ACCESS_ID and AKEYLESS_ACCESS_KEY.
type AkeylessConfig struct {
	// GatewayURL is the API gateway (default: https://api.akeyless.io)
	GatewayURL string `yaml:"gateway_url" toml:"gateway_url"`

	// AccessID of the API key auth method
	AccessID string `yaml:"access_id" toml:"access_id"`

	// AccessKey of the API key auth method
	AccessKey logging.Secret `yaml:"access_key" toml:"access_key"`
}

// File declares one secret file.
type File struct {
	// Name is the key the file is declared under.
	Name string `yaml:"-" toml:"-"`

	// Path of the file, relative to the manifest directory unless absolute
	Path string `yaml:"path" toml:"path"`

	// Secret is the name of the secret in the store
	Secret string `yaml:"secret" toml:"secret"`

	// Metadata is attached when a push creates the secret
	Metadata secretstore.Metadata `yaml:"metadata" toml:"metadata"`
}

// Default returns the manifest used when none is found.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Backend.Provider == "" {
		m.Backend.Provider = DefaultProvider
	}
	if m.Backend.TimeoutMs == 0 {
		m.Backend.TimeoutMs = DefaultTimeoutMs
	}
	if m.Keyring.Service == "" {
		m.Keyring.Service = DefaultKeyringService
	}
	if m.Akeyless.GatewayURL == "" {
		m.Akeyless.GatewayURL = DefaultAkeylessGateway
	}
}

// OverrideAWS applies command line overrides for the AWS profile and region.
func (m *Manifest) OverrideAWS(profile, region string) {
	if profile != "" {
		m.AWS.Profile = profile
	}
	if region != "" {
		m.AWS.Region = region
	}
}

// Entries converts the declared files into sync entries, in order.
func (m *Manifest) Entries() []syncer.Entry {
	entries := make([]syncer.Entry, 0, len(m.Files))
	for _, f := range m.Files {
		entries = append(entries, syncer.Entry{
			Name:       f.Name,
			Path:       f.Path,
			SecretName: f.Secret,
			Metadata: secretstore.Metadata{
				Description: f.Metadata.Description,
				Tags:        maps.Clone(f.Metadata.Tags),
			},
		})
	}
	return entries
}

// FileNames lists the manifest names Discover looks for, in priority order.
var FileNames = []string{
	"secret-sync.toml",
	"secret-sync.yaml",
	"secret-sync.yml",
	"secret-sync.json",
}

// Load reads, validates and parses the manifest at c.Path
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Path:       c.Path,
				Message:    "manifest file not found",
				Suggestion: "Create " + FileNames[0] + " or pass --config",
				Err:        ErrManifestNotFound,
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read manifest file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	format, err := formatFor(c.Path)
	if err != nil {
		return err
	}

	m, err := Parse(data, format)
	if err != nil {
		var cfgErr dserrors.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = c.Path
			return cfgErr
		}
		return err
	}

	if c.Logger != nil {
		c.Logger.Debug("Loaded manifest %s with %d file(s), backend %s", c.Path, len(m.Files), m.Backend.Provider)
	}

	c.Manifest = m
	return nil
}

// UseDefault installs the default manifest for runs without one.
func (c *Config) UseDefault() {
	c.Manifest = Default()
}

// WorkingDir is the directory relative file paths are resolved against:
// the directory holding the manifest.
func (c *Config) WorkingDir() (string, error) {
	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute manifest path: %w", err)
	}
	return filepath.Dir(abs), nil
}
