package storage

import "fmt"

// Provider constants for supported storage backends.
const (
	ProviderAzureBlob = "azblob"
	ProviderS3        = "s3"
)

// DefaultProvider is used when no provider is configured.
const DefaultProvider = ProviderAzureBlob

// Config holds storage configuration. Provider-specific settings live in
// the provider packages (azblob.Config, s3.Config). Signed-URL lifetime is
// not configured here: callers pass it per SignedURL call.
type Config struct {
	// Provider selects the storage backend: "azblob" or "s3".
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderAzureBlob, ProviderS3:
		return nil
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
}
