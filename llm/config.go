package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient"
)

// Config holds configuration for creating an LLM adapter. It is
// provider-agnostic — the Dialect field selects the provider mapping.
type Config struct {
	// Dialect selects the provider mapping (e.g., "azopenai").
	// Must match a dialect registered via RegisterDialect.
	Dialect string `yaml:"dialect" mapstructure:"dialect"`

	// BaseURL is the provider's API base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Model is the default model or deployment name.
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the default sampling temperature (0.0-1.0).
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens is the default maximum tokens for responses. 0 means
	// provider default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout for HTTP requests. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// APIKey authenticates requests; the dialect decides its placement.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Auth overrides APIKey placement entirely when set.
	Auth *httpclient.AuthConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Dialect == "" {
		errs = append(errs, errors.New("llm: dialect is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("llm: base_url is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("llm: invalid config: %w", errors.Join(errs...))
	}
	return nil
}
