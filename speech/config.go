package speech

import (
	"errors"
	"fmt"
	"time"
)

// Default driver parameters. Poll interval is fixed rather than backed
// off: job completion is bursty, and a longer interval only trades
// latency for fewer calls.
const (
	DefaultLocale       = "en-US"
	DefaultDisplayName  = "Consultation Upload"
	DefaultPollInterval = 5 * time.Second
	DefaultPollDeadline = 120 * time.Second
	DefaultTimeout      = 30 * time.Second
)

// Config holds transcription backend configuration.
type Config struct {
	// BaseURL is the backend API base, e.g.
	// "https://eastus.api.cognitive.microsoft.com/speechtotext/v3.0".
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// APIKey is the subscription key sent on every call.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Locale is the expected audio locale.
	Locale string `yaml:"locale" mapstructure:"locale"`

	// DisplayName labels submitted jobs in the backend.
	DisplayName string `yaml:"display_name" mapstructure:"display_name"`

	// PollInterval is the fixed quiescent wait between status polls.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// PollDeadline bounds the total wait from submission. Past it the job
	// is treated as TimedOut regardless of remote state.
	PollDeadline time.Duration `yaml:"poll_deadline" mapstructure:"poll_deadline"`

	// Timeout bounds each individual HTTP call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.DisplayName == "" {
		c.DisplayName = DefaultDisplayName
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollDeadline <= 0 {
		c.PollDeadline = DefaultPollDeadline
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("speech: base_url is required"))
	}
	if c.APIKey == "" {
		errs = append(errs, errors.New("speech: api_key is required"))
	}
	if c.PollInterval > c.PollDeadline {
		errs = append(errs, fmt.Errorf("speech: poll_interval %v exceeds poll_deadline %v", c.PollInterval, c.PollDeadline))
	}
	if len(errs) > 0 {
		return fmt.Errorf("speech: invalid config: %w", errors.Join(errs...))
	}
	return nil
}
