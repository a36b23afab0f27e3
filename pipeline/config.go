package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// defaultExtensions are the audio container extensions accepted for upload.
var defaultExtensions = []string{".wav", ".mp3", ".m4a", ".ogg", ".flac", ".webm"}

// Config holds the orchestrator's validation and storage parameters.
// Poll interval and deadline live in the speech client's config; locale
// lives there too.
type Config struct {
	// AllowedExtensions is the whitelist of accepted audio file
	// extensions, lowercase with leading dot.
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`

	// URLExpiry is the validity window of the signed URL handed to the
	// transcription backend. Defaults to 1h.
	URLExpiry time.Duration `yaml:"url_expiry" mapstructure:"url_expiry"`
}

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = append([]string(nil), defaultExtensions...)
	}
	if c.URLExpiry == 0 {
		c.URLExpiry = time.Hour
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("pipeline: extension %q must start with a dot", ext)
		}
		if ext != strings.ToLower(ext) {
			return fmt.Errorf("pipeline: extension %q must be lowercase", ext)
		}
	}
	if c.URLExpiry < 0 {
		return fmt.Errorf("pipeline: url_expiry must not be negative")
	}
	return nil
}

func (c *Config) allowed(ext string) bool {
	for _, e := range c.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
