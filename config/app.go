package config

import (
	"fmt"

	"github.com/OptimalGrowthPartner/Chiro-backend/llm"
	"github.com/OptimalGrowthPartner/Chiro-backend/pipeline"
	"github.com/OptimalGrowthPartner/Chiro-backend/server"
	"github.com/OptimalGrowthPartner/Chiro-backend/speech"
	"github.com/OptimalGrowthPartner/Chiro-backend/storage"
	"github.com/OptimalGrowthPartner/Chiro-backend/storage/azblob"
	"github.com/OptimalGrowthPartner/Chiro-backend/storage/s3"
	"github.com/OptimalGrowthPartner/Chiro-backend/validation"
)

// AppConfig is the full configuration of the consultation service.
type AppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config       `yaml:"server" mapstructure:"server"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Speech        speech.Config       `yaml:"speech" mapstructure:"speech"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Pipeline      pipeline.Config     `yaml:"pipeline" mapstructure:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// StorageConfig groups the provider selection with the provider-specific
// sections. Only the selected provider's section is consulted.
type StorageConfig struct {
	storage.Config `yaml:",inline" mapstructure:",squash"`

	AzBlob azblob.Config `yaml:"azblob" mapstructure:"azblob"`
	S3     s3.Config     `yaml:"s3" mapstructure:"s3"`
}

// LLMConfig extends the provider-agnostic adapter config with the Azure
// OpenAI deployment coordinates consumed by the azopenai dialect.
type LLMConfig struct {
	llm.Config `yaml:",inline" mapstructure:",squash"`

	Deployment string `yaml:"deployment" mapstructure:"deployment" validate:"required_if=Dialect azopenai"`
	APIVersion string `yaml:"api_version" mapstructure:"api_version"`
}

// ObservabilityConfig configures the OTLP exporters.
type ObservabilityConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults cascades defaults through every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "chiro-backend"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.Config.ApplyDefaults()
	c.Speech.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	if c.LLM.Dialect == "" {
		c.LLM.Dialect = "azopenai"
	}
	if c.Observability.Endpoint == "" {
		c.Observability.Endpoint = "localhost:4318"
		c.Observability.Insecure = true
	}
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
}

// Validate cascades validation through every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Storage.Config.Validate(); err != nil {
		return fmt.Errorf("config.storage: %w", err)
	}
	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("config.speech: %w", err)
	}
	if err := c.LLM.Config.Validate(); err != nil {
		return fmt.Errorf("config.llm: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config.pipeline: %w", err)
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
