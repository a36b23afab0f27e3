// Package azblob implements storage.Storage against the Azure Blob REST
// surface using SAS tokens. Mutations use a write-scoped SAS; SignedURL
// embeds a separate read-scoped SAS so the capability handed to the
// transcription backend can neither write nor list.
package azblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient"
	"github.com/OptimalGrowthPartner/Chiro-backend/logger"
	"github.com/OptimalGrowthPartner/Chiro-backend/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderAzureBlob, func(_ storage.Config, providerCfg any, _ *logger.Logger) (storage.Storage, error) {
		c, ok := providerCfg.(*Config)
		if !ok {
			return nil, fmt.Errorf("azblob: expected *azblob.Config, got %T", providerCfg)
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return NewStorage(c)
	})
}

// Config holds Azure Blob specific storage configuration.
type Config struct {
	// ContainerURL is the container base URL, e.g.
	// "https://account.blob.core.windows.net/audio".
	ContainerURL string `mapstructure:"container_url" json:"container_url"`

	// WriteSASToken is the SAS query string (without leading "?") used for
	// PUT/DELETE/HEAD calls. Requires create+write+delete permissions.
	WriteSASToken string `mapstructure:"write_sas_token" json:"-"`

	// ReadSASToken is the SAS query string embedded into signed URLs.
	// Requires read permission only.
	ReadSASToken string `mapstructure:"read_sas_token" json:"-"`

	// Timeout bounds each blob call.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// Validate checks that the Azure Blob configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.ContainerURL == "" {
		errs = append(errs, errors.New("azblob: container_url is required"))
	}
	if c.WriteSASToken == "" {
		errs = append(errs, errors.New("azblob: write_sas_token is required"))
	}
	if c.ReadSASToken == "" {
		errs = append(errs, errors.New("azblob: read_sas_token is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("azblob: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Storage implements storage.Storage over the Azure Blob REST surface.
type Storage struct {
	client *httpclient.Client
	cfg    *Config
}

// NewStorage creates a new Azure Blob storage client from the given config.
func NewStorage(cfg *Config) (*Storage, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: strings.TrimRight(cfg.ContainerURL, "/"),
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("azblob: create client: %w", err)
	}
	return &Storage{client: client, cfg: cfg}, nil
}

// Upload writes data from reader as a block blob under key.
func (s *Storage) Upload(ctx context.Context, key string, reader io.Reader) error {
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPut,
		Path:   s.blobPath(key, s.cfg.WriteSASToken),
		Headers: map[string]string{
			"x-ms-blob-type": "BlockBlob",
			"Content-Type":   "application/octet-stream",
		},
		Body: reader,
	})
	if err != nil {
		return fmt.Errorf("azblob: upload %s: %w", key, err)
	}
	// The blob service answers 201 on create; some gateways return 200.
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("azblob: upload %s: unexpected status %d", key, resp.StatusCode)
	}
	return nil
}

// Delete removes the blob at key. Returns nil if the blob does not exist.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   s.blobPath(key, s.cfg.WriteSASToken),
	})
	if err != nil {
		if httpclient.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("azblob: delete %s: %w", key, err)
	}
	return nil
}

// Exists checks whether a blob exists at key.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodHead,
		Path:   s.blobPath(key, s.cfg.WriteSASToken),
	})
	if err != nil {
		if httpclient.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("azblob: head %s: %w", key, err)
	}
	return true, nil
}

// SignedURL returns the blob URL with the read-scoped SAS embedded.
// Expiry is carried by the SAS token itself; the expiry argument is the
// caller's expectation and is not re-signed here.
func (s *Storage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return strings.TrimRight(s.cfg.ContainerURL, "/") + "/" + key + "?" + s.cfg.ReadSASToken, nil
}

func (s *Storage) blobPath(key, sas string) string {
	return "/" + key + "?" + sas
}

// compile-time check
var _ storage.Storage = (*Storage)(nil)
