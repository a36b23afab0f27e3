package llm

import (
	"fmt"
	"sync"

	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient"
)

// Dialect maps universal LLM types to/from a specific provider's HTTP
// format. Each provider (Azure OpenAI, Ollama, ...) has its own Dialect
// implementation handling request/response structure and auth placement.
//
// Register dialects at startup using [RegisterDialect], or pass one
// directly to [NewWithDialect].
type Dialect interface {
	// Name returns the dialect identifier (e.g., "azopenai").
	Name() string

	// ChatPath returns the API endpoint path for chat completion.
	ChatPath() string

	// BuildRequest maps a universal CompletionRequest to the provider's
	// JSON request body.
	BuildRequest(req CompletionRequest) (any, error)

	// ParseResponse maps the provider's JSON response body to a universal
	// CompletionResponse.
	ParseResponse(body []byte) (*CompletionResponse, error)

	// Auth returns the provider's auth placement for the given API key.
	Auth(apiKey string) *httpclient.AuthConfig
}

// --- Dialect Registry ---

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect adds a dialect to the global registry. Typically called
// from init() in dialect driver packages; importing the driver registers
// the dialect as a side effect.
func RegisterDialect(name string, d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[name] = d
}

// GetDialect retrieves a dialect by name from the global registry.
func GetDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown dialect %q (forgot to import driver?)", name)
	}
	return d, nil
}
