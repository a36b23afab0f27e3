// Package azopenai provides the Azure OpenAI dialect for the llm adapter.
//
// Azure OpenAI differs from the upstream OpenAI API in two ways: the chat
// endpoint is scoped to a deployment rather than a model, and the API key
// travels in an "api-key" header instead of a bearer token. Importing this
// package registers the dialect under the name "azopenai".
package azopenai

import (
	"encoding/json"
	"fmt"

	"github.com/OptimalGrowthPartner/Chiro-backend/httpclient"
	"github.com/OptimalGrowthPartner/Chiro-backend/llm"
)

// DialectName is the registered name for the Azure OpenAI dialect.
const DialectName = "azopenai"

const (
	defaultAPIVersion = "2024-02-15-preview"
	apiKeyHeader      = "api-key"
)

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect implements llm.Dialect for the Azure OpenAI chat completions API.
// Deployment and APIVersion are baked into the chat path; the zero value
// defers to the adapter's default model and the current preview API version.
type Dialect struct {
	// Deployment is the Azure deployment name. When empty, the request's
	// Model field is used as the deployment.
	Deployment string

	// APIVersion selects the api-version query parameter.
	APIVersion string
}

// Name returns the dialect identifier.
func (d *Dialect) Name() string { return DialectName }

// ChatPath returns the deployment-scoped chat completions path.
func (d *Dialect) ChatPath() string {
	version := d.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	return fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s", d.Deployment, version)
}

// Auth places the API key in the api-key header.
func (d *Dialect) Auth(apiKey string) *httpclient.AuthConfig {
	return httpclient.APIKeyAuthHeader(apiKey, apiKeyHeader)
}

// chatRequest is the Azure OpenAI chat completions request body.
type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the Azure OpenAI chat completions response body.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// BuildRequest maps a universal CompletionRequest to the Azure OpenAI
// request body. SystemPrompt, when set, is prepended as a system message.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	if len(req.Messages) == 0 && req.SystemPrompt == "" {
		return nil, fmt.Errorf("azopenai: request has no messages")
	}

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	return chatRequest{
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}, nil
}

// ParseResponse maps the Azure OpenAI response body to a universal
// CompletionResponse. A response with no choices is an error.
func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("azopenai: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("azopenai: response has no choices")
	}

	return &llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
