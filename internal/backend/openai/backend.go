package openai

import (
	"context"
	"fmt"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/domain"
)

// Service is the service name of this backend.
const Service = "openai"

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// APIKeyEnv is consulted when the backend config has no API key.
const APIKeyEnv = "OPENAI_API_KEY"

// Backend sends each prompt as a single user message.
type Backend struct {
	client    *Client
	maxTokens int
}

// NewBackend creates a backend over client.
func NewBackend(client *Client, maxTokens int) *Backend {
	return &Backend{client: client, maxTokens: maxTokens}
}

// Complete returns the first choice's message content.
func (b *Backend) Complete(ctx context.Context, prompt, model string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:     model,
		Messages:  []ChatCompletionMessage{{Role: "user", Content: prompt}},
		MaxTokens: b.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", domain.ErrServiceFailure(domain.ServiceCodeServer, "response has no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", domain.ErrServiceFailure(domain.ServiceCodeRejected, "response withheld by content filter")
	}
	return choice.Message.Content, nil
}

// Factory returns the dispatch factory for OpenAI.
func Factory() dispatch.Factory {
	return dispatch.Factory{
		Name:         Service,
		Description:  "OpenAI chat completions",
		DefaultModel: DefaultModel,
		Create: func(cfg config.BackendConfig) (dispatch.Backend, error) {
			return CreateFromConfig(cfg, APIKeyEnv)
		},
		ValidateConfig: func(cfg config.BackendConfig) error {
			return ValidateKey(cfg, APIKeyEnv)
		},
	}
}

// CreateFromConfig creates a backend for any OpenAI-compatible service,
// reading the API key from cfg or the first set env var.
func CreateFromConfig(cfg config.BackendConfig, envVars ...string) (*Backend, error) {
	opts := []ClientOption{WithHTTPClient(dispatch.HTTPClient(cfg))}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	return NewBackend(NewClient(cfg.APIKeyOr(envVars...), opts...), cfg.MaxTokens), nil
}

// ValidateKey fails when neither cfg nor envVars provide an API key. A
// custom base URL may point at a server that needs none.
func ValidateKey(cfg config.BackendConfig, envVars ...string) error {
	if cfg.APIKeyOr(envVars...) == "" && cfg.BaseURL == "" {
		return fmt.Errorf("no API key: set api_key or one of %v", envVars)
	}
	return nil
}
