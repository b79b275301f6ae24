package anthropic

import (
	"context"
	"fmt"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
)

const (
	Service          = "anthropic"
	DefaultModel     = "claude-3-5-sonnet-20240620"
	DefaultMaxTokens = 4096
	APIKeyEnv        = "ANTHROPIC_API_KEY"
)

// Backend sends each prompt as a single user message at temperature 0.
type Backend struct {
	client    *Client
	maxTokens int
}

// NewBackend creates a backend over client. maxTokens <= 0 selects
// DefaultMaxTokens.
func NewBackend(client *Client, maxTokens int) *Backend {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Backend{client: client, maxTokens: maxTokens}
}

// Complete returns the text of the response.
func (b *Backend) Complete(ctx context.Context, prompt, model string) (string, error) {
	temperature := 0.0
	resp, err := b.client.CreateMessage(ctx, &MessagesRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   b.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Factory returns the dispatch factory for Anthropic. Rejected requests
// degrade to their error text by default.
func Factory() dispatch.Factory {
	return dispatch.Factory{
		Name:             Service,
		Description:      "Anthropic Messages API (Claude models)",
		DefaultModel:     DefaultModel,
		DefaultRejection: config.RejectionSentinel,
		Create: func(cfg config.BackendConfig) (dispatch.Backend, error) {
			return CreateFromConfig(cfg), nil
		},
		ValidateConfig: func(cfg config.BackendConfig) error {
			if cfg.APIKeyOr(APIKeyEnv) == "" {
				return fmt.Errorf("no API key: set api_key or %s", APIKeyEnv)
			}
			return nil
		},
	}
}

// CreateFromConfig creates a backend from configuration.
func CreateFromConfig(cfg config.BackendConfig) *Backend {
	opts := []ClientOption{WithHTTPClient(dispatch.HTTPClient(cfg))}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIVersion != "" {
		opts = append(opts, WithVersion(cfg.APIVersion))
	}
	return NewBackend(NewClient(cfg.APIKeyOr(APIKeyEnv), opts...), cfg.MaxTokens)
}
