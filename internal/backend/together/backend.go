// Package together is the Together AI backend. Together serves an
// OpenAI-compatible chat completions API, so this reuses the openai client.
package together

import (
	"github.com/tjfontaine/secretagent/internal/backend/openai"
	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
)

const (
	Service        = "together"
	DefaultModel   = "meta-llama/Meta-Llama-3.1-8B-Instruct-Turbo"
	DefaultBaseURL = "https://api.together.xyz/v1"
	APIKeyEnv      = "TOGETHER_API_KEY"
)

// Factory returns the dispatch factory for Together AI.
func Factory() dispatch.Factory {
	return dispatch.Factory{
		Name:         Service,
		Description:  "Together AI chat completions (OpenAI-compatible)",
		DefaultModel: DefaultModel,
		Create: func(cfg config.BackendConfig) (dispatch.Backend, error) {
			return openai.CreateFromConfig(withDefaults(cfg), APIKeyEnv)
		},
		ValidateConfig: func(cfg config.BackendConfig) error {
			return openai.ValidateKey(cfg, APIKeyEnv)
		},
	}
}

func withDefaults(cfg config.BackendConfig) config.BackendConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg
}
