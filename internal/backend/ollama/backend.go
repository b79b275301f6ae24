// Package ollama is the backend for a local Ollama server's chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/domain"
)

const (
	Service         = "ollama"
	DefaultEndpoint = "http://localhost:11434"
	HostEnv         = "OLLAMA_HOST"
)

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Backend calls /api/chat without streaming.
type Backend struct {
	endpoint string
	client   *http.Client
}

// New creates a backend for the server at endpoint.
func New(endpoint string, client *http.Client) *Backend {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	return &Backend{endpoint: strings.TrimSuffix(endpoint, "/"), client: client}
}

// Complete returns the assistant message content.
func (b *Backend) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		return "", domain.ErrConfig("service %s requires a model", Service)
	}

	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		msg := string(bodyBytes)
		var er errorResponse
		if json.Unmarshal(bodyBytes, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		code := domain.ServiceCodeServer
		switch {
		case resp.StatusCode == http.StatusNotFound:
			code = domain.ServiceCodeNotFound
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			code = domain.ServiceCodeInvalidRequest
		}
		return "", domain.ErrServiceFailure(code, fmt.Sprintf("ollama returned status %d: %s", resp.StatusCode, msg))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Message.Content, nil
}

// Factory returns the dispatch factory for Ollama. There is no default
// model: one must be configured or passed per call.
func Factory() dispatch.Factory {
	return dispatch.Factory{
		Name:          Service,
		Description:   "Local Ollama server",
		ModelRequired: true,
		Create: func(cfg config.BackendConfig) (dispatch.Backend, error) {
			endpoint := cfg.BaseURL
			if endpoint == "" {
				endpoint = os.Getenv(HostEnv)
			}
			return New(endpoint, dispatch.HTTPClient(cfg)), nil
		},
	}
}
