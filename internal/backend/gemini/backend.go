// Package gemini is the Google Gemini backend, built on the genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/domain"
)

const (
	Service      = "gemini"
	DefaultModel = "gemini-1.5-flash"
	// BlockedAnswer replaces the answer of a blocked response under the
	// sentinel rejection policy.
	BlockedAnswer = "** Gemini response blocked **"
)

// APIKeyEnvs are consulted, in order, when the backend config has no key.
var APIKeyEnvs = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Backend generates content from a single text prompt.
type Backend struct {
	models    generator
	maxTokens int32
}

// New creates a Gemini backend with the given API key.
func New(ctx context.Context, cfg config.BackendConfig) (*Backend, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKeyOr(APIKeyEnvs...),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: dispatch.HTTPClient(cfg),
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Backend{models: client.Models, maxTokens: int32(cfg.MaxTokens)}, nil
}

// Complete returns the response text. A blocked prompt or a candidate
// stopped for safety reasons is reported as a rejection.
func (b *Backend) Complete(ctx context.Context, prompt, model string) (string, error) {
	var gc *genai.GenerateContentConfig
	if b.maxTokens > 0 {
		gc = &genai.GenerateContentConfig{MaxOutputTokens: b.maxTokens}
	}

	resp, err := b.models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	if err != nil {
		return "", toCanonical(err)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", domain.ErrServiceFailure(domain.ServiceCodeRejected, fmt.Sprintf("prompt blocked: %s", fb.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return "", domain.ErrServiceFailure(domain.ServiceCodeRejected, "response has no candidates")
	}
	switch reason := resp.Candidates[0].FinishReason; reason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist,
		genai.FinishReasonSPII, genai.FinishReasonRecitation:
		return "", domain.ErrServiceFailure(domain.ServiceCodeRejected, fmt.Sprintf("response blocked: %s", reason))
	}
	return resp.Text(), nil
}

func toCanonical(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	var code domain.ServiceCode
	switch apiErr.Code {
	case http.StatusBadRequest:
		code = domain.ServiceCodeInvalidRequest
	case http.StatusUnauthorized:
		code = domain.ServiceCodeAuthentication
	case http.StatusForbidden:
		code = domain.ServiceCodePermission
	case http.StatusNotFound:
		code = domain.ServiceCodeNotFound
	case http.StatusTooManyRequests:
		code = domain.ServiceCodeRateLimit
	case http.StatusServiceUnavailable:
		code = domain.ServiceCodeOverloaded
	default:
		code = domain.ServiceCodeServer
	}
	return domain.ErrServiceFailure(code, apiErr.Message).WithCause(err)
}

// Factory returns the dispatch factory for Gemini. Blocked responses
// degrade to BlockedAnswer by default.
func Factory() dispatch.Factory {
	return dispatch.Factory{
		Name:             Service,
		Description:      "Google Gemini API",
		DefaultModel:     DefaultModel,
		DefaultRejection: config.RejectionSentinel,
		RejectionText: func(*domain.Error) string {
			return BlockedAnswer
		},
		Create: func(cfg config.BackendConfig) (dispatch.Backend, error) {
			return New(context.Background(), cfg)
		},
		ValidateConfig: func(cfg config.BackendConfig) error {
			if cfg.APIKeyOr(APIKeyEnvs...) == "" {
				return fmt.Errorf("no API key: set api_key or one of %v", APIKeyEnvs)
			}
			return nil
		},
	}
}
