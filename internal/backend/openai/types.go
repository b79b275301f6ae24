// Package openai is the chat completions backend for OpenAI and
// OpenAI-compatible services.
package openai

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tjfontaine/secretagent/internal/domain"
)

// ChatCompletionRequest represents an OpenAI chat completion request.
type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature *float32                `json:"temperature,omitempty"`
}

// ChatCompletionMessage represents a message in the chat completion request/response.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents an OpenAI chat completion response.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *Usage                 `json:"usage,omitempty"`
}

// ChatCompletionChoice represents a choice in the chat completion response.
type ChatCompletionChoice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse represents an OpenAI error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents an OpenAI API error.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// ToCanonical converts the API error to a service error.
func (e *APIError) ToCanonical(status int) *domain.Error {
	return domain.ErrServiceFailure(mapErrorType(status, e.Type, e.Code, e.Message), e.Message).WithCause(e)
}

// mapErrorType maps OpenAI error types, codes and HTTP status to a service code.
func mapErrorType(status int, errType, errCode, message string) domain.ServiceCode {
	switch errCode {
	case "content_filter", "content_policy_violation":
		return domain.ServiceCodeRejected
	case "rate_limit_exceeded", "insufficient_quota":
		return domain.ServiceCodeRateLimit
	case "invalid_api_key":
		return domain.ServiceCodeAuthentication
	case "model_not_found":
		return domain.ServiceCodeNotFound
	}

	if strings.Contains(strings.ToLower(message), "content management policy") {
		return domain.ServiceCodeRejected
	}

	switch errType {
	case "invalid_request_error":
		return domain.ServiceCodeInvalidRequest
	case "authentication_error":
		return domain.ServiceCodeAuthentication
	case "permission_denied", "permission_error":
		return domain.ServiceCodePermission
	case "not_found", "not_found_error":
		return domain.ServiceCodeNotFound
	case "rate_limit_error", "rate_limit_exceeded":
		return domain.ServiceCodeRateLimit
	case "service_unavailable", "overloaded_error":
		return domain.ServiceCodeOverloaded
	case "server_error":
		return domain.ServiceCodeServer
	}
	return statusCode(status)
}

// statusCode maps an HTTP status to a service code.
func statusCode(status int) domain.ServiceCode {
	switch {
	case status == http.StatusUnauthorized:
		return domain.ServiceCodeAuthentication
	case status == http.StatusForbidden:
		return domain.ServiceCodePermission
	case status == http.StatusNotFound:
		return domain.ServiceCodeNotFound
	case status == http.StatusTooManyRequests:
		return domain.ServiceCodeRateLimit
	case status == http.StatusServiceUnavailable:
		return domain.ServiceCodeOverloaded
	case status >= 400 && status < 500:
		return domain.ServiceCodeInvalidRequest
	default:
		return domain.ServiceCodeServer
	}
}

// ParseErrorResponse attempts to parse an error response from JSON.
func ParseErrorResponse(data []byte) (*APIError, error) {
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return nil, err
	}
	if errResp.Error == nil {
		return nil, nil
	}
	return errResp.Error, nil
}
