// Package anthropic is the Anthropic Messages API backend.
package anthropic

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tjfontaine/secretagent/internal/domain"
)

// MessagesRequest represents an Anthropic Messages API request.
type MessagesRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesResponse represents an Anthropic Messages API response.
type MessagesResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []ResponseContent `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
	Usage      MessagesUsage     `json:"usage"`
}

// ResponseContent represents content in a response.
type ResponseContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessagesUsage represents token usage in the response.
type MessagesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Text concatenates the text blocks of the response.
func (r *MessagesResponse) Text() string {
	var out string
	for _, c := range r.Content {
		if c.Type == "text" {
			out += c.Text
		}
	}
	return out
}

// ErrorResponse represents an Anthropic API error.
type ErrorResponse struct {
	Type  string    `json:"type"`
	Error *APIError `json:"error"`
}

// APIError contains error details.
type APIError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ToCanonical converts the API error to a service error. Anthropic reports
// refused prompts as invalid_request_error, so every bad request counts as
// a rejection.
func (e *APIError) ToCanonical() *domain.Error {
	var code domain.ServiceCode
	switch e.Type {
	case "invalid_request_error":
		code = domain.ServiceCodeRejected
	case "authentication_error":
		code = domain.ServiceCodeAuthentication
	case "permission_error":
		code = domain.ServiceCodePermission
	case "not_found_error":
		code = domain.ServiceCodeNotFound
	case "rate_limit_error":
		code = domain.ServiceCodeRateLimit
	case "overloaded_error":
		code = domain.ServiceCodeOverloaded
	default:
		code = domain.ServiceCodeServer
	}
	return domain.ErrServiceFailure(code, e.Error()).WithCause(e)
}

// statusCode maps an HTTP status to a service code when the body is not a
// recognizable error.
func statusCode(status int) domain.ServiceCode {
	switch status {
	case http.StatusBadRequest:
		return domain.ServiceCodeRejected
	case http.StatusUnauthorized:
		return domain.ServiceCodeAuthentication
	case http.StatusForbidden:
		return domain.ServiceCodePermission
	case http.StatusNotFound:
		return domain.ServiceCodeNotFound
	case http.StatusTooManyRequests:
		return domain.ServiceCodeRateLimit
	case 529:
		return domain.ServiceCodeOverloaded
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
