// Package domain provides the stub descriptor, result kinds, and the canonical
// error taxonomy shared by every stage of a stub invocation.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories a stub call can surface.
type ErrorKind string

const (
	// KindConfiguration indicates an unrecognized service or a missing required key.
	KindConfiguration ErrorKind = "configuration"

	// KindService indicates a backend transport, auth, quota, or content-policy failure.
	KindService ErrorKind = "service"

	// KindMalformedResponse indicates a response without an answer region.
	KindMalformedResponse ErrorKind = "malformed_response"

	// KindTypeCoercion indicates an answer that cannot be converted to the declared type.
	KindTypeCoercion ErrorKind = "type_coercion"
)

// ServiceCode provides additional specificity for service errors.
type ServiceCode string

const (
	ServiceCodeInvalidRequest ServiceCode = "invalid_request"
	ServiceCodeAuthentication ServiceCode = "authentication"
	ServiceCodePermission     ServiceCode = "permission"
	ServiceCodeNotFound       ServiceCode = "not_found"
	ServiceCodeRateLimit      ServiceCode = "rate_limit"
	ServiceCodeOverloaded     ServiceCode = "overloaded"
	ServiceCodeRejected       ServiceCode = "rejected"
	ServiceCodeTransport      ServiceCode = "transport"
	ServiceCodeServer         ServiceCode = "server"
)

// Error is the single error type returned by the stub machinery.
type Error struct {
	// Kind is the category of error
	Kind ErrorKind

	// Message is the human-readable error message
	Message string

	// Service and Model identify the backend for service errors.
	Service string
	Model   string

	// Code refines service errors.
	Code ServiceCode

	// Text is the offending response or answer text for extraction and coercion errors.
	Text string

	// Target is the declared result kind for coercion errors.
	Target ResultKind

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindService:
		msg := e.Message
		if e.Code != "" {
			msg = fmt.Sprintf("(%s) %s", e.Code, msg)
		}
		if e.Service != "" {
			return fmt.Sprintf("%s error from %s: %s", e.Kind, e.Service, msg)
		}
		return fmt.Sprintf("%s error: %s", e.Kind, msg)
	case KindTypeCoercion:
		return fmt.Sprintf("%s error: cannot parse %q as %s: %s", e.Kind, e.Text, e.Target, e.Message)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. Sentinels carry
// only a kind, so errors.Is(err, ErrService) matches every service error.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Code == ""
}

// WithService records which backend and model produced the error.
func (e *Error) WithService(service, model string) *Error {
	e.Service = service
	e.Model = model
	return e
}

// WithCode sets the service error code.
func (e *Error) WithCode(code ServiceCode) *Error {
	e.Code = code
	return e
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Sentinels for errors.Is.
var (
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrService           = &Error{Kind: KindService}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrTypeCoercion      = &Error{Kind: KindTypeCoercion}
)

// ErrConfig creates a configuration error.
func ErrConfig(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// ErrServiceFailure creates a service error.
func ErrServiceFailure(code ServiceCode, message string) *Error {
	return &Error{Kind: KindService, Code: code, Message: message}
}

// ErrMalformed creates a malformed response error for the given raw text.
func ErrMalformed(text string) *Error {
	return &Error{Kind: KindMalformedResponse, Message: "cannot find final answer", Text: text}
}

// ErrCoercion creates a type coercion error.
func ErrCoercion(text string, target ResultKind, reason string) *Error {
	return &Error{Kind: KindTypeCoercion, Text: text, Target: target, Message: reason}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
