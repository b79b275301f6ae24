package secretagent

import "github.com/tjfontaine/secretagent/internal/domain"

// Error is the error type returned by stub calls.
type Error = domain.Error

// ErrorKind is the category of an Error.
type ErrorKind = domain.ErrorKind

// ServiceCode refines service errors.
type ServiceCode = domain.ServiceCode

// Error kinds.
const (
	KindConfiguration     = domain.KindConfiguration
	KindService           = domain.KindService
	KindMalformedResponse = domain.KindMalformedResponse
	KindTypeCoercion      = domain.KindTypeCoercion
)

// Sentinels for errors.Is.
var (
	ErrConfiguration     = domain.ErrConfiguration
	ErrService           = domain.ErrService
	ErrMalformedResponse = domain.ErrMalformedResponse
	ErrTypeCoercion      = domain.ErrTypeCoercion
)

// ResultKind is the declared result type of a stub.
type ResultKind = domain.ResultKind

// Result kinds.
const (
	KindUnknown  = domain.KindUnknown
	KindBoolean  = domain.KindBoolean
	KindInteger  = domain.KindInteger
	KindReal     = domain.KindReal
	KindText     = domain.KindText
	KindSequence = domain.KindSequence
	KindSet      = domain.KindSet
	KindMapping  = domain.KindMapping
	KindTuple    = domain.KindTuple
)

// KindOf returns the kind of err, or "" when err is not an *Error.
var KindOf = domain.KindOf
