// Package secretagent provides the public API for declaring functions whose
// bodies are answered by a language model.
//
// A stub is declared with a name, typed parameters, a result kind, and
// documentation. Calling it renders a prompt from that declaration and the
// arguments, sends it to the configured service, and converts the answer to
// the declared kind:
//
//	translate := secretagent.Declare("translate").
//	    Param("english_sentence", "str").
//	    Returns(secretagent.KindText).
//	    Doc("Translate a sentence in English to French.").
//	    MustBuild()
//
//	secretagent.Configure(secretagent.Options{"service": "anthropic"})
//	out, err := secretagent.Call[string](ctx, translate, "What's for lunch today?")
package secretagent

import (
	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/literal"
	"github.com/tjfontaine/secretagent/internal/recorder"
	"github.com/tjfontaine/secretagent/internal/registration"
	"github.com/tjfontaine/secretagent/internal/runtime"
)

// Agent owns configuration, recording, and dispatch for the stubs declared
// on it. See internal/runtime.Agent for full documentation.
type Agent = runtime.Agent

// Stub is a declared, callable function.
type Stub = runtime.Stub

// Declaration builds a Stub.
type Declaration = runtime.Declaration

// Option is a functional option for configuring an Agent.
type Option = runtime.Option

// Options is a set of configuration values keyed by name.
type Options = config.Options

// Settings is process configuration loaded from a file and the environment.
type Settings = config.Settings

// BackendConfig configures one backend.
type BackendConfig = config.BackendConfig

// Log is the ordered list of calls completed during a recording.
type Log = recorder.Log

// Event is one recorded call.
type Event = recorder.Event

// Registry, Factory, and Backend let callers plug in their own services.
type (
	Registry    = dispatch.Registry
	Factory     = dispatch.Factory
	Backend     = dispatch.Backend
	BackendFunc = dispatch.BackendFunc
)

// Literal container values produced for tuple, set, and dict results.
type (
	Tuple = literal.Tuple
	Set   = literal.Set
	Dict  = literal.Dict
)

// Recognized configuration keys.
const (
	KeyService      = config.KeyService
	KeyModel        = config.KeyModel
	KeyEchoCall     = config.KeyEchoCall
	KeyEchoResponse = config.KeyEchoResponse
	KeyEchoService  = config.KeyEchoService
)

// New creates a new Agent with the given options.
// Example:
//
//	agent, err := secretagent.New(
//	    secretagent.WithSettingsFile("secretagent.yaml"),
//	    secretagent.WithOutput(os.Stderr),
//	)
var New = runtime.New

// Configuration options
var (
	WithSettings     = runtime.WithSettings
	WithSettingsFile = runtime.WithSettingsFile
	WithRegistry     = runtime.WithRegistry
	WithOutput       = runtime.WithOutput
	WithLogger       = runtime.WithLogger
	WithTemplate     = runtime.WithTemplate
	WithTemplateFile = runtime.WithTemplateFile
	WithTokenCounter = runtime.WithTokenCounter
	WithTracer       = runtime.WithTracer
)

// LoadSettings reads settings from a YAML file and SECRETAGENT_ environment
// variables.
var LoadSettings = config.Load

// NewRegistry returns a registry with the null backend and every built-in
// backend.
var NewRegistry = registration.NewRegistry

// NewSet builds a Set from members.
var NewSet = literal.NewSet

// Format renders a value in literal syntax.
var Format = literal.Format
