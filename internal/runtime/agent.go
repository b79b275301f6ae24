// Package runtime provides the Agent that owns the configuration store, the
// call recorder, the prompt builder, and the dispatcher, and the Stubs
// declared on it.
//
// An Agent assumes a single logical thread of control per configuration
// scope. Concurrent stub calls on one Agent race on scope restore and must be
// serialized by the caller.
package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/prompt"
	"github.com/tjfontaine/secretagent/internal/recorder"
	"github.com/tjfontaine/secretagent/internal/registration"
	"github.com/tjfontaine/secretagent/internal/telemetry"
)

// Agent is the entry point for declaring and calling stubs.
type Agent struct {
	store      *config.Store
	recorder   *recorder.Recorder
	builder    *prompt.Builder
	dispatcher *dispatch.Dispatcher

	// Set by options before construction completes.
	settings   *config.Settings
	registry   *dispatch.Registry
	promptOpts []prompt.Option
	counter    dispatch.TokenCounter

	out    io.Writer
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an Agent. Without WithRegistry every built-in backend is
// available; without WithSettings the base configuration starts empty.
func New(opts ...Option) (*Agent, error) {
	a := &Agent{
		store:    config.NewStore(),
		recorder: recorder.New(),
		out:      os.Stdout,
		logger:   slog.Default(),
		tracer:   telemetry.Tracer(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if a.settings != nil {
		if err := a.store.Configure(a.settings.Options()); err != nil {
			return nil, fmt.Errorf("apply settings: %w", err)
		}
	}
	if a.registry == nil {
		a.registry = registration.NewRegistry(a.settings)
	}

	builder, err := prompt.NewBuilder(a.promptOpts...)
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}
	a.builder = builder

	dopts := []dispatch.Option{
		dispatch.WithOutput(a.out),
		dispatch.WithLogger(a.logger),
	}
	if a.counter != nil {
		dopts = append(dopts, dispatch.WithTokenCounter(a.counter))
	}
	a.dispatcher = dispatch.New(a.registry, dopts...)

	return a, nil
}

// Configure merges opts into the base configuration permanently.
func (a *Agent) Configure(opts config.Options) error {
	return a.store.Configure(opts)
}

// Get returns the value of key, preferring a non-nil value in local.
func (a *Agent) Get(key string, local config.Options) any {
	return a.store.Get(key, local)
}

// Configuration runs fn with opts merged into the configuration and restores
// the previous configuration on every exit path.
func (a *Agent) Configuration(opts config.Options, fn func() error) error {
	return a.store.Scope(opts, fn)
}

// Recording runs fn with call recording on. The log passed to fn receives
// every stub call completed while fn runs and is frozen afterwards.
func (a *Agent) Recording(fn func(*recorder.Log) error) error {
	return a.recorder.Scope(fn)
}

// StartRecording turns recording on with a fresh log. Call stop to end it.
func (a *Agent) StartRecording() (log *recorder.Log, stop func()) {
	return a.recorder.Start()
}

// Registry returns the backend registry used for dispatch.
func (a *Agent) Registry() *dispatch.Registry {
	return a.registry
}
