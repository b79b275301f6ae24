// Package dispatch sends rendered prompts to named text-completion backends.
//
// # Adding a Backend
//
// Each backend package exposes a Factory that is registered explicitly:
//
//	reg := dispatch.NewRegistry(settings.Backends)
//	reg.MustRegister(dispatch.Factory{
//	    Name:         "openai",
//	    Description:  "OpenAI chat completions",
//	    DefaultModel: "gpt-4o-mini",
//	    Create:       openai.CreateFromConfig,
//	})
//
// Backends are created lazily, on the first call that selects them, so an
// unused backend never needs credentials.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/domain"
)

// Backend completes a prompt with an optional model identifier.
type Backend interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt, model string) (string, error)

// Complete calls f.
func (f BackendFunc) Complete(ctx context.Context, prompt, model string) (string, error) {
	return f(ctx, prompt, model)
}

// Factory defines how to create a backend of a specific name.
type Factory struct {
	// Name is the service name selected by the "service" configuration key.
	Name string

	// Description provides a human-readable description of the backend.
	Description string

	// DefaultModel is used when neither the call nor the backend config names
	// a model.
	DefaultModel string

	// ModelRequired makes dispatch fail with a configuration error when no
	// model can be resolved.
	ModelRequired bool

	// DefaultRejection is the rejection policy when the backend config does
	// not set one. Empty means config.RejectionRaise.
	DefaultRejection string

	// RejectionText renders the answer text returned in place of a rejection
	// under the sentinel policy. Optional: if nil, the error message is used.
	RejectionText func(err *domain.Error) string

	// Create instantiates the backend from configuration.
	Create func(cfg config.BackendConfig) (Backend, error)

	// ValidateConfig performs backend-specific configuration validation.
	// Optional: if nil, no additional validation is performed.
	ValidateConfig func(cfg config.BackendConfig) error
}

type entry struct {
	factory Factory
	backend Backend
}

// Registry is a name-keyed dispatch table. The null backend is always present.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	configs map[string]config.BackendConfig
}

// NewRegistry creates a registry holding only the null backend. configs maps a
// service name to its backend settings and may be nil.
func NewRegistry(configs map[string]config.BackendConfig) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		configs: make(map[string]config.BackendConfig, len(configs)),
	}
	for name, cfg := range configs {
		r.configs[name] = cfg
	}
	r.MustRegister(NullFactory())
	return r
}

// Register adds a factory. It fails if the name is empty, already
// registered, or the factory has no Create function.
func (r *Registry) Register(f Factory) error {
	if f.Name == "" {
		return fmt.Errorf("backend factory name cannot be empty")
	}
	if f.Create == nil {
		return fmt.Errorf("backend factory %q must have a Create function", f.Name)
	}
	switch f.DefaultRejection {
	case "", config.RejectionRaise, config.RejectionSentinel:
	default:
		return fmt.Errorf("backend factory %q has unknown rejection policy %q", f.Name, f.DefaultRejection)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[f.Name]; exists {
		return fmt.Errorf("backend factory %q already registered", f.Name)
	}
	r.entries[f.Name] = &entry{factory: f}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(f Factory) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return Factory{}, false
	}
	return e.factory, true
}

// Names returns all registered service names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the backend settings for name.
func (r *Registry) Config(name string) config.BackendConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configs[name]
}

// backend returns the cached backend for name, creating it on first use.
func (r *Registry) backend(name string) (Backend, Factory, config.BackendConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, Factory{}, config.BackendConfig{}, r.unknown(name)
	}
	cfg := r.configs[name]
	if e.backend != nil {
		return e.backend, e.factory, cfg, nil
	}

	switch cfg.OnRejection {
	case "", config.RejectionRaise, config.RejectionSentinel:
	default:
		return nil, e.factory, cfg, domain.ErrConfig("service %s: unknown on_rejection policy %q", name, cfg.OnRejection)
	}
	if e.factory.ValidateConfig != nil {
		if err := e.factory.ValidateConfig(cfg); err != nil {
			return nil, e.factory, cfg, domain.ErrConfig("invalid configuration for service %s: %v", name, err).WithCause(err)
		}
	}
	b, err := e.factory.Create(cfg)
	if err != nil {
		return nil, e.factory, cfg, domain.ErrConfig("create service %s: %v", name, err).WithCause(err)
	}
	e.backend = b
	return b, e.factory, cfg, nil
}

func (r *Registry) unknown(name string) error {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	if name == "" {
		return domain.ErrConfig("no service configured (registered services: %v)", names)
	}
	return domain.ErrConfig("invalid service %q (registered services: %v)", name, names)
}
