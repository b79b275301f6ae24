// Package registration wires the built-in backends into a dispatch registry.
package registration

import (
	"github.com/tjfontaine/secretagent/internal/backend/anthropic"
	"github.com/tjfontaine/secretagent/internal/backend/gemini"
	"github.com/tjfontaine/secretagent/internal/backend/ollama"
	"github.com/tjfontaine/secretagent/internal/backend/openai"
	"github.com/tjfontaine/secretagent/internal/backend/together"
	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
)

// BuiltinFactories returns the factories of every built-in backend.
func BuiltinFactories() []dispatch.Factory {
	return []dispatch.Factory{
		openai.Factory(),
		anthropic.Factory(),
		gemini.Factory(),
		together.Factory(),
		ollama.Factory(),
	}
}

// RegisterBuiltins registers the built-in backends on reg. Names that are
// already registered are skipped, so callers may pre-register replacements.
func RegisterBuiltins(reg *dispatch.Registry) {
	for _, f := range BuiltinFactories() {
		if _, exists := reg.Lookup(f.Name); exists {
			continue
		}
		reg.MustRegister(f)
	}
}

// NewRegistry returns a registry holding the null backend and every
// built-in backend, configured from settings.
func NewRegistry(settings *config.Settings) *dispatch.Registry {
	var backends map[string]config.BackendConfig
	if settings != nil {
		backends = settings.Backends
	}
	reg := dispatch.NewRegistry(backends)
	RegisterBuiltins(reg)
	return reg
}
