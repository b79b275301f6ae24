package runtime

import (
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/prompt"
)

// Option is a functional option for configuring an Agent.
type Option func(*Agent) error

// WithSettings seeds the base configuration and backend settings from
// loaded process settings.
func WithSettings(s *config.Settings) Option {
	return func(a *Agent) error {
		if s == nil {
			return errors.New("settings must not be nil")
		}
		a.settings = s
		return nil
	}
}

// WithSettingsFile loads settings from path (see config.Load).
func WithSettingsFile(path string) Option {
	return func(a *Agent) error {
		s, err := config.Load(path)
		if err != nil {
			return err
		}
		a.settings = s
		return nil
	}
}

// WithRegistry dispatches through reg instead of the built-in backends.
func WithRegistry(reg *dispatch.Registry) Option {
	return func(a *Agent) error {
		if reg == nil {
			return errors.New("registry must not be nil")
		}
		a.registry = reg
		return nil
	}
}

// WithOutput sets where echo traces are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *Agent) error {
		a.out = w
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		a.logger = logger
		return nil
	}
}

// WithTemplate replaces the embedded prompt template.
func WithTemplate(text string) Option {
	return func(a *Agent) error {
		a.promptOpts = append(a.promptOpts, prompt.WithTemplate(text))
		return nil
	}
}

// WithTemplateFile reads the prompt template from path.
func WithTemplateFile(path string) Option {
	return func(a *Agent) error {
		a.promptOpts = append(a.promptOpts, prompt.WithTemplateFile(path))
		return nil
	}
}

// WithTokenCounter replaces the prompt token counter.
func WithTokenCounter(c dispatch.TokenCounter) Option {
	return func(a *Agent) error {
		a.counter = c
		return nil
	}
}

// WithTracer sets the tracer for invocation spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Agent) error {
		a.tracer = t
		return nil
	}
}
