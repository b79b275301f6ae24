package secretagent

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

var (
	defaultOnce  sync.Once
	defaultAgent *Agent
)

// Default returns the process-wide Agent used by the package-level
// functions. It has every built-in backend and an empty configuration.
func Default() *Agent {
	defaultOnce.Do(func() {
		a, err := New()
		if err != nil {
			// Only a broken embedded prompt template can fail here.
			panic(fmt.Sprintf("secretagent: create default agent: %v", err))
		}
		defaultAgent = a
	})
	return defaultAgent
}

// Configure merges opts into the default Agent's configuration.
func Configure(opts Options) error {
	return Default().Configure(opts)
}

// Configuration runs fn with opts merged into the default Agent's
// configuration, restoring it afterwards.
func Configuration(opts Options, fn func() error) error {
	return Default().Configuration(opts, fn)
}

// Recording runs fn with recording on for the default Agent.
func Recording(fn func(*Log) error) error {
	return Default().Recording(fn)
}

// Declare starts a stub declaration on the default Agent.
func Declare(name string) *Declaration {
	return Default().Declare(name)
}

// Call invokes s and asserts the result to T. A result of another Go type is
// a type coercion error.
func Call[T any](ctx context.Context, s *Stub, args ...any) (T, error) {
	return CallWith[T](ctx, s, nil, args...)
}

// CallWith is Call with keyword overrides.
func CallWith[T any](ctx context.Context, s *Stub, kw map[string]any, args ...any) (T, error) {
	var zero T
	out, err := s.InvokeWith(ctx, kw, args...)
	if err != nil {
		return zero, err
	}
	v, ok := out.(T)
	if !ok {
		desc := s.Descriptor()
		return zero, &Error{
			Kind:    KindTypeCoercion,
			Message: fmt.Sprintf("result is %T, not %s", out, reflect.TypeFor[T]()),
			Text:    Format(out),
			Target:  desc.Returns,
		}
	}
	return v, nil
}
