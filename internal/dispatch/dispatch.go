package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/domain"
	"github.com/tjfontaine/secretagent/internal/tokens"
)

// TokenCounter counts prompt tokens for the echo trace.
type TokenCounter interface {
	Count(model, text string) tokens.Count
}

// Request is one prompt to send.
type Request struct {
	Prompt  string
	Service string
	Model   string
	// Echo prints which backend and model are used before sending.
	Echo bool
}

// Response is the raw text returned for a Request.
type Response struct {
	Text    string
	Service string
	// Model is the resolved model, after backend defaults were applied.
	Model        string
	PromptTokens tokens.Count
	// Rejected is set when a content rejection was degraded to a sentinel text.
	Rejected bool
}

// Dispatcher routes requests to backends held in a Registry.
type Dispatcher struct {
	registry *Registry
	out      io.Writer
	logger   *slog.Logger
	counter  TokenCounter
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithOutput sets where echo traces are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTokenCounter replaces the default token counter.
func WithTokenCounter(c TokenCounter) Option {
	return func(d *Dispatcher) {
		d.counter = c
	}
}

// New creates a Dispatcher over reg.
func New(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		out:      os.Stdout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.counter == nil {
		d.counter = tokens.NewRegistry()
	}
	return d
}

// Registry returns the dispatch table.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch sends req.Prompt to the backend named by req.Service. Unknown
// services fail with a configuration error before any network access. Backend
// failures are returned as service errors; a content rejection becomes a
// sentinel answer when the backend's policy says so.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Response, error) {
	b, f, cfg, err := d.registry.backend(req.Service)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = cfg.DefaultModel
	}
	if model == "" {
		model = f.DefaultModel
	}
	if model == "" && f.ModelRequired {
		return nil, domain.ErrConfig("service %s requires a model", req.Service)
	}

	count := d.counter.Count(model, req.Prompt)
	if req.Echo {
		fmt.Fprintf(d.out, "calling service=%s model=%s prompt_tokens=%s\n", req.Service, model, count)
	}

	d.logger.Debug("dispatching prompt",
		slog.String("service", req.Service),
		slog.String("model", model),
		slog.Int("prompt_tokens", count.Tokens),
	)

	resp := &Response{
		Service:      req.Service,
		Model:        model,
		PromptTokens: count,
	}

	text, err := b.Complete(ctx, req.Prompt, model)
	if err != nil {
		derr := normalize(err, req.Service, model)
		if derr.Kind == domain.KindService && derr.Code == domain.ServiceCodeRejected && rejectionPolicy(f, cfg) == config.RejectionSentinel {
			d.logger.Warn("backend rejected prompt, returning sentinel answer",
				slog.String("service", req.Service),
				slog.String("model", model),
				slog.String("error", derr.Message),
			)
			resp.Text = rejectionText(f, derr)
			resp.Rejected = true
			return resp, nil
		}
		return nil, derr
	}

	resp.Text = text
	return resp, nil
}

func rejectionPolicy(f Factory, cfg config.BackendConfig) string {
	if cfg.OnRejection != "" {
		return cfg.OnRejection
	}
	if f.DefaultRejection != "" {
		return f.DefaultRejection
	}
	return config.RejectionRaise
}

func rejectionText(f Factory, err *domain.Error) string {
	if f.RejectionText != nil {
		return f.RejectionText(err)
	}
	return err.Message
}

// normalize maps any backend failure to a *domain.Error tagged with the
// service and model. Configuration errors raised by a backend pass through.
func normalize(err error, service, model string) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		out := *derr
		if out.Kind == domain.KindService && out.Service == "" {
			out.Service = service
			out.Model = model
		}
		return &out
	}

	code := domain.ServiceCodeTransport
	msg := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	}
	return domain.ErrServiceFailure(code, msg).WithService(service, model).WithCause(err)
}
