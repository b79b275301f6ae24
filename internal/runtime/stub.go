package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/secretagent/internal/answer"
	"github.com/tjfontaine/secretagent/internal/config"
	"github.com/tjfontaine/secretagent/internal/dispatch"
	"github.com/tjfontaine/secretagent/internal/domain"
	"github.com/tjfontaine/secretagent/internal/literal"
	"github.com/tjfontaine/secretagent/internal/recorder"
)

// SpanName names the span opened for each stub call.
const SpanName = "secretagent.invoke"

// Stub is a declared function whose body is answered by a backend model.
// Stubs are immutable once built.
type Stub struct {
	agent *Agent
	desc  domain.Descriptor
	// opts are the declaration-time options merged into every call's scope.
	opts config.Options
}

// Name returns the declared name.
func (s *Stub) Name() string {
	return s.desc.Name
}

// Descriptor returns a copy of the stub's descriptor.
func (s *Stub) Descriptor() domain.Descriptor {
	d := s.desc
	d.Params = slices.Clone(s.desc.Params)
	return d
}

// Invoke calls the stub with positional arguments.
func (s *Stub) Invoke(ctx context.Context, args ...any) (any, error) {
	return s.InvokeWith(ctx, nil, args...)
}

// InvokeWith calls the stub with keyword overrides. Keyword values are shown
// to the model after the positional arguments, and also override service and
// model for this call only.
//
// A failure at any stage is returned as-is after the configuration scope has
// been unwound. Nothing is retried.
func (s *Stub) InvokeWith(ctx context.Context, kw map[string]any, args ...any) (any, error) {
	a := s.agent
	ctx, span := a.tracer.Start(ctx, SpanName,
		trace.WithAttributes(attribute.String("secretagent.stub", s.desc.Name)))
	defer span.End()

	call := &invocation{
		stub:  s,
		span:  span,
		args:  args,
		kw:    kw,
		phase: phaseIdle,
	}

	var out any
	call.phase = phaseConfiguring
	err := a.store.Scope(s.opts, func() error {
		var err error
		out, err = call.run(ctx)
		return err
	})
	if err != nil {
		failed := call.phase
		call.phase = phaseFailed
		span.SetAttributes(attribute.String("secretagent.phase", failed.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Debug("stub call failed",
			slog.String("stub", s.desc.Name),
			slog.String("phase", failed.String()),
			slog.String("error", err.Error()))
		return nil, err
	}
	call.phase = phaseDone
	return out, nil
}

type phase int

const (
	phaseIdle phase = iota
	phaseConfiguring
	phaseDispatching
	phaseExtracting
	phaseCoercing
	phaseRecording
	phaseDone
	phaseFailed
)

var phaseNames = [...]string{
	phaseIdle:        "idle",
	phaseConfiguring: "configuring",
	phaseDispatching: "dispatching",
	phaseExtracting:  "extracting",
	phaseCoercing:    "coercing",
	phaseRecording:   "recording",
	phaseDone:        "done",
	phaseFailed:      "failed",
}

func (p phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// invocation is the state of one stub call. It runs inside the call's
// configuration scope.
type invocation struct {
	stub  *Stub
	span  trace.Span
	args  []any
	kw    map[string]any
	phase phase
}

func (c *invocation) run(ctx context.Context) (any, error) {
	a := c.stub.agent
	desc := &c.stub.desc
	local := config.Options(c.kw)
	echo := a.store.Bool(config.KeyEchoCall, nil)

	if echo {
		fmt.Fprintf(a.out, "Calling %s %s...\n", desc.Name, literal.Format(literal.Tuple(c.args)))
	}

	c.phase = phaseDispatching
	text := a.builder.Build(desc, c.args, c.kw)
	resp, err := a.dispatcher.Dispatch(ctx, dispatch.Request{
		Prompt:  text,
		Service: a.store.String(config.KeyService, local),
		Model:   a.store.String(config.KeyModel, local),
		Echo:    a.store.Bool(config.KeyEchoService, nil),
	})
	if err != nil {
		return nil, err
	}
	c.span.SetAttributes(
		attribute.String("secretagent.service", resp.Service),
		attribute.String("secretagent.model", resp.Model),
		attribute.Int("secretagent.prompt_tokens", resp.PromptTokens.Tokens),
	)

	if a.store.Bool(config.KeyEchoResponse, nil) {
		fmt.Fprintln(a.out, "--- llm response ---")
		fmt.Fprintln(a.out, resp.Text)
		fmt.Fprintln(a.out, "--- end response ---")
	}

	c.phase = phaseExtracting
	answerText, err := answer.Extract(resp.Text)
	if err != nil {
		return nil, err
	}

	c.phase = phaseCoercing
	out, err := answer.Coerce(answerText, desc.Returns)
	if err != nil {
		return nil, err
	}

	if echo {
		fmt.Fprintf(a.out, "...%s returned %s\n", desc.Name, display(out))
	}

	c.phase = phaseRecording
	a.recorder.Record(recorder.Event{
		Func:    desc.Name,
		Args:    slices.Clone(c.args),
		Kwargs:  maps.Clone(c.kw),
		Output:  out,
		Service: resp.Service,
		Model:   resp.Model,
	})

	a.logger.Debug("stub call completed",
		slog.String("stub", desc.Name),
		slog.String("service", resp.Service),
		slog.String("model", resp.Model),
		slog.Bool("rejected", resp.Rejected))
	return out, nil
}

// display renders a result the way the post-call trace shows it: text as-is,
// everything else in literal syntax.
func display(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return literal.Format(v)
}
