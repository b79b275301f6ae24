// Package storage persists recorded stub runs.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/secretagent/internal/literal"
	"github.com/tjfontaine/secretagent/internal/recorder"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one saved recording.
type Run struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Events    []Event   `json:"events"`
}

// Event is a recorded invocation in storable form. Values are kept both as
// JSON and in literal syntax, since JSON cannot tell tuples and sets from
// lists.
type Event struct {
	ID            string          `json:"id"`
	Func          string          `json:"func"`
	Args          json.RawMessage `json:"args"`
	Kwargs        json.RawMessage `json:"kwargs"`
	Output        json.RawMessage `json:"output"`
	ArgsLiteral   string          `json:"args_literal"`
	KwargsLiteral string          `json:"kwargs_literal"`
	OutputLiteral string          `json:"output_literal"`
	Service       string          `json:"service,omitempty"`
	Model         string          `json:"model,omitempty"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// RunSummary is a run without its events.
type RunSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	EventCount int       `json:"event_count"`
}

// ListOptions controls run listing.
type ListOptions struct {
	// Limit caps the number of runs returned; 0 means no limit.
	Limit int
}

// RunStore saves and loads runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns summaries, newest first.
	ListRuns(ctx context.Context, opts ListOptions) ([]RunSummary, error)
	Close() error
}

// NewRun converts recorded events into a run with a fresh ID.
func NewRun(name string, events []recorder.Event) (*Run, error) {
	run := &Run{
		ID:        "run_" + uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Events:    make([]Event, 0, len(events)),
	}
	for _, ev := range events {
		se, err := convertEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		run.Events = append(run.Events, se)
	}
	return run, nil
}

func convertEvent(ev recorder.Event) (Event, error) {
	args := ev.Args
	if args == nil {
		args = []any{}
	}
	kwargs := make(literal.Dict, len(ev.Kwargs))
	for k, v := range ev.Kwargs {
		kwargs[k] = v
	}

	out := Event{
		ID:            ev.ID,
		Func:          ev.Func,
		ArgsLiteral:   literal.Format(args),
		KwargsLiteral: literal.Format(kwargs),
		OutputLiteral: literal.Format(ev.Output),
		Service:       ev.Service,
		Model:         ev.Model,
		CompletedAt:   ev.CompletedAt,
	}

	var err error
	if out.Args, err = marshalValue(args); err != nil {
		return Event{}, fmt.Errorf("marshal args: %w", err)
	}
	if out.Kwargs, err = marshalValue(kwargs); err != nil {
		return Event{}, fmt.Errorf("marshal kwargs: %w", err)
	}
	if out.Output, err = marshalValue(ev.Output); err != nil {
		return Event{}, fmt.Errorf("marshal output: %w", err)
	}
	return out, nil
}

func marshalValue(v any) (json.RawMessage, error) {
	b, err := json.Marshal(literal.ToJSON(v))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

// Summarize returns the summary of run.
func Summarize(run *Run) RunSummary {
	return RunSummary{
		ID:         run.ID,
		Name:       run.Name,
		CreatedAt:  run.CreatedAt,
		EventCount: len(run.Events),
	}
}
