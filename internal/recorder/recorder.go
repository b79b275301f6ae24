// Package recorder keeps an opt-in, process-wide log of completed stub calls.
//
// Recording scopes are not reentrant: starting a second recording while one is
// active replaces the current log, and the first scope's exit then stops both.
package recorder

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a snapshot of one completed stub invocation.
type Event struct {
	ID          string         `json:"id"`
	Func        string         `json:"func"`
	Args        []any          `json:"args"`
	Kwargs      map[string]any `json:"kwargs,omitempty"`
	Output      any            `json:"output"`
	Service     string         `json:"service,omitempty"`
	Model       string         `json:"model,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Log is an ordered sequence of events. A Log handed out by Start stops
// receiving events once its recording scope ends.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

// Events returns a copy of the recorded events in completion order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

func (l *Log) append(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// Recorder holds the recording flag and the current log reference.
type Recorder struct {
	mu      sync.Mutex
	active  bool
	current *Log
	now     func() time.Time
}

// New creates an inactive recorder.
func New() *Recorder {
	return &Recorder{current: &Log{}, now: time.Now}
}

// Start replaces the current log with a fresh one, activates recording, and
// returns the new log with a stop function. Stop deactivates recording and
// swaps in another fresh log, leaving the returned one frozen.
func (r *Recorder) Start() (*Log, func()) {
	log := &Log{}

	r.mu.Lock()
	r.active = true
	r.current = log
	r.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			r.mu.Lock()
			r.active = false
			r.current = &Log{}
			r.mu.Unlock()
		})
	}
	return log, stop
}

// Scope records every stub call completed while fn runs. Recording stops on
// every exit path.
func (r *Recorder) Scope(fn func(*Log) error) error {
	log, stop := r.Start()
	defer stop()
	return fn(log)
}

// Active reports whether recording is on.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Record appends ev to the current log if recording is active. ID and
// CompletedAt are filled in when empty.
func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	log := r.current
	r.mu.Unlock()

	if ev.ID == "" {
		ev.ID = "evt_" + uuid.New().String()
	}
	if ev.CompletedAt.IsZero() {
		ev.CompletedAt = r.now()
	}
	log.append(ev)
}
