package recorder

import (
	"errors"
	"strings"
	"testing"
)

func TestRecordOutsideScopeIsDropped(t *testing.T) {
	r := New()
	r.Record(Event{Func: "translate", Output: "Qu'est-ce qu'on mange ?"})

	log, stop := r.Start()
	defer stop()
	if log.Len() != 0 {
		t.Fatalf("new log has %d events, want 0", log.Len())
	}
}

func TestScopeRecordsInOrderAndFreezes(t *testing.T) {
	r := New()

	var held *Log
	err := r.Scope(func(log *Log) error {
		held = log
		r.Record(Event{Func: "analyze_sentence", Args: []any{"Tim Duncan scored from inside the paint."}})
		r.Record(Event{Func: "sport_for", Args: []any{"Tim Duncan"}, Output: "basketball"})
		if log.Len() != 2 {
			t.Errorf("log.Len() inside scope = %d, want 2", log.Len())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}
	if r.Active() {
		t.Error("recorder still active after scope")
	}

	r.Record(Event{Func: "consistent_sports"})

	events := held.Events()
	if len(events) != 2 {
		t.Fatalf("held log has %d events after exit, want 2", len(events))
	}
	if events[0].Func != "analyze_sentence" || events[1].Func != "sport_for" {
		t.Errorf("events out of order: %q, %q", events[0].Func, events[1].Func)
	}
	for _, ev := range events {
		if !strings.HasPrefix(ev.ID, "evt_") {
			t.Errorf("event ID = %q, want evt_ prefix", ev.ID)
		}
		if ev.CompletedAt.IsZero() {
			t.Error("CompletedAt not set")
		}
	}
}

func TestScopeStopsOnError(t *testing.T) {
	r := New()
	boom := errors.New("boom")

	err := r.Scope(func(log *Log) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Scope() error = %v, want boom", err)
	}
	if r.Active() {
		t.Error("recorder still active after failing scope")
	}
}

func TestStartReplacesLogIdentity(t *testing.T) {
	r := New()

	first, stopFirst := r.Start()
	r.Record(Event{Func: "a"})
	stopFirst()

	second, stopSecond := r.Start()
	defer stopSecond()
	r.Record(Event{Func: "b"})

	if first == second {
		t.Fatal("Start should hand out a new log each time")
	}
	if first.Len() != 1 || second.Len() != 1 {
		t.Errorf("first.Len() = %d, second.Len() = %d, want 1 and 1", first.Len(), second.Len())
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	r := New()
	log, stop := r.Start()
	defer stop()
	r.Record(Event{Func: "a"})

	events := log.Events()
	events[0].Func = "mutated"
	if log.Events()[0].Func != "a" {
		t.Error("Events() exposed internal storage")
	}
}
