package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tjfontaine/secretagent/internal/literal"
	"github.com/tjfontaine/secretagent/internal/recorder"
	"github.com/tjfontaine/secretagent/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	run, err := storage.NewRun("sports", []recorder.Event{
		{ID: "evt_1", Func: "sport_for", Args: []any{"scored a touchdown."}, Output: "American football", Service: "openai", Model: "gpt-4o-mini", CompletedAt: at},
		{ID: "evt_2", Func: "consistent_sports", Args: []any{"soccer", "soccer"}, Output: true, Service: "null", CompletedAt: at.Add(time.Second)},
		{ID: "evt_3", Func: "tags", Output: literal.NewSet("b", "a"), CompletedAt: at.Add(2 * time.Second)},
	})
	if err != nil {
		t.Fatal(err)
	}
	run.CreatedAt = at

	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	opt := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
	if diff := cmp.Diff(run, got, opt); diff != "" {
		t.Errorf("GetRun() mismatch (-want +got):\n%s", diff)
	}
	if got.Events[2].OutputLiteral != "{'a', 'b'}" {
		t.Errorf("set literal = %s", got.Events[2].OutputLiteral)
	}
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetRun(context.Background(), "run_missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_DuplicateRunRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := &storage.Run{ID: "run_dup", Name: "translate", CreatedAt: time.Now()}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(ctx, run); err == nil {
		t.Error("SaveRun() duplicate succeeded")
	}

	runs, err := store.ListRuns(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("ListRuns() returned %d runs, want 1", len(runs))
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		run := &storage.Run{
			ID:        "run_" + name,
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Events:    make([]storage.Event, 0, i),
		}
		for j := 0; j < i; j++ {
			run.Events = append(run.Events, storage.Event{
				ID:          run.ID + "_evt_" + string(rune('a'+j)),
				Func:        "f",
				Args:        []byte(`[]`),
				Kwargs:      []byte(`{}`),
				Output:      []byte(`null`),
				CompletedAt: base,
			})
		}
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(ctx, storage.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].Name != "third" || runs[0].EventCount != 2 || runs[1].Name != "second" || runs[1].EventCount != 1 {
		t.Errorf("ListRuns() = %+v", runs)
	}
}
