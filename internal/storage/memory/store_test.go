package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tjfontaine/secretagent/internal/storage"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	run := &storage.Run{
		ID:        "run_1",
		Name:      "sports",
		CreatedAt: time.Now(),
		Events:    []storage.Event{{ID: "evt_1", Func: "sport_for"}},
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if err := s.SaveRun(ctx, run); err == nil {
		t.Error("SaveRun() duplicate succeeded")
	}

	got, err := s.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Name != "sports" || len(got.Events) != 1 || got.Events[0].Func != "sport_for" {
		t.Errorf("GetRun() = %+v", got)
	}

	// Mutating the returned run does not change the store.
	got.Events[0].Func = "changed"
	again, _ := s.GetRun(ctx, "run_1")
	if again.Events[0].Func != "sport_for" {
		t.Error("store shares event slice with caller")
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRun(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ListRuns(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"run_a", "run_b", "run_c"} {
		run := &storage.Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListRuns(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "run_c" || all[2].ID != "run_a" {
		t.Errorf("ListRuns() = %+v, want newest first", all)
	}

	limited, _ := s.ListRuns(ctx, storage.ListOptions{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("ListRuns(limit 2) returned %d", len(limited))
	}
}
