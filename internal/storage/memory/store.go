// Package memory is an in-process RunStore.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tjfontaine/secretagent/internal/storage"
)

// Store is an in-memory implementation of RunStore
type Store struct {
	mu   sync.RWMutex
	runs map[string]*storage.Run
}

var _ storage.RunStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		runs: make(map[string]*storage.Run),
	}
}

func (s *Store) SaveRun(ctx context.Context, run *storage.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}

	stored := *run
	stored.Events = append([]storage.Event(nil), run.Events...)
	s.runs[run.ID] = &stored
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}

	out := *run
	out.Events = append([]storage.Event(nil), run.Events...)
	return &out, nil
}

func (s *Store) ListRuns(ctx context.Context, opts storage.ListOptions) ([]storage.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]storage.RunSummary, 0, len(s.runs))
	for _, run := range s.runs {
		summaries = append(summaries, storage.Summarize(run))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	if opts.Limit > 0 && len(summaries) > opts.Limit {
		summaries = summaries[:opts.Limit]
	}
	return summaries, nil
}

func (s *Store) Close() error {
	return nil
}
