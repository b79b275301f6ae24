// Package sqlite is a RunStore backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/secretagent/internal/storage"
)

// Store is a SQLite implementation of RunStore
type Store struct {
	db *sql.DB
}

var _ storage.RunStore = (*Store)(nil)

// New opens or creates the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			func TEXT NOT NULL,
			args TEXT NOT NULL,
			kwargs TEXT NOT NULL,
			output TEXT NOT NULL,
			args_literal TEXT NOT NULL,
			kwargs_literal TEXT NOT NULL,
			output_literal TEXT NOT NULL,
			service TEXT,
			model TEXT,
			completed_at TIMESTAMP NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) SaveRun(ctx context.Context, run *storage.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, created_at) VALUES (?, ?, ?)`,
		run.ID, run.Name, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, ev := range run.Events {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, run_id, seq, func, args, kwargs, output,
				args_literal, kwargs_literal, output_literal, service, model, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, run.ID, i, ev.Func, string(ev.Args), string(ev.Kwargs), string(ev.Output),
			ev.ArgsLiteral, ev.KwargsLiteral, ev.OutputLiteral, ev.Service, ev.Model, ev.CompletedAt,
		); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	run := &storage.Run{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, created_at FROM runs WHERE id = ?`, id,
	).Scan(&run.Name, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, func, args, kwargs, output, args_literal, kwargs_literal, output_literal,
			service, model, completed_at
		FROM events WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	run.Events = []storage.Event{}
	for rows.Next() {
		var (
			ev                   storage.Event
			args, kwargs, output string
			service, model       sql.NullString
			completedAt          time.Time
		)
		if err := rows.Scan(&ev.ID, &ev.Func, &args, &kwargs, &output,
			&ev.ArgsLiteral, &ev.KwargsLiteral, &ev.OutputLiteral,
			&service, &model, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Args = []byte(args)
		ev.Kwargs = []byte(kwargs)
		ev.Output = []byte(output)
		ev.Service = service.String
		ev.Model = model.String
		ev.CompletedAt = completedAt
		run.Events = append(run.Events, ev)
	}
	return run, rows.Err()
}

func (s *Store) ListRuns(ctx context.Context, opts storage.ListOptions) ([]storage.RunSummary, error) {
	query := `SELECT r.id, r.name, r.created_at, COUNT(e.id)
		FROM runs r LEFT JOIN events e ON e.run_id = r.id
		GROUP BY r.id, r.name, r.created_at
		ORDER BY r.created_at DESC, r.id`
	args := []any{}
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	summaries := []storage.RunSummary{}
	for rows.Next() {
		var sum storage.RunSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.CreatedAt, &sum.EventCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
