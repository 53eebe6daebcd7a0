// Package history keeps an append-only ledger of pipeline runs in SQLite.
// The ledger is advisory: a missing or unwritable database never fails a
// build.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const defaultBusyTimeout = 5 * time.Second

// Run is one pipeline invocation.
type Run struct {
	ID         string
	Board      string
	RootFS     string
	Status     string // StatusRunning, StatusSucceeded, StatusFailed
	Stage      string // failing stage when Status == StatusFailed
	Error      string
	Bitstream  string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
}

const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrNotFound indicates a run ID with no ledger row.
var ErrNotFound = errors.New("history: run not found")

// Store provides access to the build-run database.
type Store struct {
	db   *sql.DB
	path string
}

// Open initialises the ledger at path, creating parent directories and the
// schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), defaultBusyTimeout)
	defer cancel()

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", defaultBusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: apply pragma: %w", err)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS build_runs (
	id          TEXT PRIMARY KEY,
	board       TEXT NOT NULL,
	rootfs      TEXT NOT NULL,
	status      TEXT NOT NULL,
	stage       TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	bitstream   TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_build_runs_started ON build_runs(started_at DESC);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a run in the running state.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if s == nil {
		return nil
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO build_runs (id, board, rootfs, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Board, run.RootFS, StatusRunning, started.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("history: record run start: %w", err)
	}
	return nil
}

// Finish marks a run as succeeded and records the produced bitstream path.
func (s *Store) Finish(ctx context.Context, id, bitstream string) error {
	if s == nil {
		return nil
	}
	return s.finish(ctx, id, StatusSucceeded, "", "", bitstream)
}

// Fail marks a run as failed in the given stage.
func (s *Store) Fail(ctx context.Context, id, stage, message string) error {
	if s == nil {
		return nil
	}
	return s.finish(ctx, id, StatusFailed, stage, message, "")
}

func (s *Store) finish(ctx context.Context, id, status, stage, message, bitstream string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE build_runs SET status = ?, stage = ?, error = ?, bitstream = ?, finished_at = ? WHERE id = ?`,
		status, stage, message, bitstream, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("history: record run finish: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: record run finish: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, board, rootfs, status, stage, error, bitstream, started_at, finished_at
		 FROM build_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	return runs, nil
}

// Get returns a single run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	if s == nil {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, board, rootfs, status, stage, error, bitstream, started_at, finished_at
		 FROM build_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started, finished string
	err := row.Scan(&run.ID, &run.Board, &run.RootFS, &run.Status, &run.Stage,
		&run.Error, &run.Bitstream, &started, &finished)
	if err != nil {
		return Run{}, err
	}
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		run.StartedAt = t
	}
	if finished != "" {
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			run.FinishedAt = t
		}
	}
	return run, nil
}
