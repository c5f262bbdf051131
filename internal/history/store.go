package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"savo/internal/config"
	"savo/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on incompatible schema changes; mismatched
// databases are rejected rather than migrated.
const schemaVersion = 1

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded render.
type Run struct {
	ID              string
	Source          string
	OutputPath      string
	Status          string
	DurationSeconds float64
	Frames          int
	DegradedFrames  int
	Error           string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Outcome finalizes a run.
type Outcome struct {
	OutputPath      string
	DurationSeconds float64
	Frames          int
	DegradedFrames  int
	Err             error
}

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database in the state
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		_, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		if err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return services.Wrap(services.ErrSchemaMismatch, "history", "open",
			fmt.Sprintf("database has version %d, expected %d (delete %s)", version, schemaVersion, s.path), nil)
	}
	return nil
}

// StartRun inserts a running row and returns it.
func (s *Store) StartRun(ctx context.Context, source string) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, run.Status, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun finalizes a run with its outcome.
func (s *Store) FinishRun(ctx context.Context, id string, outcome Outcome) error {
	status := StatusCompleted
	errText := ""
	if outcome.Err != nil {
		status = StatusFailed
		errText = outcome.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
		 SET status = ?, output_path = ?, duration_seconds = ?, frames = ?,
		     degraded_frames = ?, error = ?, finished_at = ?
		 WHERE id = ?`,
		status, outcome.OutputPath, outcome.DurationSeconds, outcome.Frames,
		outcome.DegradedFrames, errText, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrValidation, "history", "finish-run",
			fmt.Sprintf("unknown run %s", id), nil)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, output_path, status, duration_seconds, frames,
		        degraded_frames, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.Source, &run.OutputPath, &run.Status,
			&run.DurationSeconds, &run.Frames, &run.DegradedFrames, &run.Error,
			&started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
