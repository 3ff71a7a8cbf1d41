// Package state records pipeline run history: one row per run, one row per
// executed step, in a SQLite database migrated with goose.
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID          string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// StepResult is one executed pipeline step within a run.
type StepResult struct {
	RunID      string
	Step       string
	Status     string
	StartedAt  time.Time
	DurationMs int64
	Error      string
}

// Store persists runs and steps.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the state database at path (":memory:" for tests) and runs
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new running run and returns it.
func (s *Store) CreateRun() (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run completed or failed.
func (s *Store) CompleteRun(id string, runErr error) error {
	status := RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = RunStatusFailed
		errMsg = runErr.Error()
	}
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", id, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString
	err := s.db.QueryRow(
		`SELECT id, status, started_at, completed_at, error FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Status, &run.StartedAt, &completedAt, &errMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	run.Error = errMsg.String
	return run, nil
}

// RecordStep inserts the outcome of one executed step.
func (s *Store) RecordStep(res StepResult) error {
	_, err := s.db.Exec(
		`INSERT INTO run_steps (run_id, step, status, started_at, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Step, res.Status, res.StartedAt, res.DurationMs, res.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record step %s: %w", res.Step, err)
	}
	return nil
}

// StepsForRun returns the steps recorded for a run, in execution order.
func (s *Store) StepsForRun(runID string) ([]StepResult, error) {
	rows, err := s.db.Query(
		`SELECT run_id, step, status, started_at, duration_ms, error
		 FROM run_steps WHERE run_id = ? ORDER BY started_at, step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps for run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var steps []StepResult
	for rows.Next() {
		var res StepResult
		var errMsg sql.NullString
		if err := rows.Scan(&res.RunID, &res.Step, &res.Status, &res.StartedAt, &res.DurationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan step row: %w", err)
		}
		res.Error = errMsg.String
		steps = append(steps, res)
	}
	return steps, rows.Err()
}
