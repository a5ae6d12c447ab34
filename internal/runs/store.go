// Package runs coordinates racing-line optimization runs: a background
// manager with a synchronous fallback path, and a sqlite store that
// records every run for later inspection.
package runs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/banshee-data/raceline/internal/geom"
)

// Record is one persisted optimization run.
type Record struct {
	RunID       string       `json:"run_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Status      Status       `json:"status"`
	Iterations  int          `json:"iterations"`
	Seed        *int64       `json:"seed,omitempty"`
	Grip        float64      `json:"grip"`
	TrackPoints []geom.Point `json:"trackPoints,omitempty"`
	RacingLine  []geom.Point `json:"racingLine,omitempty"`
	LapTime     float64      `json:"lap_time_s"`
	Score       float64      `json:"score"`
	Error       string       `json:"error,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// Store persists run records. A nil Store is valid and drops every
// write, so the manager can run without a database (the CLI's inline
// path).
type Store struct {
	db *sql.DB
}

// NewStore creates a run store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InsertRun writes the initial record for a new run.
func (s *Store) InsertRun(rec *Record) error {
	if s == nil || s.db == nil {
		return nil
	}
	trackJSON, err := json.Marshal(rec.TrackPoints)
	if err != nil {
		return fmt.Errorf("failed to encode track points: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO line_runs (run_id, created_at, status, iterations, seed, grip, track_points)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.CreatedAt, string(rec.Status), rec.Iterations, rec.Seed, rec.Grip, string(trackJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rec.RunID, err)
	}
	return nil
}

// UpdateStatus records a phase transition.
func (s *Store) UpdateStatus(runID string, status Status) error {
	if s == nil || s.db == nil {
		return nil
	}
	if _, err := s.db.Exec(`UPDATE line_runs SET status = ? WHERE run_id = ?`, string(status), runID); err != nil {
		return fmt.Errorf("failed to update run %s status: %w", runID, err)
	}
	return nil
}

// CompleteRun records a finished run with its result line.
func (s *Store) CompleteRun(runID string, line []geom.Point, lapTime, score float64, completedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	lineJSON, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to encode racing line: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE line_runs
		SET status = ?, racing_line = ?, lap_time_s = ?, score = ?, completed_at = ?
		WHERE run_id = ?`,
		string(StatusComplete), string(lineJSON), lapTime, score, completedAt, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", runID, err)
	}
	return nil
}

// FailRun records a failed run.
func (s *Store) FailRun(runID, errMsg string, completedAt time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`
		UPDATE line_runs SET status = ?, error = ?, completed_at = ? WHERE run_id = ?`,
		string(StatusError), errMsg, completedAt, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark run %s failed: %w", runID, err)
	}
	return nil
}

// GetRun fetches one run by ID.
func (s *Store) GetRun(runID string) (*Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("no run store configured")
	}
	row := s.db.QueryRow(`
		SELECT run_id, created_at, status, iterations, seed, grip,
		       COALESCE(track_points, ''), COALESCE(racing_line, ''),
		       COALESCE(lap_time_s, 0), COALESCE(score, 0), COALESCE(error, ''), completed_at
		FROM line_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Record, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("no run store configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, created_at, status, iterations, seed, grip,
		       COALESCE(track_points, ''), COALESCE(racing_line, ''),
		       COALESCE(lap_time_s, 0), COALESCE(score, 0), COALESCE(error, ''), completed_at
		FROM line_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Record, error) {
	var rec Record
	var status, trackJSON, lineJSON string
	if err := row.Scan(
		&rec.RunID, &rec.CreatedAt, &status, &rec.Iterations, &rec.Seed, &rec.Grip,
		&trackJSON, &lineJSON, &rec.LapTime, &rec.Score, &rec.Error, &rec.CompletedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	rec.Status = Status(status)

	if trackJSON != "" {
		if err := json.Unmarshal([]byte(trackJSON), &rec.TrackPoints); err != nil {
			return nil, fmt.Errorf("failed to decode track points for run %s: %w", rec.RunID, err)
		}
	}
	if lineJSON != "" {
		if err := json.Unmarshal([]byte(lineJSON), &rec.RacingLine); err != nil {
			return nil, fmt.Errorf("failed to decode racing line for run %s: %w", rec.RunID, err)
		}
	}
	return &rec, nil
}
