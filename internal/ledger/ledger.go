// Package ledger keeps history of threshold runs in a sqlite database.
package ledger

import (
	"database/sql"
	"time"

	"github.com/LdDl/speckle-go/speckle"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

// Run is a stored threshold run
type Run struct {
	ID             uuid.UUID
	Root           string
	K              float64
	StartedAt      time.Time
	TotalDropped   int
	TotalRemaining int
	NoControl      int
}

// FileRecord is a stored per-file outcome
type FileRecord struct {
	Path      string
	Control   string
	Output    string
	Threshold float64
	Dropped   int
	Remaining int
	Status    speckle.FileStatus
	Error     string
}

// Ledger is sqlite-backed storage of threshold runs
type Ledger struct {
	db *sql.DB
}

// Open opens (creating when needed) the ledger database at path
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open ledger '%s'", path)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't create ledger schema")
	}
	return &Ledger{db: db}, nil
}

// Close releases the database
func (ledger *Ledger) Close() error {
	return ledger.db.Close()
}

// RecordThresholdRun stores report and all its per-file results in a single transaction
func (ledger *Ledger) RecordThresholdRun(report *speckle.ThresholdReport) error {
	if report == nil {
		return errors.Wrap(speckle.ErrInvalidArgument, "nil report")
	}
	tx, err := ledger.db.Begin()
	if err != nil {
		return errors.Wrap(err, "can't begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO threshold_runs (run_id, root, k, started_at, total_dropped, total_remaining, no_control) VALUES (?, ?, ?, ?, ?, ?, ?)",
		report.RunID.String(), report.Root, report.K, report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.TotalDropped, report.TotalRemaining, len(report.NoControl),
	)
	if err != nil {
		return errors.Wrapf(err, "can't insert run %s", report.RunID)
	}
	for i, result := range report.Files {
		message := ""
		if result.Err != nil {
			message = result.Err.Error()
		}
		_, err = tx.Exec(
			"INSERT INTO threshold_files (run_id, position, path, control, output, threshold, dropped, remaining, status, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			report.RunID.String(), i, result.Path, result.Control, result.Output, result.Threshold,
			result.Dropped, result.Remaining, string(result.Status), message,
		)
		if err != nil {
			return errors.Wrapf(err, "can't insert result for '%s'", result.Path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "can't commit run")
	}
	return nil
}

// Runs returns stored runs, oldest first
func (ledger *Ledger) Runs() ([]Run, error) {
	rows, err := ledger.db.Query("SELECT run_id, root, k, started_at, total_dropped, total_remaining, no_control FROM threshold_runs ORDER BY started_at, run_id")
	if err != nil {
		return nil, errors.Wrap(err, "can't query runs")
	}
	defer rows.Close()
	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var id, startedAt string
		err := rows.Scan(&id, &run.Root, &run.K, &startedAt, &run.TotalDropped, &run.TotalRemaining, &run.NoControl)
		if err != nil {
			return nil, errors.Wrap(err, "can't scan run")
		}
		run.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, errors.Wrapf(err, "bad run id '%s'", id)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, errors.Wrapf(err, "bad timestamp of run %s", id)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Files returns per-file results of the run in processing order
func (ledger *Ledger) Files(runID uuid.UUID) ([]FileRecord, error) {
	rows, err := ledger.db.Query("SELECT path, control, output, threshold, dropped, remaining, status, error FROM threshold_files WHERE run_id = ? ORDER BY position", runID.String())
	if err != nil {
		return nil, errors.Wrapf(err, "can't query files of run %s", runID)
	}
	defer rows.Close()
	records := make([]FileRecord, 0)
	for rows.Next() {
		var record FileRecord
		var status string
		err := rows.Scan(&record.Path, &record.Control, &record.Output, &record.Threshold, &record.Dropped, &record.Remaining, &status, &record.Error)
		if err != nil {
			return nil, errors.Wrap(err, "can't scan file record")
		}
		record.Status = speckle.FileStatus(status)
		records = append(records, record)
	}
	return records, rows.Err()
}
