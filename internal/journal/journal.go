package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/database"
)

// Sentinel errors for journal operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrRunNotFound is returned when finishing a run id that was never started.
	ErrRunNotFound = errors.New("journal: run not found")
)

// schema creates the runs table. Idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	endpoint         TEXT    NOT NULL,
	interval_seconds INTEGER NOT NULL,
	started_at       TEXT    NOT NULL,
	stopped_at       TEXT,
	rows_written     INTEGER NOT NULL DEFAULT 0,
	last_error       TEXT
);
`

// Run is one recorded poller lifecycle.
type Run struct {
	ID              int64
	Endpoint        string
	IntervalSeconds int
	StartedAt       time.Time
	StoppedAt       *time.Time
	RowsWritten     int64
	LastError       string
}

// Journal records run history against an opened database.
//
// Thread Safety:
//   - Safe for concurrent use; the underlying pool serialises writers.
type Journal struct {
	db *database.DB
}

// New creates a journal and ensures the schema exists.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: An opened database connection
//
// Returns:
//   - *Journal: Ready for use
//   - error: If schema creation fails
func New(ctx context.Context, db *database.DB) (*Journal, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// RecordStart inserts a new run row and returns its id.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - endpoint: The source endpoint being sampled
//   - interval: The sampling interval
//
// Returns:
//   - int64: The run id, passed to RecordFinish later
//   - error: If the insert fails
func (j *Journal) RecordStart(ctx context.Context, endpoint string, interval time.Duration) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		"INSERT INTO runs (endpoint, interval_seconds, started_at) VALUES (?, ?, ?)",
		endpoint,
		int(interval.Seconds()),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("recording run start: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// RecordFinish closes out a run row with its final counters.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - id: The run id from RecordStart
//   - rowsWritten: Total sample rows appended during the run
//   - lastError: The last fault message, empty for a clean stop
//
// Returns:
//   - error: ErrRunNotFound if the id does not exist, or the update error
func (j *Journal) RecordFinish(ctx context.Context, id int64, rowsWritten int64, lastError string) error {
	res, err := j.db.ExecContext(ctx,
		"UPDATE runs SET stopped_at = ?, rows_written = ?, last_error = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339),
		rowsWritten,
		nullable(lastError),
		id,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking run update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	return nil
}

// LastRun returns the most recently started run, or nil if the journal
// is empty.
func (j *Journal) LastRun(ctx context.Context) (*Run, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, endpoint, interval_seconds, started_at, stopped_at, rows_written, last_error
		 FROM runs ORDER BY id DESC LIMIT 1`,
	)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last run: %w", err)
	}
	return run, nil
}

// scanRun decodes one runs row.
func scanRun(row *sql.Row) (*Run, error) {
	var (
		run       Run
		startedAt string
		stoppedAt sql.NullString
		lastError sql.NullString
	)

	err := row.Scan(&run.ID, &run.Endpoint, &run.IntervalSeconds,
		&startedAt, &stoppedAt, &run.RowsWritten, &lastError)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}

	if stoppedAt.Valid {
		t, err := time.Parse(time.RFC3339, stoppedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing stopped_at: %w", err)
		}
		run.StoppedAt = &t
	}

	if lastError.Valid {
		run.LastError = lastError.String
	}

	return &run, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
