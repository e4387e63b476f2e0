package samplelog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// File layout constants.
const (
	// dirPermissions is the permission mode for the output directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for CSV log files.
	filePermissions = 0644

	// hourBucketLayout formats the date and hour part of the file name.
	hourBucketLayout = "2006-01-02_15"

	// timestampLayout formats the first CSV column, to second precision.
	timestampLayout = "2006-01-02 15:04:05"
)

// ErrColumnMismatch is returned when a row's value count does not match
// the writer's column count. A row must always carry exactly one value
// slot per catalog tag.
var ErrColumnMismatch = errors.New("samplelog: row value count does not match columns")

// Row is one completed sample: a local wall-clock timestamp, the matching
// UTC epoch seconds, and one optional reading per catalog tag in catalog
// order. A nil value marks a failed read and becomes an empty CSV field.
//
// Rows are fully constructed before being handed to the writer; the writer
// never sees a partial row.
type Row struct {
	LocalTime time.Time
	EpochUTC  int64
	Values    []any
}

// Config holds configuration for a Writer.
type Config struct {
	// Directory is where hourly CSV files are written. Created if missing.
	Directory string

	// Prefix is the file name prefix: <prefix>_<YYYY-MM-DD>_<HH>.csv
	Prefix string

	// Location is the local time zone for file names and timestamps.
	Location *time.Location

	// ZoneLabel names the zone in the header, e.g. "IST".
	ZoneLabel string

	// Columns are the tag names, in catalog order.
	Columns []string
}

// Writer appends sample rows to hourly CSV files.
//
// Not safe for concurrent use; the poll loop is the only writer by
// construction (single active run).
type Writer struct {
	dir       string
	prefix    string
	loc       *time.Location
	zoneLabel string
	columns   []string
}

// NewWriter creates a writer and ensures the output directory exists.
//
// Parameters:
//   - cfg: Writer configuration; Location and at least one column required
//
// Returns:
//   - *Writer: Ready for Append calls
//   - error: If configuration is invalid or the directory cannot be created
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.Location == nil {
		return nil, fmt.Errorf("samplelog: location is required")
	}
	if len(cfg.Columns) == 0 {
		return nil, fmt.Errorf("samplelog: at least one column is required")
	}
	if cfg.Prefix == "" {
		return nil, fmt.Errorf("samplelog: prefix is required")
	}

	if err := os.MkdirAll(cfg.Directory, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	columns := make([]string, len(cfg.Columns))
	copy(columns, cfg.Columns)

	return &Writer{
		dir:       cfg.Directory,
		prefix:    cfg.Prefix,
		loc:       cfg.Location,
		zoneLabel: cfg.ZoneLabel,
		columns:   columns,
	}, nil
}

// FileName returns the CSV file name for the hour bucket containing t.
func (w *Writer) FileName(t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", w.prefix, t.In(w.loc).Format(hourBucketLayout))
}

// Append writes one row to the hour bucket derived from the row's local
// timestamp.
//
// The file is opened, written, flushed, and closed within this call. The
// header is written first iff the file did not already exist on disk.
//
// Returns:
//   - error: ErrColumnMismatch for a malformed row, or the underlying IO
//     error; the caller treats IO errors as connection-tier faults
func (w *Writer) Append(row Row) error {
	if len(row.Values) != len(w.columns) {
		return fmt.Errorf("%w: got %d, want %d", ErrColumnMismatch, len(row.Values), len(w.columns))
	}

	local := row.LocalTime.In(w.loc)
	path := filepath.Join(w.dir, w.FileName(local))

	// Existence decides the header; checked before opening so O_CREATE
	// cannot hide a pre-existing file.
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	cw := csv.NewWriter(f)

	if writeHeader {
		if err := cw.Write(w.header()); err != nil {
			f.Close()
			return fmt.Errorf("writing header: %w", err)
		}
	}

	record := make([]string, 0, len(w.columns)+2)
	record = append(record,
		local.Format(timestampLayout),
		strconv.FormatInt(row.EpochUTC, 10),
	)
	for _, v := range row.Values {
		record = append(record, formatValue(v))
	}

	if err := cw.Write(record); err != nil {
		f.Close()
		return fmt.Errorf("writing row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing row: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}

	return nil
}

// header builds the CSV header: the two timestamp columns followed by the
// tag names in catalog order.
func (w *Writer) header() []string {
	header := make([]string, 0, len(w.columns)+2)
	header = append(header,
		fmt.Sprintf("Timestamp (24hr %s)", w.zoneLabel),
		"Timestamp (epochtime UTC)",
	)
	header = append(header, w.columns...)
	return header
}

// formatValue renders a reading as a CSV field. nil (failed read) becomes
// an empty field so columns never shift.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
