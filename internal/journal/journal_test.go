package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/database"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	j, err := New(context.Background(), db)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return j
}

func TestJournal_StartFinishRoundTrip(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	id, err := j.RecordStart(ctx, "opc.tcp://localhost:53530/OPCUA/SimulationServer", 60*time.Second)
	if err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if id == 0 {
		t.Fatal("RecordStart() returned id 0")
	}

	if err := j.RecordFinish(ctx, id, 42, "connection refused"); err != nil {
		t.Fatalf("RecordFinish() error = %v", err)
	}

	run, err := j.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if run == nil {
		t.Fatal("LastRun() = nil, want a run")
	}

	if run.ID != id {
		t.Errorf("run id = %d, want %d", run.ID, id)
	}
	if run.Endpoint != "opc.tcp://localhost:53530/OPCUA/SimulationServer" {
		t.Errorf("endpoint = %q", run.Endpoint)
	}
	if run.IntervalSeconds != 60 {
		t.Errorf("interval = %d, want 60", run.IntervalSeconds)
	}
	if run.RowsWritten != 42 {
		t.Errorf("rows written = %d, want 42", run.RowsWritten)
	}
	if run.LastError != "connection refused" {
		t.Errorf("last error = %q, want %q", run.LastError, "connection refused")
	}
	if run.StoppedAt == nil {
		t.Error("stopped_at is nil after finish")
	}
	if run.StartedAt.IsZero() {
		t.Error("started_at is zero")
	}
}

func TestJournal_CleanStopHasNullError(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	id, err := j.RecordStart(ctx, "opc.tcp://localhost:53530", 5*time.Second)
	if err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if err := j.RecordFinish(ctx, id, 10, ""); err != nil {
		t.Fatalf("RecordFinish() error = %v", err)
	}

	run, err := j.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if run.LastError != "" {
		t.Errorf("last error = %q, want empty for clean stop", run.LastError)
	}
}

func TestJournal_FinishUnknownRun(t *testing.T) {
	j := newTestJournal(t)

	err := j.RecordFinish(context.Background(), 999, 0, "")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("RecordFinish() error = %v, want ErrRunNotFound", err)
	}
}

func TestJournal_LastRunEmpty(t *testing.T) {
	j := newTestJournal(t)

	run, err := j.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if run != nil {
		t.Errorf("LastRun() = %+v, want nil on empty journal", run)
	}
}

func TestJournal_LastRunPicksNewest(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	if _, err := j.RecordStart(ctx, "opc.tcp://old:53530", time.Second); err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	id2, err := j.RecordStart(ctx, "opc.tcp://new:53530", time.Second)
	if err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}

	run, err := j.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun() error = %v", err)
	}
	if run.ID != id2 {
		t.Errorf("LastRun() id = %d, want %d", run.ID, id2)
	}
	if run.StoppedAt != nil {
		t.Error("unfinished run has non-nil stopped_at")
	}
}

func TestNew_Idempotent(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := New(ctx, db); err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	if _, err := New(ctx, db); err != nil {
		t.Fatalf("second New() error = %v", err)
	}
}
