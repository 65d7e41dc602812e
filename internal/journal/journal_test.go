package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("journal file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	// Open multiple times
	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}

	// Final open should work
	j, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer j.Close()

	// Verify schema is intact
	var name string
	err = j.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='ops'",
	).Scan(&name)
	if err != nil {
		t.Errorf("ops table not found after idempotent opens: %v", err)
	}

	// Verify migration version stuck
	var version int
	if err := j.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/journal.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	j := &Journal{db: nil}
	if err := j.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	j := openTestJournal(t)
	if err := j.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	j := openTestJournal(t)
	// NORMAL = 1
	if err := j.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	j := openTestJournal(t)
	if err := j.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

// Record tests

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppend_RoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	want := Entry{
		ID:         "0192aaaa-0000-7000-8000-000000000001",
		Op:         OpSave,
		Slot:       "quick",
		Generation: 7,
		Status:     StatusOK,
		Bytes:      4096,
		Duration:   42 * time.Millisecond,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := j.Append(ctx, want); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, expected 1", len(entries))
	}

	got := entries[0]
	if got != want {
		t.Errorf("entry round-trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestAppend_AssignsDefaults(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	err := j.Append(ctx, Entry{Op: OpLoad, Slot: "quick", Status: StatusOK})
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	entries, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() returned %d entries, expected 1", len(entries))
	}

	if entries[0].ID == "" {
		t.Error("Append() did not assign an ID")
	}
	if entries[0].CreatedAt.Before(before) {
		t.Errorf("Append() assigned stale CreatedAt %v", entries[0].CreatedAt)
	}
}

func TestAppend_Idempotent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	e := Entry{
		ID:        "0192aaaa-0000-7000-8000-000000000002",
		Op:        OpSave,
		Status:    StatusOK,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for i := 0; i < 2; i++ {
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("Append() iteration %d failed: %v", i, err)
		}
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("duplicate ID produced %d rows, expected 1", len(entries))
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := j.Append(ctx, Entry{
			Op:         OpSave,
			Slot:       "quick",
			Generation: int64(i + 1),
			Status:     StatusOK,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	entries, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(entries))
	}
	if entries[0].Generation != 3 || entries[1].Generation != 2 {
		t.Errorf("Recent() order wrong: got generations %d, %d", entries[0].Generation, entries[1].Generation)
	}
}

func TestRecent_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if entries == nil {
		t.Error("Recent() returned nil, expected empty slice")
	}
	if len(entries) != 0 {
		t.Errorf("Recent() returned %d entries, expected 0", len(entries))
	}
}

func TestSlotHistory_FiltersBySlot(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, slot := range []string{"quick", "auto", "quick"} {
		err := j.Append(ctx, Entry{
			Op:        OpSave,
			Slot:      slot,
			Status:    StatusOK,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	entries, err := j.SlotHistory(ctx, "quick", 10)
	if err != nil {
		t.Fatalf("SlotHistory() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("SlotHistory() returned %d entries, expected 2", len(entries))
	}
	for _, e := range entries {
		if e.Slot != "quick" {
			t.Errorf("SlotHistory() leaked slot %q", e.Slot)
		}
	}
}

func TestStats_AggregatesPerOp(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fixtures := []Entry{
		{Op: OpSave, Status: StatusOK, Bytes: 100, Duration: 10 * time.Millisecond, CreatedAt: base},
		{Op: OpSave, Status: StatusOK, Bytes: 200, Duration: 30 * time.Millisecond, CreatedAt: base.Add(time.Minute)},
		{Op: OpSave, Status: StatusError, Error: "disk full", CreatedAt: base.Add(2 * time.Minute)},
		{Op: OpLoad, Status: StatusFallback, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, e := range fixtures {
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	stats, err := j.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Stats() returned %d rows, expected 2", len(stats))
	}

	// Ordered by op name: load before save
	if stats[0].Op != OpLoad || stats[1].Op != OpSave {
		t.Fatalf("Stats() order wrong: %q, %q", stats[0].Op, stats[1].Op)
	}

	save := stats[1]
	if save.Total != 3 {
		t.Errorf("save Total = %d, expected 3", save.Total)
	}
	if save.Failed != 1 {
		t.Errorf("save Failed = %d, expected 1", save.Failed)
	}
	if save.Bytes != 300 {
		t.Errorf("save Bytes = %d, expected 300", save.Bytes)
	}
	if want := base.Add(2 * time.Minute); !save.LastAt.Equal(want) {
		t.Errorf("save LastAt = %v, expected %v", save.LastAt, want)
	}
}

func TestPrune_RemovesOldEntries(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		err := j.Append(ctx, Entry{
			Op:        OpSave,
			Status:    StatusOK,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	removed, err := j.Prune(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune() removed %d rows, expected 2", removed)
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("journal holds %d entries after prune, expected 2", len(entries))
	}
}
