package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation names recorded in the journal.
const (
	OpSave     = "save"
	OpAutosave = "autosave"
	OpLoad     = "load"
	OpRepair   = "repair"
	OpDelete   = "delete"
	OpRename   = "rename"
	OpVerify   = "verify"
	OpExport   = "export"
	OpImport   = "import"
)

// Outcome statuses recorded in the journal.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusFallback  = "fallback"
	StatusCoalesced = "coalesced"
)

// Entry is one journaled operation.
type Entry struct {
	// ID is a UUIDv7, assigned on append when empty.
	ID string

	// Op names the operation, one of the Op constants.
	Op string

	// Slot is the affected slot, empty for store-wide operations.
	Slot string

	// Generation is the artifact involved, zero when not relevant.
	Generation int64

	// Status is the outcome, one of the Status constants.
	Status string

	// Error holds the rendered error for failed operations.
	Error string

	// Bytes is the artifact size in bytes, zero when unknown.
	Bytes int64

	// Duration is how long the operation took.
	Duration time.Duration

	// CreatedAt is when the operation finished, assigned on append
	// when zero. Stored at millisecond precision.
	CreatedAt time.Time
}

// Append inserts an operation record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations still return errors.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO ops
		(id, op, slot, generation, status, error, bytes, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.Op,
		e.Slot,
		e.Generation,
		e.Status,
		e.Error,
		e.Bytes,
		e.Duration.Milliseconds(),
		e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	return nil
}

// Recent returns the latest entries, newest first.
// Ordering ties on created_at break on id, which is time-ordered for
// UUIDv7. Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, op, slot, generation, status, error, bytes, duration_ms, created_at
		FROM ops
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// SlotHistory returns the latest entries touching one slot, newest first.
// Returns an empty slice (not nil) when the slot has no history.
func (j *Journal) SlotHistory(ctx context.Context, slot string, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, op, slot, generation, status, error, bytes, duration_ms, created_at
		FROM ops
		WHERE slot = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, slot, limit)
	if err != nil {
		return nil, fmt.Errorf("query slot history: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	var durationMs, createdAt int64

	if err := rows.Scan(
		&e.ID, &e.Op, &e.Slot, &e.Generation, &e.Status, &e.Error,
		&e.Bytes, &durationMs, &createdAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	return e, nil
}

// OpStats aggregates journal entries for one operation name.
type OpStats struct {
	Op        string
	Total     int64
	Failed    int64
	Bytes     int64
	AvgMillis float64
	LastAt    time.Time
}

// Stats aggregates the journal per operation, ordered by operation name.
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) Stats(ctx context.Context) ([]OpStats, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT op,
		       COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(bytes), 0),
		       COALESCE(AVG(duration_ms), 0),
		       COALESCE(MAX(created_at), 0)
		FROM ops
		GROUP BY op
		ORDER BY op
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []OpStats
	for rows.Next() {
		var (
			s      OpStats
			lastAt int64
		)
		if err := rows.Scan(&s.Op, &s.Total, &s.Failed, &s.Bytes, &s.AvgMillis, &lastAt); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		s.LastAt = time.UnixMilli(lastAt).UTC()
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	if stats == nil {
		stats = []OpStats{}
	}

	return stats, nil
}

// Prune deletes entries older than cutoff and reports how many rows
// were removed. The journal is diagnostics, not state; pruning old
// rows keeps the database from growing without bound.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := j.db.ExecContext(ctx, `
		DELETE FROM ops WHERE created_at < ?
	`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune entries: rows affected: %w", err)
	}

	return removed, nil
}
