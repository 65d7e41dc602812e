package save

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/emberkeep/emberkeep/internal/backup"
	"github.com/emberkeep/emberkeep/internal/config"
	"github.com/emberkeep/emberkeep/internal/envelope"
	"github.com/emberkeep/emberkeep/internal/journal"
	"github.com/emberkeep/emberkeep/internal/recovery"
	"github.com/emberkeep/emberkeep/internal/schema"
	"github.com/emberkeep/emberkeep/internal/snapshot"
	"github.com/emberkeep/emberkeep/internal/state"
	"github.com/emberkeep/emberkeep/internal/store"
)

var tracer = otel.Tracer("emberkeep.save")

// ErrJournalDisabled is returned by journal-backed queries when
// journaling is off.
var ErrJournalDisabled = errors.New("save: journaling is disabled")

// Service runs slot operations end to end: seal, stage, verify, publish,
// rotate on the way down; recover, repair, restore on the way up.
//
// Operations on the same slot are serialized; operations on different
// slots run independently. All methods are safe for concurrent use.
type Service struct {
	store     *store.Store
	pipeline  *Pipeline
	backups   *backup.Manager
	recovery  *recovery.Coordinator
	validator *schema.Validator
	journal   *journal.Journal
	log       *slog.Logger
	timeout   time.Duration

	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

// NewService wires a service over an open store. jnl may be nil when
// journaling is disabled; everything else is required.
func NewService(st *store.Store, pipeline *Pipeline, cfg *config.Config, jnl *journal.Journal, log *slog.Logger) (*Service, error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     st,
		pipeline:  pipeline,
		backups:   backup.New(st, cfg.RetainBackups, log),
		recovery:  recovery.New(st, pipeline, log),
		validator: validator,
		journal:   jnl,
		log:       log,
		timeout:   cfg.OpTimeout,
		slots:     make(map[string]*sync.Mutex),
	}, nil
}

// slotLock returns the mutex serializing operations on one slot,
// creating it on first use.
func (s *Service) slotLock(slot string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.slots[slot]
	if !ok {
		l = &sync.Mutex{}
		s.slots[slot] = l
	}
	return l
}

// opCtx applies the configured operation deadline.
func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// journalAppend records an operation outcome. The journal is
// diagnostics: an append failure is worth a warning, never a failed
// operation, and it is attempted even when the operation's own context
// already expired.
func (s *Service) journalAppend(ctx context.Context, e journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn("journal append failed",
			slog.String("op", e.Op),
			slog.String("slot", e.Slot),
			slog.String("error", err.Error()),
		)
	}
}

func observe(op, status string, start time.Time) {
	operationsTotal.WithLabelValues(op, status).Inc()
	operationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return journal.StatusError
	}
	return journal.StatusOK
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Save seals a snapshot of g and publishes it as the next generation of
// slot. The previous generation is untouched until the new artifact has
// been staged, read back from disk, and opened successfully.
func (s *Service) Save(ctx context.Context, slot string, g *state.Graph) (int64, error) {
	return s.save(ctx, journal.OpSave, slot, g)
}

// Autosave is Save journaled and measured as the scheduler's periodic
// operation.
func (s *Service) Autosave(ctx context.Context, slot string, g *state.Graph) (int64, error) {
	return s.save(ctx, journal.OpAutosave, slot, g)
}

func (s *Service) save(ctx context.Context, op, slot string, g *state.Graph) (int64, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return 0, err
	}

	lock := s.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.saveLocked(ctx, op, slot, g)
}

// saveLocked runs the sealed publish path. The caller holds the slot
// lock and has applied the operation deadline.
func (s *Service) saveLocked(ctx context.Context, op, slot string, g *state.Graph) (int64, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "save.publish",
		trace.WithAttributes(
			attribute.String("op", op),
			attribute.String("slot", slot),
		),
	)
	defer span.End()

	var generation, size int64
	artifact, err := s.pipeline.Seal(g)
	if err == nil {
		size = int64(len(artifact))
		generation, err = s.publishArtifact(ctx, slot, artifact)
	}

	status := statusOf(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
	} else {
		span.SetAttributes(
			attribute.Int64("generation", generation),
			attribute.Int64("artifact_bytes", size),
		)
	}

	observe(op, status, start)
	s.journalAppend(ctx, journal.Entry{
		Op:         op,
		Slot:       slot,
		Generation: generation,
		Status:     status,
		Error:      errString(err),
		Bytes:      size,
		Duration:   time.Since(start),
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("published generation",
		slog.String("op", op),
		slog.String("slot", slot),
		slog.Int64("generation", generation),
		slog.Int64("bytes", size),
		slog.Duration("duration", time.Since(start)),
	)
	return generation, nil
}

// publishArtifact stages sealed bytes, reads them back off the disk,
// opens that readback fully, and only then publishes. Whatever just hit
// the platters is what a future load will see, so that is what gets
// verified. Any failure discards the staged file and leaves prior
// generations exactly as they were.
func (s *Service) publishArtifact(ctx context.Context, slot string, artifact []byte) (int64, error) {
	staged, err := s.store.Stage(ctx, slot, artifact)
	if err != nil {
		return 0, err
	}

	readback, err := s.store.ReadStaged(ctx, staged)
	if err != nil {
		s.store.Discard(staged)
		return 0, err
	}
	if !bytes.Equal(readback, artifact) {
		s.store.Discard(staged)
		return 0, fmt.Errorf("save: staged artifact differs from sealed artifact")
	}
	if _, err := s.pipeline.Open(readback); err != nil {
		s.store.Discard(staged)
		return 0, fmt.Errorf("save: staged artifact failed verification: %w", err)
	}

	generation, err := s.store.Publish(ctx, staged)
	if err != nil {
		s.store.Discard(staged)
		return 0, err
	}

	artifactBytes.Observe(float64(len(artifact)))

	// Rotation is best effort and never rolls back a published save.
	if _, err := s.backups.Rotate(ctx, slot); err != nil {
		s.log.Warn("rotation failed after publish",
			slog.String("slot", slot),
			slog.String("error", err.Error()),
		)
	}

	return generation, nil
}

// Load restores the newest loadable generation of slot. When newer
// generations were corrupt and an older one had to serve, the recovered
// state is re-published as the new current generation so the next load
// does not repeat the walk. Corrupt artifacts are skipped, never
// deleted.
func (s *Service) Load(ctx context.Context, slot string) (*state.Graph, int64, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return nil, 0, err
	}

	lock := s.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	ctx, span := tracer.Start(ctx, "save.load",
		trace.WithAttributes(attribute.String("slot", slot)),
	)
	defer span.End()

	res, err := s.recovery.Recover(ctx, slot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		observe(journal.OpLoad, journal.StatusError, start)
		s.journalAppend(ctx, journal.Entry{
			Op:       journal.OpLoad,
			Slot:     slot,
			Status:   journal.StatusError,
			Error:    err.Error(),
			Duration: time.Since(start),
		})
		return nil, 0, err
	}

	status := journal.StatusOK
	if res.Fallback {
		status = journal.StatusFallback
	}
	span.SetAttributes(
		attribute.Int64("generation", res.Generation),
		attribute.Bool("fallback", res.Fallback),
	)
	observe(journal.OpLoad, status, start)
	s.journalAppend(ctx, journal.Entry{
		Op:         journal.OpLoad,
		Slot:       slot,
		Generation: res.Generation,
		Status:     status,
		Bytes:      res.Bytes,
		Duration:   time.Since(start),
	})

	if res.Fallback {
		// The repair runs on its own deadline so a slow walk cannot
		// starve it. Its failure never fails the load.
		repairCtx, cancel := s.opCtx(context.WithoutCancel(ctx))
		_, _ = s.repairLocked(repairCtx, slot, res)
		cancel()
	}

	return res.Graph, res.Generation, nil
}

// repairLocked re-publishes a recovered graph as the slot's new current
// generation through the ordinary publish path, so the repaired artifact
// gets the same verify-then-rename guarantees as any save.
func (s *Service) repairLocked(ctx context.Context, slot string, res *recovery.Result) (int64, error) {
	generation, err := s.saveLocked(ctx, journal.OpRepair, slot, res.Graph)
	if err != nil {
		s.log.Warn("write-through repair failed",
			slog.String("slot", slot),
			slog.Int64("recovered_generation", res.Generation),
			slog.String("error", err.Error()),
		)
		return 0, err
	}

	s.log.Info("promoted recovered state",
		slog.String("slot", slot),
		slog.Int64("recovered_generation", res.Generation),
		slog.Int64("generation", generation),
	)
	return generation, nil
}

// RepairOutcome reports what an explicit repair did.
type RepairOutcome struct {
	// Recovered is the generation the loadable state came from.
	Recovered int64 `json:"recovered"`

	// Promoted is the generation the repair published. Zero when the
	// newest generation was already healthy and nothing was written.
	Promoted int64 `json:"promoted,omitempty"`

	// Attempts lists the corrupt generations the walk skipped.
	Attempts []recovery.Attempt `json:"-"`
}

// Repair walks slot like a load and, when the newest generation was not
// the one that served, promotes the recovered state on top of it.
func (s *Service) Repair(ctx context.Context, slot string) (*RepairOutcome, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}

	lock := s.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	res, err := s.recovery.Recover(ctx, slot)
	if err != nil {
		return nil, err
	}

	out := &RepairOutcome{Recovered: res.Generation, Attempts: res.Attempts}
	if !res.Fallback {
		return out, nil
	}

	promoted, err := s.repairLocked(ctx, slot, res)
	if err != nil {
		return out, err
	}
	out.Promoted = promoted
	return out, nil
}

// Delete removes a slot and every generation in it.
func (s *Service) Delete(ctx context.Context, slot string) error {
	if err := store.ValidateSlot(slot); err != nil {
		return err
	}

	lock := s.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	err := s.store.DeleteSlot(ctx, slot)
	observe(journal.OpDelete, statusOf(err), start)
	s.journalAppend(ctx, journal.Entry{
		Op:       journal.OpDelete,
		Slot:     slot,
		Status:   statusOf(err),
		Error:    errString(err),
		Duration: time.Since(start),
	})
	return err
}

// Rename moves a slot to a new name. Both names are locked for the move,
// in a fixed order so concurrent renames cannot deadlock.
func (s *Service) Rename(ctx context.Context, from, to string) error {
	if err := store.ValidateSlot(from); err != nil {
		return err
	}
	if err := store.ValidateSlot(to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("save: rename %q onto itself", from)
	}

	first, second := from, to
	if second < first {
		first, second = second, first
	}
	firstLock, secondLock := s.slotLock(first), s.slotLock(second)
	firstLock.Lock()
	defer firstLock.Unlock()
	secondLock.Lock()
	defer secondLock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	err := s.store.RenameSlot(ctx, from, to)
	observe(journal.OpRename, statusOf(err), start)
	// The journal records the surviving name.
	s.journalAppend(ctx, journal.Entry{
		Op:       journal.OpRename,
		Slot:     to,
		Status:   statusOf(err),
		Error:    errString(err),
		Duration: time.Since(start),
	})
	if err == nil {
		s.log.Info("renamed slot",
			slog.String("from", from),
			slog.String("to", to),
		)
	}
	return err
}

// SlotInfo summarizes one slot for listings, described by its newest
// generation's envelope header.
type SlotInfo struct {
	Slot          string    `json:"slot"`
	Generation    int64     `json:"generation"`
	Generations   int       `json:"generations"`
	SizeBytes     int64     `json:"size_bytes"`
	SchemaVersion uint32    `json:"schema_version,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// List summarizes every slot. A slot whose newest artifact cannot even
// be parsed still lists, with the header fields zeroed and the file's
// own timestamp standing in for CreatedAt.
func (s *Service) List(ctx context.Context) ([]SlotInfo, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	slots, err := s.store.ListSlots(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]SlotInfo, 0, len(slots))
	for _, slot := range slots {
		info, err := s.slotInfo(ctx, slot)
		if err != nil {
			if store.IsNotFound(err) {
				// Slot emptied between listing and inspecting it.
				continue
			}
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Service) slotInfo(ctx context.Context, slot string) (SlotInfo, error) {
	generations, err := s.store.ListGenerations(ctx, slot)
	if err != nil {
		return SlotInfo{}, err
	}
	if len(generations) == 0 {
		return SlotInfo{}, store.NewNotFound("list", slot, 0)
	}

	newest := generations[0]
	info := SlotInfo{
		Slot:        slot,
		Generation:  newest,
		Generations: len(generations),
	}

	size, modTime, err := s.store.StatGeneration(ctx, slot, newest)
	if err != nil {
		return SlotInfo{}, err
	}
	info.SizeBytes = size
	info.CreatedAt = modTime

	data, err := s.store.ReadGeneration(ctx, slot, newest)
	if err != nil {
		return SlotInfo{}, err
	}
	if env, err := envelope.Parse(data); err == nil {
		info.SchemaVersion = env.SchemaVersion
		info.CreatedAt = env.CreatedAt
	}
	return info, nil
}

// GenerationInfo describes one artifact without opening it. Everything
// here comes from the envelope header, which is readable without the
// key.
type GenerationInfo struct {
	Generation    int64     `json:"generation"`
	SizeBytes     int64     `json:"size_bytes"`
	ModTime       time.Time `json:"mod_time"`
	SchemaVersion uint32    `json:"schema_version,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	PlainSize     uint64    `json:"plain_size,omitempty"`
	Checksum      string    `json:"checksum,omitempty"`
	ParseError    string    `json:"parse_error,omitempty"`
}

// Inspect reports the envelope metadata of every generation in a slot,
// newest first. Nothing is decrypted.
func (s *Service) Inspect(ctx context.Context, slot string) ([]GenerationInfo, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	generations, err := s.store.ListGenerations(ctx, slot)
	if err != nil {
		return nil, err
	}

	infos := make([]GenerationInfo, 0, len(generations))
	for _, generation := range generations {
		info := GenerationInfo{Generation: generation}

		size, modTime, err := s.store.StatGeneration(ctx, slot, generation)
		if err != nil {
			return nil, err
		}
		info.SizeBytes = size
		info.ModTime = modTime

		data, err := s.store.ReadGeneration(ctx, slot, generation)
		if err != nil {
			return nil, err
		}
		if env, err := envelope.Parse(data); err != nil {
			info.ParseError = err.Error()
		} else {
			info.SchemaVersion = env.SchemaVersion
			info.CreatedAt = env.CreatedAt
			info.PlainSize = env.PlainSize
			info.Checksum = hex.EncodeToString(env.Checksum[:])
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// VerifyIssue is one generation that failed verification.
type VerifyIssue struct {
	Slot       string `json:"slot"`
	Generation int64  `json:"generation"`
	Error      string `json:"error"`
}

// VerifyReport is the result of an integrity walk.
type VerifyReport struct {
	Slots       int           `json:"slots"`
	Generations int           `json:"generations"`
	Issues      []VerifyIssue `json:"issues"`
}

// Healthy reports whether the walk found no issues.
func (r *VerifyReport) Healthy() bool {
	return len(r.Issues) == 0
}

// VerifySlot opens every generation of one slot. With deep set, each
// decoded document is also validated against the snapshot schema, which
// catches values the codec tolerates but the game cannot use.
func (s *Service) VerifySlot(ctx context.Context, slot string, deep bool) (*VerifyReport, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	report := &VerifyReport{Issues: []VerifyIssue{}}

	lock := s.slotLock(slot)
	lock.Lock()
	err := s.verifySlot(ctx, slot, deep, report)
	lock.Unlock()
	if err != nil {
		return nil, err
	}
	report.Slots = 1

	s.journalVerify(ctx, slot, report, start)
	return report, nil
}

// VerifyAll opens every generation of every slot.
func (s *Service) VerifyAll(ctx context.Context, deep bool) (*VerifyReport, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	slots, err := s.store.ListSlots(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := &VerifyReport{Issues: []VerifyIssue{}}
	for _, slot := range slots {
		lock := s.slotLock(slot)
		lock.Lock()
		err := s.verifySlot(ctx, slot, deep, report)
		lock.Unlock()
		if err != nil {
			return nil, err
		}
	}
	report.Slots = len(slots)

	s.journalVerify(ctx, "", report, start)
	return report, nil
}

func (s *Service) journalVerify(ctx context.Context, slot string, report *VerifyReport, start time.Time) {
	status := journal.StatusOK
	if !report.Healthy() {
		status = journal.StatusError
	}
	observe(journal.OpVerify, status, start)
	s.journalAppend(ctx, journal.Entry{
		Op:       journal.OpVerify,
		Slot:     slot,
		Status:   status,
		Error:    verifySummary(report),
		Duration: time.Since(start),
	})
}

func verifySummary(report *VerifyReport) string {
	if report.Healthy() {
		return ""
	}
	return fmt.Sprintf("%d of %d generations failed verification", len(report.Issues), report.Generations)
}

// verifySlot walks one slot's generations into report. The caller holds
// the slot lock, so rotation cannot evict a generation mid-walk.
func (s *Service) verifySlot(ctx context.Context, slot string, deep bool, report *VerifyReport) error {
	generations, err := s.store.ListGenerations(ctx, slot)
	if err != nil {
		return err
	}

	for _, generation := range generations {
		report.Generations++

		data, err := s.store.ReadGeneration(ctx, slot, generation)
		if err != nil {
			if store.IsTimeout(err) {
				return err
			}
			report.Issues = append(report.Issues, VerifyIssue{Slot: slot, Generation: generation, Error: err.Error()})
			continue
		}

		g, err := s.pipeline.Open(data)
		if err != nil {
			report.Issues = append(report.Issues, VerifyIssue{Slot: slot, Generation: generation, Error: err.Error()})
			continue
		}

		if deep {
			if issue := s.deepIssue(g); issue != "" {
				report.Issues = append(report.Issues, VerifyIssue{Slot: slot, Generation: generation, Error: issue})
			}
		}
	}
	return nil
}

// deepIssue validates the document as the current schema renders it, so
// older artifacts are checked after their upgrade rather than against
// rules they predate.
func (s *Service) deepIssue(g *state.Graph) string {
	plain, err := snapshot.Encode(g)
	if err != nil {
		return err.Error()
	}
	_, body, err := snapshot.Split(plain)
	if err != nil {
		return err.Error()
	}

	violations := s.validator.Validate(body)
	if len(violations) == 0 {
		return ""
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Export returns the newest artifact of slot, sealed exactly as stored.
// The export stays bound to the player secret that sealed it; a corrupt
// newest generation is refused rather than copied.
func (s *Service) Export(ctx context.Context, slot string) ([]byte, int64, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return nil, 0, err
	}

	lock := s.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	generations, err := s.store.ListGenerations(ctx, slot)
	if err != nil {
		return nil, 0, err
	}
	if len(generations) == 0 {
		return nil, 0, store.NewNotFound("export", slot, 0)
	}

	newest := generations[0]
	data, err := s.store.ReadGeneration(ctx, slot, newest)
	if err != nil {
		return nil, 0, err
	}

	if _, err := s.pipeline.Open(data); err != nil {
		err = fmt.Errorf("save: refusing to export unloadable artifact: %w", err)
		observe(journal.OpExport, journal.StatusError, start)
		s.journalAppend(ctx, journal.Entry{
			Op:         journal.OpExport,
			Slot:       slot,
			Generation: newest,
			Status:     journal.StatusError,
			Error:      err.Error(),
			Duration:   time.Since(start),
		})
		return nil, 0, err
	}

	observe(journal.OpExport, journal.StatusOK, start)
	s.journalAppend(ctx, journal.Entry{
		Op:         journal.OpExport,
		Slot:       slot,
		Generation: newest,
		Status:     journal.StatusOK,
		Bytes:      int64(len(data)),
		Duration:   time.Since(start),
	})
	return data, newest, nil
}

// Import publishes an exported artifact as the next generation of slot.
// The artifact is fully opened and schema validated first; nothing is
// written unless it proves loadable under the local secret.
func (s *Service) Import(ctx context.Context, slot string, artifact []byte) (int64, error) {
	if err := store.ValidateSlot(slot); err != nil {
		return 0, err
	}

	lock := s.slotLock(slot)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	ctx, span := tracer.Start(ctx, "save.import",
		trace.WithAttributes(attribute.String("slot", slot)),
	)
	defer span.End()

	var generation int64
	g, err := s.pipeline.Open(artifact)
	if err != nil {
		err = fmt.Errorf("save: import rejected: %w", err)
	} else if issue := s.deepIssue(g); issue != "" {
		err = fmt.Errorf("save: import rejected: %s", issue)
	} else {
		generation, err = s.publishArtifact(ctx, slot, artifact)
	}

	status := statusOf(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import failed")
	} else {
		span.SetAttributes(attribute.Int64("generation", generation))
	}

	observe(journal.OpImport, status, start)
	s.journalAppend(ctx, journal.Entry{
		Op:         journal.OpImport,
		Slot:       slot,
		Generation: generation,
		Status:     status,
		Error:      errString(err),
		Bytes:      int64(len(artifact)),
		Duration:   time.Since(start),
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("imported artifact",
		slog.String("slot", slot),
		slog.Int64("generation", generation),
		slog.Int64("bytes", int64(len(artifact))),
	)
	return generation, nil
}

// Stats returns per-operation aggregates from the journal.
func (s *Service) Stats(ctx context.Context) ([]journal.OpStats, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.Stats(ctx)
}

// History returns the journal trail for one slot, newest first.
func (s *Service) History(ctx context.Context, slot string, limit int) ([]journal.Entry, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if err := store.ValidateSlot(slot); err != nil {
		return nil, err
	}
	return s.journal.SlotHistory(ctx, slot, limit)
}
