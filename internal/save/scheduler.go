package save

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emberkeep/emberkeep/internal/config"
	"github.com/emberkeep/emberkeep/internal/journal"
	"github.com/emberkeep/emberkeep/internal/state"
)

// Trigger identifies what started a scheduled operation.
type Trigger string

const (
	TriggerAutosave  Trigger = "autosave"
	TriggerQuicksave Trigger = "quicksave"
	TriggerQuickload Trigger = "quickload"
)

// Result is one finished scheduled operation, delivered on the results
// channel.
type Result struct {
	Trigger    Trigger
	Slot       string
	Generation int64

	// Graph is the restored state, set only for quick loads.
	Graph *state.Graph

	// Retried is true when an autosave failed once and the reported
	// outcome came from its single retry.
	Retried bool

	Err error
}

// Scheduler drives periodic autosaves and player-triggered quick saves
// and loads without blocking the gameplay loop. Saves run on background
// goroutines; a trigger for a slot that already has a save in flight is
// coalesced into it rather than queued.
type Scheduler struct {
	svc       *Service
	source    state.Source
	log       *slog.Logger
	interval  time.Duration
	autoSlot  string
	quickSlot string

	results chan Result

	mu       sync.Mutex
	inflight map[string]bool

	wg sync.WaitGroup
}

// NewScheduler builds a scheduler over svc, capturing snapshots from
// source. Interval and slot names come from cfg.
func NewScheduler(svc *Service, source state.Source, cfg *config.Config, log *slog.Logger) *Scheduler {
	return &Scheduler{
		svc:       svc,
		source:    source,
		log:       log,
		interval:  cfg.AutosaveInterval,
		autoSlot:  cfg.AutosaveSlot,
		quickSlot: cfg.QuicksaveSlot,
		results:   make(chan Result, 16),
		inflight:  make(map[string]bool),
	}
}

// Results delivers finished operations. The channel is never closed;
// consumers select on it alongside their own shutdown signal.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Run fires an autosave every interval until ctx is canceled, then waits
// for in-flight operations to settle. A save already underway when the
// context dies finishes on the service's own deadline; cancellation only
// stops new triggers.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("autosave scheduler running",
		slog.Duration("interval", s.interval),
		slog.String("slot", s.autoSlot),
	)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.log.Info("autosave scheduler stopped")
			return
		case <-ticker.C:
			s.saveAsync(ctx, TriggerAutosave, s.autoSlot)
		}
	}
}

// QuickSave captures and persists the quick slot. It returns
// immediately; false means the slot already had a save in flight and
// this trigger was coalesced into it.
func (s *Scheduler) QuickSave(ctx context.Context) bool {
	return s.saveAsync(ctx, TriggerQuicksave, s.quickSlot)
}

// QuickLoad restores the quick slot in the background and delivers the
// graph on the results channel. Loads are never coalesced: every
// request produces a result. A quick load issued while the slot is
// saving waits for the publish and restores the state it just saved.
func (s *Scheduler) QuickLoad(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		graph, generation, err := s.svc.Load(ctx, s.quickSlot)
		s.deliver(Result{
			Trigger:    TriggerQuickload,
			Slot:       s.quickSlot,
			Generation: generation,
			Graph:      graph,
			Err:        err,
		})
	}()
}

// saveAsync runs one save off the calling goroutine unless the slot
// already has one in flight. The in-flight guard is what coalesces
// triggers; the service's slot lock below it would only queue them.
func (s *Scheduler) saveAsync(ctx context.Context, trigger Trigger, slot string) bool {
	s.mu.Lock()
	if s.inflight[slot] {
		s.mu.Unlock()
		coalescedTotal.Inc()
		s.log.Debug("save trigger coalesced",
			slog.String("trigger", string(trigger)),
			slog.String("slot", slot),
		)
		s.svc.journalAppend(ctx, journal.Entry{
			Op:     opFor(trigger),
			Slot:   slot,
			Status: journal.StatusCoalesced,
		})
		return false
	}
	s.inflight[slot] = true
	s.mu.Unlock()

	// Once triggered, a save runs to completion on the service's own
	// deadline even if the triggering context dies first.
	opCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, slot)
			s.mu.Unlock()
		}()

		s.deliver(s.saveOnce(opCtx, trigger, slot))
	}()
	return true
}

// saveOnce captures a snapshot and persists it. A failed autosave gets
// exactly one retry of the same snapshot before the failure is
// reported; quick saves fail immediately.
func (s *Scheduler) saveOnce(ctx context.Context, trigger Trigger, slot string) Result {
	res := Result{Trigger: trigger, Slot: slot}

	graph, err := s.source.Snapshot()
	if err != nil {
		res.Err = fmt.Errorf("capture snapshot: %w", err)
		return res
	}

	op := opFor(trigger)
	res.Generation, res.Err = s.svc.save(ctx, op, slot, graph)
	if res.Err != nil && trigger == TriggerAutosave {
		autosaveRetriesTotal.Inc()
		s.log.Warn("autosave failed, retrying once",
			slog.String("slot", slot),
			slog.String("error", res.Err.Error()),
		)
		res.Retried = true
		res.Generation, res.Err = s.svc.save(ctx, op, slot, graph)
	}

	if res.Err != nil {
		s.log.Warn("scheduled save failed",
			slog.String("trigger", string(trigger)),
			slog.String("slot", slot),
			slog.String("error", res.Err.Error()),
		)
	}
	return res
}

func opFor(trigger Trigger) string {
	if trigger == TriggerAutosave {
		return journal.OpAutosave
	}
	return journal.OpSave
}

// deliver hands a result to the consumer without ever blocking. A full
// channel drops the result with a warning; the save itself already
// happened and is journaled.
func (s *Scheduler) deliver(r Result) {
	select {
	case s.results <- r:
	default:
		s.log.Warn("results channel full, dropping result",
			slog.String("trigger", string(r.Trigger)),
			slog.String("slot", r.Slot),
		)
	}
}
