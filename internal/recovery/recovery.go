// Package recovery walks a slot's generations newest-first until one of
// them opens cleanly. A corrupt artifact is recorded and skipped, never
// deleted: the bytes stay on disk for offline inspection, and the next
// save cycle ages them out through normal rotation.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emberkeep/emberkeep/internal/state"
	"github.com/emberkeep/emberkeep/internal/store"
)

var fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "emberkeep",
	Subsystem: "recovery",
	Name:      "fallbacks_total",
	Help:      "Loads that skipped at least one corrupt generation.",
})

// Store is the slice of the artifact store that recovery needs.
type Store interface {
	ListGenerations(ctx context.Context, slot string) ([]int64, error)
	ReadGeneration(ctx context.Context, slot string, generation int64) ([]byte, error)
}

// Opener turns a sealed artifact back into a state graph. Any error
// marks the artifact as unusable for this load.
type Opener interface {
	Open(artifact []byte) (*state.Graph, error)
}

// Attempt records one generation that failed to open during a walk.
type Attempt struct {
	Generation int64
	Err        error
}

// Result is a successful recovery.
type Result struct {
	// Graph is the restored state.
	Graph *state.Graph

	// Generation is the artifact the state came from.
	Generation int64

	// Bytes is the on-disk size of that artifact.
	Bytes int64

	// Fallback is true when newer generations had to be skipped.
	Fallback bool

	// Attempts lists the generations skipped before Generation, newest
	// first. Empty on a clean load.
	Attempts []Attempt
}

// Coordinator resolves loads against a slot's generation chain.
type Coordinator struct {
	store  Store
	opener Opener
	log    *slog.Logger
}

// New returns a Coordinator reading artifacts from store and opening
// them with opener.
func New(store Store, opener Opener, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, opener: opener, log: log}
}

// Recover walks slot's generations newest-first and returns the first
// one that opens. An empty slot yields a not-found IOError. A slot
// whose every generation fails yields an ExhaustedError carrying the
// per-generation causes. Recover never removes an artifact, however
// corrupt; a timeout or cancellation aborts the walk immediately
// instead of being miscounted as corruption.
func (c *Coordinator) Recover(ctx context.Context, slot string) (*Result, error) {
	generations, err := c.store.ListGenerations(ctx, slot)
	if err != nil {
		return nil, err
	}
	if len(generations) == 0 {
		return nil, store.NewNotFound("load", slot, 0)
	}

	var attempts []Attempt
	for _, generation := range generations {
		data, err := c.store.ReadGeneration(ctx, slot, generation)
		if err != nil {
			if store.IsTimeout(err) {
				return nil, err
			}
			attempts = append(attempts, Attempt{Generation: generation, Err: err})
			c.log.Warn("generation unreadable, trying older",
				slog.String("slot", slot),
				slog.Int64("generation", generation),
				slog.String("error", err.Error()),
			)
			continue
		}

		graph, err := c.opener.Open(data)
		if err != nil {
			attempts = append(attempts, Attempt{Generation: generation, Err: err})
			c.log.Warn("generation failed to open, trying older",
				slog.String("slot", slot),
				slog.Int64("generation", generation),
				slog.String("error", err.Error()),
			)
			continue
		}

		result := &Result{
			Graph:      graph,
			Generation: generation,
			Bytes:      int64(len(data)),
			Fallback:   len(attempts) > 0,
			Attempts:   attempts,
		}
		if result.Fallback {
			fallbacksTotal.Inc()
			c.log.Warn("recovered from older generation",
				slog.String("slot", slot),
				slog.Int64("generation", generation),
				slog.Int("skipped", len(attempts)),
			)
		}
		return result, nil
	}

	return nil, &ExhaustedError{Slot: slot, Attempts: attempts}
}

// ExhaustedError means every generation in the slot failed to open.
// The artifacts are left on disk untouched.
type ExhaustedError struct {
	// Slot is the slot that could not be recovered.
	Slot string

	// Attempts lists every generation tried, newest first, with the
	// error that disqualified it.
	Attempts []Attempt
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("ALL_GENERATIONS_CORRUPT: no loadable generation (slot=%s, tried=%d)",
		e.Slot, len(e.Attempts))
}

// Unwrap exposes the per-generation causes to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		errs = append(errs, attempt.Err)
	}
	return errs
}

// IsExhausted returns true if the error means every generation of a
// slot failed to open.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}
