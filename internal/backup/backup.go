// Package backup enforces the per-slot retention policy. After every
// successful publish the slot is rotated: the newest artifact plus a
// bounded number of prior generations survive, everything older is
// evicted oldest-first. Eviction is best effort. A failed removal is
// logged and counted but never rolls back or fails the save that
// triggered it.
package backup

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "emberkeep",
		Subsystem: "backup",
		Name:      "evictions_total",
		Help:      "Backup generations evicted by rotation.",
	})
	evictionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "emberkeep",
		Subsystem: "backup",
		Name:      "eviction_failures_total",
		Help:      "Backup evictions that failed and were left in place.",
	})
)

// Store is the slice of the artifact store that rotation needs.
type Store interface {
	ListGenerations(ctx context.Context, slot string) ([]int64, error)
	RemoveGeneration(ctx context.Context, slot string, generation int64) error
}

// Manager rotates slot directories down to the configured retention.
type Manager struct {
	store Store
	keep  int
	log   *slog.Logger
}

// New returns a Manager that retains the newest artifact plus keep
// prior generations. A negative keep is treated as zero.
func New(store Store, keep int, log *slog.Logger) *Manager {
	if keep < 0 {
		keep = 0
	}
	return &Manager{store: store, keep: keep, log: log}
}

// Keep reports how many prior generations survive a rotation.
func (m *Manager) Keep() int {
	return m.keep
}

// Rotate evicts generations beyond the retention window, oldest first,
// and returns the generations actually removed. Individual eviction
// failures are logged and skipped; the error return covers only the
// listing itself.
func (m *Manager) Rotate(ctx context.Context, slot string) ([]int64, error) {
	generations, err := m.store.ListGenerations(ctx, slot)
	if err != nil {
		return nil, err
	}

	retain := m.keep + 1
	if len(generations) <= retain {
		return nil, nil
	}

	var evicted []int64
	for i := len(generations) - 1; i >= retain; i-- {
		generation := generations[i]
		if err := m.store.RemoveGeneration(ctx, slot, generation); err != nil {
			evictionFailuresTotal.Inc()
			m.log.Warn("failed to evict backup generation",
				slog.String("slot", slot),
				slog.Int64("generation", generation),
				slog.String("error", err.Error()),
			)
			continue
		}
		evictionsTotal.Inc()
		evicted = append(evicted, generation)
	}

	if len(evicted) > 0 {
		m.log.Info("rotated slot",
			slog.String("slot", slot),
			slog.Int("evicted", len(evicted)),
			slog.Int64("oldest_kept", generations[retain-1]),
		)
	}
	return evicted, nil
}
