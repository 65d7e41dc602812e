package save

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "emberkeep",
		Subsystem: "save",
		Name:      "operations_total",
		Help:      "Terminal outcomes of save subsystem operations.",
	}, []string{"op", "status"})

	operationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "emberkeep",
		Subsystem: "save",
		Name:      "operation_duration_seconds",
		Help:      "Wall time of save subsystem operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	artifactBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "emberkeep",
		Subsystem: "save",
		Name:      "artifact_bytes",
		Help:      "Size of published artifacts.",
		Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8),
	})

	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "emberkeep",
		Subsystem: "save",
		Name:      "coalesced_triggers_total",
		Help:      "Save triggers dropped because the slot already had a save in flight.",
	})

	autosaveRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "emberkeep",
		Subsystem: "save",
		Name:      "autosave_retries_total",
		Help:      "Autosaves that failed once and used their single retry.",
	})
)
