package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing Prometheus metrics.
var (
	IndexingJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexing",
			Name:      "jobs_total",
			Help:      "Story embedding jobs by outcome",
		},
		[]string{"result"}, // "indexed" / "stale" / "gone" / "error" / "dropped"
	)

	IndexingQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexing",
			Name:      "queue_depth",
			Help:      "Story embedding jobs waiting in the queue",
		},
	)
)
