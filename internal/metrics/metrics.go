// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storyline"

var registerOnce sync.Once

// Register adds every collector to the default registry. Calls after the first are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			EmbeddingRequestsTotal,
			EmbeddingRequestDuration,
			EmbeddingTokensTotal,
			EmbeddingErrorsTotal,
			EmbeddingRetriesTotal,
			EmbeddingCacheTotal,
			IndexingJobsTotal,
			IndexingQueueDepth,
		)
	})
}
