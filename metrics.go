package digtrack

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "digtrack_client",
			Name:      "cache_hits_total",
			Help:      "Reads served from a fresh cached result set.",
		},
		[]string{"set"},
	)

	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "digtrack_client",
			Name:      "cache_misses_total",
			Help:      "Reads that required a fetch from the service.",
		},
		[]string{"set"},
	)

	invalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "digtrack_client",
			Name:      "cache_invalidations_total",
			Help:      "Mutations that stale-marked the cached result sets.",
		},
	)

	staleFetchesDiscardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "digtrack_client",
			Name:      "stale_fetches_discarded_total",
			Help:      "Completed fetches dropped because a newer request or an invalidation superseded them.",
		},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "digtrack_client",
			Name:      "verifications_total",
			Help:      "Magic-link verification attempts by outcome.",
		},
		[]string{"outcome"},
	)
)
