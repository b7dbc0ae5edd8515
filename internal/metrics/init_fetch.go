package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFetchMetrics() {
	r.FetchRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_wikidata_requests_total",
			Help: "Requests sent to the Wikidata API by result",
		},
		[]string{"status"},
	)

	r.FetchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinship_wikidata_request_duration_seconds",
			Help:    "Wikidata API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.FetchRetriesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kinship_wikidata_retries_total",
			Help: "Wikidata API requests that were retried",
		},
	)

	r.EntitiesFetched = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_entities_total",
			Help: "Entities requested from Wikidata by outcome",
		},
		[]string{"outcome"},
	)
}
