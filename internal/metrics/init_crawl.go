package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCrawlMetrics() {
	r.CrawlsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinship_crawls_total",
			Help: "Total number of crawls by terminal state",
		},
		[]string{"outcome"},
	)

	r.CrawlDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinship_crawl_duration_seconds",
			Help:    "Wall time of a crawl from seed to terminal state",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
	)

	r.CrawlRounds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinship_crawl_rounds",
			Help:    "Number of fetch rounds per crawl",
			Buckets: prometheus.LinearBuckets(1, 1, 15),
		},
	)

	r.CrawlFrontierSize = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinship_crawl_frontier_size",
			Help:    "Frontier size when a crawl ends",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 150, 250, 500},
		},
	)

	r.CrawlsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kinship_crawls_in_flight",
			Help: "Crawls currently running",
		},
	)
}
