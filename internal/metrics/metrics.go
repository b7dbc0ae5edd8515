package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every kinship collector on its own prometheus registry.
// All Record methods accept a nil receiver so callers never need to check
// whether metrics are enabled.
type Registry struct {
	registry *prometheus.Registry

	CrawlsTotal        *prometheus.CounterVec
	CrawlDuration      prometheus.Histogram
	CrawlRounds        prometheus.Histogram
	CrawlFrontierSize  prometheus.Histogram
	CrawlsInFlight     prometheus.Gauge
	FetchRequestsTotal *prometheus.CounterVec
	FetchDuration      prometheus.Histogram
	FetchRetriesTotal  prometheus.Counter
	EntitiesFetched    *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheLookupsTotal *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initCrawlMetrics()
	r.initFetchMetrics()
	r.initHTTPMetrics()
	r.initCacheMetrics()
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordCrawl records a finished crawl by its terminal state.
func (r *Registry) RecordCrawl(outcome string, duration time.Duration, rounds, frontier int) {
	if r == nil {
		return
	}
	r.CrawlsTotal.WithLabelValues(outcome).Inc()
	r.CrawlDuration.Observe(duration.Seconds())
	r.CrawlRounds.Observe(float64(rounds))
	r.CrawlFrontierSize.Observe(float64(frontier))
}

func (r *Registry) CrawlStarted() {
	if r == nil {
		return
	}
	r.CrawlsInFlight.Inc()
}

func (r *Registry) CrawlFinished() {
	if r == nil {
		return
	}
	r.CrawlsInFlight.Dec()
}

// RecordFetch records one HTTP round trip to the entity API.
func (r *Registry) RecordFetch(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.FetchRequestsTotal.WithLabelValues(status).Inc()
	r.FetchDuration.Observe(duration.Seconds())
}

func (r *Registry) RecordRetry() {
	if r == nil {
		return
	}
	r.FetchRetriesTotal.Inc()
}

// RecordEntities counts entities by outcome: found, missing or failed.
func (r *Registry) RecordEntities(outcome string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.EntitiesFetched.WithLabelValues(outcome).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func (r *Registry) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookupsTotal.WithLabelValues(result).Inc()
}
