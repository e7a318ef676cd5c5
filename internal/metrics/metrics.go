package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus instruments for the HTTP API and the
// export worker.
type Collector struct {
	namespace string

	// HTTP
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	// Collection cache in front of the store
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec

	// Store operations
	storeOps    *prometheus.CounterVec
	storeErrors *prometheus.CounterVec

	// Export worker
	exports       *prometheus.CounterVec
	exportLatency prometheus.Histogram
}

// NewCollector creates the instrument set under the given namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		namespace: namespace,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests per route and status",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency per route",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"route"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of collection cache hits per collection",
			},
			[]string{"collection"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of collection cache misses per collection",
			},
			[]string{"collection"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of store operations per entity and operation",
			},
			[]string{"entity", "operation"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Total number of failed store operations per entity and operation",
			},
			[]string{"entity", "operation"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of sheet export attempts per status",
			},
			[]string{"status"},
		),
		exportLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "export_duration_seconds",
				Help:      "Sheet export latency",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}
}

// Register registers all instruments with the given Prometheus registry.
func (c *Collector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.httpRequests,
		c.httpLatency,
		c.cacheHits,
		c.cacheMisses,
		c.storeOps,
		c.storeErrors,
		c.exports,
		c.exportLatency,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordRequest records a completed HTTP request.
func (c *Collector) RecordRequest(route, method, status string, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, method, status).Inc()
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordCacheLookup records a collection cache lookup.
func (c *Collector) RecordCacheLookup(collection string, hit bool) {
	if hit {
		c.cacheHits.WithLabelValues(collection).Inc()
	} else {
		c.cacheMisses.WithLabelValues(collection).Inc()
	}
}

// RecordStoreOp records a store operation and its outcome.
func (c *Collector) RecordStoreOp(entity, operation string, err error) {
	c.storeOps.WithLabelValues(entity, operation).Inc()
	if err != nil {
		c.storeErrors.WithLabelValues(entity, operation).Inc()
	}
}

// RecordExport records a sheet export attempt.
func (c *Collector) RecordExport(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	c.exports.WithLabelValues(status).Inc()
	c.exportLatency.Observe(duration.Seconds())
}
