// Package metrics exposes Prometheus collectors for the fetch facade, the
// HTTP API and ingestion.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/geovis/internal/core/ports/driven"
	"github.com/custodia-labs/geovis/internal/core/ports/driving"
)

// Ensure Collector implements the interface.
var _ driven.FetchObserver = (*Collector)(nil)

const namespace = "geovis"

// Collector owns a registry with every geovis metric. Each Collector has
// its own registry, so several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	fetchesTotal  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeRequests      prometheus.Gauge

	observationsIngested prometheus.Counter
	cacheWarmed          prometheus.Counter
}

// New creates a collector and registers its metrics together with the Go
// runtime and process collectors.
func New(version string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "facade",
			Name:      "fetches_total",
			Help:      "Facade fetches by operation and outcome (live, fallback, error)",
		},
		[]string{"operation", "outcome"},
	)
	c.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "facade",
			Name:      "fetch_duration_seconds",
			Help:      "Facade fetch latency including any fallback",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	c.activeRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "active_requests",
		Help:      "Number of in-flight HTTP requests",
	})
	c.observationsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_ingested_total",
		Help:      "Rank observations accepted by ingestion",
	})
	c.cacheWarmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_entries_warmed_total",
		Help:      "Cache entries refreshed by the scheduler",
	})
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information",
	}, []string{"version"})
	info.WithLabelValues(version).Set(1)

	c.registry.MustRegister(
		c.fetchesTotal,
		c.fetchDuration,
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.activeRequests,
		c.observationsIngested,
		c.cacheWarmed,
		info,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveFetch records one facade fetch.
func (c *Collector) ObserveFetch(operation, outcome string, elapsed time.Duration) {
	c.fetchesTotal.WithLabelValues(operation, outcome).Inc()
	c.fetchDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveIngest records accepted observations.
func (c *Collector) ObserveIngest(count int) {
	c.observationsIngested.Add(float64(count))
}

// ObserveCacheWarm records refreshed cache entries.
func (c *Collector) ObserveCacheWarm(count int) {
	c.cacheWarmed.Add(float64(count))
}

// InstrumentWarmer wraps warmer so every successful run is counted.
func (c *Collector) InstrumentWarmer(warmer driving.CacheWarmer) driving.CacheWarmer {
	return &instrumentedWarmer{warmer: warmer, collector: c}
}

type instrumentedWarmer struct {
	warmer    driving.CacheWarmer
	collector *Collector
}

func (w *instrumentedWarmer) WarmCaches(ctx context.Context) (int, error) {
	n, err := w.warmer.WarmCaches(ctx)
	if err != nil {
		return n, err
	}
	w.collector.ObserveCacheWarm(n)
	return n, nil
}

// Middleware returns gin middleware that records request counts and latency
// by route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		c.activeRequests.Inc()
		defer c.activeRequests.Dec()

		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := ctx.Request.Method
		status := strconv.Itoa(ctx.Writer.Status())

		c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (c *Collector) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
