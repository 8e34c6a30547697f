// Package metrics holds the Prometheus collectors for the catalog service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several instances can coexist in tests.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	QueryDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	SeedLoads   *prometheus.CounterVec
	CatalogSize prometheus.Gauge
}

// NewCollector creates and registers every collector under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Catalog query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_cache_hits_total",
				Help:      "Total number of statistics cache hits",
			},
			[]string{"operation"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_cache_misses_total",
				Help:      "Total number of statistics cache misses",
			},
			[]string{"operation"},
		),
		SeedLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seed_loads_total",
				Help:      "Total number of bulk loads by result",
			},
			[]string{"result"},
		),
		CatalogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_records",
				Help:      "Number of records loaded by the last bulk load",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.QueryDuration,
		c.CacheHits,
		c.CacheMisses,
		c.SeedLoads,
		c.CatalogSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the exposition format for this collector's registry.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) ObserveQuery(operation string, d time.Duration) {
	if c == nil {
		return
	}
	c.QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) CacheHit(operation string) {
	if c == nil {
		return
	}
	c.CacheHits.WithLabelValues(operation).Inc()
}

func (c *Collector) CacheMiss(operation string) {
	if c == nil {
		return
	}
	c.CacheMisses.WithLabelValues(operation).Inc()
}

// SeedLoaded records a bulk load outcome; records is only used on success.
func (c *Collector) SeedLoaded(records int, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.SeedLoads.WithLabelValues("error").Inc()
		return
	}
	c.SeedLoads.WithLabelValues("ok").Inc()
	c.CatalogSize.Set(float64(records))
}
