package observability

import (
	"net/http"
	"strconv"
	"time"

	"crux-backend/domain/core/valueobjects"
	"crux-backend/domain/events"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Domain metrics
	DimensionsCreatedTotal prometheus.Counter
	DimensionsDeletedTotal *prometheus.CounterVec
	TagSyncs               *prometheus.CounterVec
	TagsAdded              *prometheus.CounterVec
	TagsRemoved            *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
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
		DimensionsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dimensions_created_total",
				Help:      "Total number of dimensions created",
			},
		),
		DimensionsDeletedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dimensions_deleted_total",
				Help:      "Total number of dimensions soft-deleted",
			},
			[]string{"reason"},
		),
		TagSyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tag_syncs_total",
				Help:      "Total number of tag synchronizations",
			},
			[]string{"resource_type"},
		),
		TagsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tags_added_total",
				Help:      "Total number of tags created by synchronization",
			},
			[]string{"resource_type"},
		),
		TagsRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tags_removed_total",
				Help:      "Total number of tags soft-deleted by synchronization",
			},
			[]string{"resource_type"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.DimensionsCreatedTotal,
		c.DimensionsDeletedTotal,
		c.TagSyncs,
		c.TagsAdded,
		c.TagsRemoved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) DimensionsCreated(n int) {
	c.DimensionsCreatedTotal.Add(float64(n))
}

func (c *Collector) DimensionsDeleted(reason events.DeletionReason, n int) {
	c.DimensionsDeletedTotal.WithLabelValues(string(reason)).Add(float64(n))
}

func (c *Collector) TagsSynchronized(resourceType valueobjects.ResourceType, added, removed int) {
	rt := string(resourceType)
	c.TagSyncs.WithLabelValues(rt).Inc()
	c.TagsAdded.WithLabelValues(rt).Add(float64(added))
	c.TagsRemoved.WithLabelValues(rt).Add(float64(removed))
}

// Middleware records request counts and latency by chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
