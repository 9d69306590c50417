package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanshika/profilegraph/internal/connection"
	"github.com/vanshika/profilegraph/internal/domain"
)

// Resolution outcomes used as label values.
const (
	OutcomeFound             = "found"
	OutcomeNotFound          = "not_found"
	OutcomeSourceUnavailable = "source_unavailable"
	OutcomeCanceled          = "canceled"
	OutcomeError             = "error"
)

// Metrics holds all Prometheus collectors exported by the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	ResolutionHops     prometheus.Histogram

	NeighborLookupsTotal   *prometheus.CounterVec
	NeighborLookupDuration prometheus.Histogram
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profilegraph_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "profilegraph_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profilegraph_connection_resolutions_total",
				Help: "Shortest-connection searches by outcome",
			},
			[]string{"outcome"},
		),
		ResolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "profilegraph_connection_resolution_duration_seconds",
				Help:    "Shortest-connection search duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		ResolutionHops: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "profilegraph_connection_length",
				Help:    "Number of ids in returned connections",
				Buckets: prometheus.LinearBuckets(1, 1, 8),
			},
		),
		NeighborLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profilegraph_neighbor_lookups_total",
				Help: "Neighbor lookups issued against the store",
			},
			[]string{"status"},
		),
		NeighborLookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "profilegraph_neighbor_lookup_duration_seconds",
				Help:    "Neighbor lookup latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ResolutionsTotal,
		m.ResolutionDuration,
		m.ResolutionHops,
		m.NeighborLookupsTotal,
		m.NeighborLookupDuration,
	)
	return m
}

// NewRegistry returns a registry preloaded with Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler exposes registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// ObserveResolution records one finished search. size is the length of the
// returned connection and is ignored unless the search succeeded.
func (m *Metrics) ObserveResolution(err error, elapsed time.Duration, size int) {
	outcome := Outcome(err)
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == OutcomeFound {
		m.ResolutionHops.Observe(float64(size))
	}
}

// Outcome classifies a resolver error into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case errors.Is(err, connection.ErrNoConnection):
		return OutcomeNotFound
	case errors.Is(err, connection.ErrCanceled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, connection.ErrSourceUnavailable):
		return OutcomeSourceUnavailable
	default:
		return OutcomeError
	}
}

// InstrumentSource wraps src so every lookup is counted and timed.
func (m *Metrics) InstrumentSource(src connection.NeighborSource) connection.NeighborSource {
	return connection.NeighborSourceFunc(func(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error) {
		start := time.Now()
		ids, err := src.NeighborsOf(ctx, id)
		m.NeighborLookupDuration.Observe(time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		m.NeighborLookupsTotal.WithLabelValues(status).Inc()
		return ids, err
	})
}

// Middleware records request counts and latency labelled by the matched mux
// route template, keeping label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
