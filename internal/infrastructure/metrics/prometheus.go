// Package metrics exposes ticket lifecycle and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "helpdesk"

// Recorder records metrics into its own registry.
type Recorder struct {
	registry *prometheus.Registry

	buildInfo         *prometheus.GaugeVec
	ticketsCreated    *prometheus.CounterVec
	ticketTransitions *prometheus.CounterVec
	numberConflicts   prometheus.Counter
	requestDuration   *prometheus.HistogramVec
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a recorder with process and Go runtime collectors.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information including version and environment",
		},
		[]string{"version", "environment"},
	)

	ticketsCreated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_created_total",
			Help:      "Tickets created, by priority",
		},
		[]string{"priority"},
	)

	ticketTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_actions_total",
			Help:      "Audited ticket actions, by history action",
		},
		[]string{"action"},
	)

	numberConflicts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_number_conflicts_total",
			Help:      "Ticket number collisions that triggered a retry",
		},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route pattern",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
		ticketsCreated,
		ticketTransitions,
		numberConflicts,
		requestDuration,
	)

	return &Recorder{
		registry:          registry,
		buildInfo:         buildInfo,
		ticketsCreated:    ticketsCreated,
		ticketTransitions: ticketTransitions,
		numberConflicts:   numberConflicts,
		requestDuration:   requestDuration,
	}
}

// RecordBuildInfo records version information
func (r *Recorder) RecordBuildInfo(version, environment string) {
	r.buildInfo.WithLabelValues(version, environment).Set(1)
}

func (r *Recorder) TicketCreated(priority domain.TicketPriority) {
	r.ticketsCreated.WithLabelValues(string(priority)).Inc()
}

func (r *Recorder) TicketTransition(action string) {
	r.ticketTransitions.WithLabelValues(action).Inc()
}

func (r *Recorder) NumberConflict() {
	r.numberConflicts.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware observes request latency labelled by the chi route pattern,
// so path parameters do not explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requestDuration.
			WithLabelValues(req.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
