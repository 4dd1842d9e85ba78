// Package metrics exposes Prometheus collectors for the API and workers.
// All methods are safe on a nil *Metrics so callers can run without it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finanzas"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	recurringRuns    *prometheus.CounterVec
	recurringEntries *prometheus.CounterVec

	objectiveTransitions *prometheus.CounterVec

	eventsPublished *prometheus.CounterVec
	eventsConsumed  *prometheus.CounterVec
	circuitState    *prometheus.GaugeVec

	cacheLookups *prometheus.CounterVec
}

// New builds a registry with process/Go collectors and the app's metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"method", "route"},
		),
		recurringRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recurring_runs_total",
				Help:      "Recurring batch executions by final status",
			},
			[]string{"status"},
		),
		recurringEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recurring_entries_total",
				Help:      "Recurring occurrences handled by result (created, skipped, failed)",
			},
			[]string{"result"},
		),
		objectiveTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "objective_transitions_total",
				Help:      "Objective status transitions by new status and origin",
			},
			[]string{"status", "origin"},
		),
		eventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Transaction events published by type and result",
			},
			[]string{"type", "result"},
		),
		eventsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_consumed_total",
				Help:      "Transaction events consumed by type and result",
			},
			[]string{"type", "result"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Summary cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.recurringRuns, m.recurringEntries,
		m.objectiveTransitions,
		m.eventsPublished, m.eventsConsumed, m.circuitState,
		m.cacheLookups,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordRecurringRun(status string, created, skipped, failed int) {
	if m == nil {
		return
	}
	m.recurringRuns.WithLabelValues(status).Inc()
	m.recurringEntries.WithLabelValues("created").Add(float64(created))
	m.recurringEntries.WithLabelValues("skipped").Add(float64(skipped))
	m.recurringEntries.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) RecordObjectiveTransition(status, origin string) {
	if m == nil {
		return
	}
	m.objectiveTransitions.WithLabelValues(status, origin).Inc()
}

func (m *Metrics) RecordPublish(eventType string, err error) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType, result(err)).Inc()
}

func (m *Metrics) RecordConsume(eventType string, err error) {
	if m == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(eventType, result(err)).Inc()
}

// SetCircuitState records 0 for closed, 1 for open and 2 for half-open.
func (m *Metrics) SetCircuitState(name string, state int) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(name).Set(float64(state))
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
