// Package telemetry holds the exporter's own metrics. They live in a
// private registry so they never mix with the repository output on
// /metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/borg-exporter/internal/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "borg_exporter"

type Metrics struct {
	registry *prometheus.Registry

	ScrapesTotal     *prometheus.CounterVec
	ScrapeDuration   prometheus.Histogram
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	LockRetriesTotal *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScrapesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrapes_total",
				Help:      "Scrapes served on /metrics by result",
			},
			[]string{"result"}, // success, failure
		),
		ScrapeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Time taken to build a complete /metrics response",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "borg_invocations_total",
				Help:      "borg info invocations by repository and result",
			},
			[]string{"repository", "result"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "borg_invocation_duration_seconds",
				Help:      "Duration of a single borg info invocation",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"repository"},
		),
		LockRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lock_retries_total",
				Help:      "Retries caused by a locked repository",
			},
			[]string{"repository"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Scrape pipeline failures by error kind",
			},
			[]string{"kind"},
		),
	}

	m.registry.MustRegister(
		m.ScrapesTotal,
		m.ScrapeDuration,
		m.QueriesTotal,
		m.QueryDuration,
		m.LockRetriesTotal,
		m.ErrorsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exporter metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// ObserveQuery implements borg.Observer.
func (m *Metrics) ObserveQuery(repository string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(repository).Observe(d.Seconds())
	m.QueriesTotal.WithLabelValues(repository, result(err)).Inc()
}

// ObserveLockRetry implements borg.Observer.
func (m *Metrics) ObserveLockRetry(repository string) {
	if m == nil {
		return
	}
	m.LockRetriesTotal.WithLabelValues(repository).Inc()
}

// ObserveScrape records one /metrics request.
func (m *Metrics) ObserveScrape(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
	m.ScrapesTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		kind := string(errs.CodeOf(err))
		if kind == "" {
			kind = "unknown"
		}
		m.ErrorsTotal.WithLabelValues(kind).Inc()
	}
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
