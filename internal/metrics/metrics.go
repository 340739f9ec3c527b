// Package metrics exposes refresh and window counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moodwatch/internal/api"
	"moodwatch/internal/model"
	"moodwatch/internal/scheduler"
)

const namespace = "moodwatch"

// Metrics holds the collectors of one dashboard process.
type Metrics struct {
	registry *prometheus.Registry

	Refreshes       *prometheus.CounterVec
	StaleDiscards   *prometheus.CounterVec
	FetchFailures   *prometheus.CounterVec
	WindowEvictions *prometheus.CounterVec
	LastCommit      *prometheus.GaugeVec
}

// New builds a Metrics instance on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by view and result (ok, error).",
		}, []string{"view", "result"}),

		// stale results are never shown to the user
		StaleDiscards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_discards_total",
			Help:      "Refresh results dropped because their schedule was stopped or restarted.",
		}, []string{"view"}),

		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed API fetches by endpoint.",
		}, []string{"source"}),

		WindowEvictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_evictions_total",
			Help:      "Points evicted from live rolling windows by metric.",
		}, []string{"metric"}),

		LastCommit: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_commit_timestamp_seconds",
			Help:      "Unix time of the last committed refresh per view.",
		}, []string{"view"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns scheduler hooks that record cycle outcomes.
func (m *Metrics) Hooks() scheduler.Hooks {
	return scheduler.Hooks{
		OnCommit: func(view string) {
			m.Refreshes.WithLabelValues(view, "ok").Inc()
			m.LastCommit.WithLabelValues(view).Set(float64(time.Now().Unix()))
		},
		OnStale: func(view string) {
			m.StaleDiscards.WithLabelValues(view).Inc()
		},
		OnError: func(view string, err error) {
			m.Refreshes.WithLabelValues(view, "error").Inc()
			for _, failure := range api.Failures(err) {
				source := "unknown"
				var fe *api.FetchError
				if errors.As(failure, &fe) {
					source = fe.Source
				}
				m.FetchFailures.WithLabelValues(source).Inc()
			}
		},
	}
}

// ObserveEviction counts one evicted point of metric's window.
func (m *Metrics) ObserveEviction(metric model.Metric) {
	m.WindowEvictions.WithLabelValues(string(metric)).Inc()
}
