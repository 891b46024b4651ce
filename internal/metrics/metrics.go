// Package metrics exposes Prometheus collectors for debate activity and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ashureev/debate-trainer/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "debate_trainer"

// Metrics holds the service collectors. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry        *prometheus.Registry
	debatesStarted  *prometheus.CounterVec
	debatesEnded    *prometheus.CounterVec
	argumentFlags   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		debatesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "debates_started_total",
				Help:      "Debates started, by opponent personality.",
			},
			[]string{"personality"},
		),
		debatesEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "debates_concluded_total",
				Help:      "Debates sealed with a grade, by grade and reason.",
			},
			[]string{"grade", "reason"},
		),
		argumentFlags: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "argument_flags_total",
				Help:      "User arguments flagged by the evaluator, by flag.",
			},
			[]string{"flag"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	all := []prometheus.Collector{
		m.debatesStarted,
		m.debatesEnded,
		m.argumentFlags,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// DebateStarted counts a new debate.
func (m *Metrics) DebateStarted(personality domain.Persona) {
	if m == nil {
		return
	}
	m.debatesStarted.WithLabelValues(string(personality)).Inc()
}

// ArgumentEvaluated counts each flag raised on a user argument.
func (m *Metrics) ArgumentEvaluated(e domain.Evaluation) {
	if m == nil {
		return
	}
	if e.Emotional {
		m.argumentFlags.WithLabelValues("emotional").Inc()
	}
	if e.Evidence {
		m.argumentFlags.WithLabelValues("evidence").Inc()
	}
	if e.LogicalTrap {
		m.argumentFlags.WithLabelValues("logical_trap").Inc()
	}
}

// DebateConcluded counts a sealed debate.
func (m *Metrics) DebateConcluded(grade domain.Grade, reason string) {
	if m == nil {
		return
	}
	m.debatesEnded.WithLabelValues(string(grade), reason).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
