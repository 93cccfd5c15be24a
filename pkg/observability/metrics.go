package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeIgnored  = "ignored"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
)

// Metrics groups the collectors exported by the builder.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	actions   prometheus.Gauge
	sessions  prometheus.Gauge
	events    *prometheus.CounterVec
}

// NewMetrics creates and registers the builder collectors on reg.
// If reg is nil, a private registry is used.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automator_mutations_total",
			Help: "Builder operations by name and outcome",
		}, []string{"op", "outcome"}),
		actions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "automator_actions",
			Help: "Actions currently held across all workflows",
		}),
		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "automator_sessions",
			Help: "Open editor sessions",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automator_events_published_total",
			Help: "Change events handed to publishers by outcome",
		}, []string{"publisher", "outcome"}),
	}
}

// ObserveMutation counts one builder operation.
func (m *Metrics) ObserveMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// AddActions adjusts the live action gauge by delta.
func (m *Metrics) AddActions(delta int) {
	if m == nil {
		return
	}
	m.actions.Add(float64(delta))
}

// SessionOpened increments the session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed decrements the session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// ObserveEvent counts one event delivery attempt.
func (m *Metrics) ObserveEvent(publisher string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.events.WithLabelValues(publisher, outcome).Inc()
}
