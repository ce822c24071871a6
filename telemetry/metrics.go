// SPDX-License-Identifier: MIT

package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the coordinator's Prometheus collectors.
//
// All methods are safe on a nil *Metrics, so callers never need to check
// whether metrics are enabled.
type Metrics struct {
	Registry *prometheus.Registry

	rounds          prometheus.Counter
	bestCost        prometheus.Gauge
	stakeholderCost *prometheus.GaugeVec
	stalled         *prometheus.CounterVec
	violations      *prometheus.CounterVec
	withdrawn       prometheus.Counter
	roundDuration   prometheus.Histogram
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stakesearch_rounds_completed_total",
			Help: "Rounds whose results were collected and ranked.",
		}),
		bestCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stakesearch_best_cost",
			Help: "Cost of the leaderboard's top tour under the coordinator matrix.",
		}),
		stakeholderCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stakesearch_stakeholder_cost",
			Help: "Cost of each stakeholder's latest tour under the coordinator matrix.",
		}, []string{"stakeholder"}),
		stalled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stakesearch_stalled_total",
			Help: "Result requests that timed out.",
		}, []string{"stakeholder"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stakesearch_protocol_violations_total",
			Help: "Frames rejected as protocol violations.",
		}, []string{"stakeholder"}),
		withdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stakesearch_withdrawn_total",
			Help: "Stakeholders that withdrew or disconnected.",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stakesearch_round_duration_seconds",
			Help:    "Wall-clock duration of a round, broadcast to ranking.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 16),
		}),
	}
	m.Registry.MustRegister(m.rounds, m.bestCost, m.stakeholderCost, m.stalled,
		m.violations, m.withdrawn, m.roundDuration)

	return m
}

// RoundCompleted records a finished round.
func (m *Metrics) RoundCompleted(d time.Duration, best float64) {
	if m == nil {
		return
	}
	m.rounds.Inc()
	m.bestCost.Set(best)
	m.roundDuration.Observe(d.Seconds())
}

// StakeholderCost sets the latest cost of one stakeholder.
func (m *Metrics) StakeholderCost(name string, cost float64) {
	if m == nil {
		return
	}
	m.stakeholderCost.WithLabelValues(name).Set(cost)
}

// Stalled counts a timed-out result request.
func (m *Metrics) Stalled(name string) {
	if m == nil {
		return
	}
	m.stalled.WithLabelValues(name).Inc()
}

// ProtocolViolation counts a rejected frame.
func (m *Metrics) ProtocolViolation(name string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(name).Inc()
}

// Withdrawn counts a stakeholder leaving the run.
func (m *Metrics) Withdrawn() {
	if m == nil {
		return
	}
	m.withdrawn.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}

	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
