package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts orchestrated actions. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	actionsTotal *prometheus.CounterVec
	readFailures *prometheus.CounterVec
	confirmTime  *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ico_actions_total",
		Help: "Orchestrated actions by outcome",
	}, []string{"action", "result"})

	reads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ico_read_failures_total",
		Help: "Failed state reads during refresh",
	}, []string{"field"})

	confirm := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ico_confirmation_seconds",
		Help:    "Time from submission to mined receipt",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"action"})

	r := prometheus.NewRegistry()
	r.MustRegister(actions, reads, confirm)

	return &Metrics{
		registry:     r,
		actionsTotal: actions,
		readFailures: reads,
		confirmTime:  confirm,
	}
}

// Registry exposes the collectors for export.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the current values in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) incAction(action, result string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(action, result).Inc()
}

func (m *Metrics) incReadFailure(field string) {
	if m == nil {
		return
	}
	m.readFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) observeConfirm(action string, d time.Duration) {
	if m == nil {
		return
	}
	m.confirmTime.WithLabelValues(action).Observe(d.Seconds())
}
