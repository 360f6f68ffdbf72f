package progress

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Deltas          *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	Toggles         prometheus.Counter
	OverallProgress prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Deltas: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_deltas_total",
				Help: "Progress delta requests by outcome",
			},
			[]string{"outcome"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progress_transitions_total",
				Help: "State transitions produced by progress deltas",
			},
			[]string{"kind"},
		),
		Toggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progress_module_toggles_total",
			Help: "Module expansion toggles",
		}),
		OverallProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "progress_overall_ratio",
			Help: "Fraction of completed modules in the current snapshot",
		}),
	}
	reg.MustRegister(m.Deltas, m.Transitions, m.Toggles, m.OverallProgress)
	return m
}

func (m *Metrics) observeDelta(r Result) {
	if m == nil {
		return
	}
	m.Deltas.WithLabelValues(string(r.Outcome)).Inc()
	for _, c := range r.Changes {
		m.Transitions.WithLabelValues(string(c.Kind)).Inc()
	}
	m.OverallProgress.Set(r.Snapshot.OverallProgress())
}

func (m *Metrics) observeToggle() {
	if m == nil {
		return
	}
	m.Toggles.Inc()
}
