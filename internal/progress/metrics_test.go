package progress_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/p-n-ai/pai-progress/internal/progress"
)

func TestMetrics_ObserveEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := progress.NewMetrics(reg)
	e := newEngine(t, progress.EngineConfig{Metrics: metrics})

	for id := progress.ConceptID(1); id <= 4; id++ {
		e.ApplyProgressDelta(id, 100)
	}
	e.ApplyProgressDelta(8, 10)
	e.ApplyProgressDelta(99, 10)
	e.ToggleModuleExpansion(2)

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"applied", metrics.Deltas.WithLabelValues(string(progress.OutcomeApplied)), 4},
		{"locked", metrics.Deltas.WithLabelValues(string(progress.OutcomeConceptLocked)), 1},
		{"not found", metrics.Deltas.WithLabelValues(string(progress.OutcomeNotFound)), 1},
		{"concept completions", metrics.Transitions.WithLabelValues(string(progress.ChangeConceptCompleted)), 4},
		{"module unlocks", metrics.Transitions.WithLabelValues(string(progress.ChangeModuleUnlocked)), 1},
		{"toggles", metrics.Toggles, 1},
		{"overall", metrics.OverallProgress, 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, testutil.ToFloat64(tt.collector), 1e-9)
		})
	}
}
