package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the voice service.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionEvents  *prometheus.CounterVec
	BoundaryErrors *prometheus.CounterVec
	StageLatency   *prometheus.HistogramVec
	TurnsCompleted prometheus.Counter

	stageWindow *StageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active voice conversation sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session lifecycle events by type.",
		}, []string{"event"}),
		BoundaryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_errors_total",
			Help:      "Remote boundary failures by boundary.",
		}, []string{"boundary"}),
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_latency_ms",
			Help:      "Per-turn pipeline stage latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000},
		}, []string{"stage"}),
		TurnsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_completed_total",
			Help:      "Completed user/assistant turn exchanges.",
		}),
		stageWindow: NewStageWindow(256),
	}
}

// ObserveStage records one pipeline stage duration in both the Prometheus
// histogram and the rolling percentile window.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil || d < 0 {
		return
	}
	ms := float64(d.Milliseconds())
	m.StageLatency.WithLabelValues(stage).Observe(ms)
	m.stageWindow.Observe(stage, ms)
}

// CountBoundaryError records one remote boundary failure.
func (m *Metrics) CountBoundaryError(boundary string) {
	if m == nil {
		return
	}
	m.BoundaryErrors.WithLabelValues(boundary).Inc()
}

// StageSnapshot returns the rolling latency percentiles for debugging UIs.
func (m *Metrics) StageSnapshot() StageSnapshot {
	return m.stageWindow.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
