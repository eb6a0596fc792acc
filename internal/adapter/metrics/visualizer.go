package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// VisualizerMetrics holds Prometheus metrics for tester sessions. It
// implements app.Observer.
type VisualizerMetrics struct {
	EventsProcessed  *prometheus.CounterVec
	RenderDuration   prometheus.Histogram
	ContactsPerFrame prometheus.Histogram
	Clears           *prometheus.CounterVec
	ContactsDropped  *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// NewVisualizerMetrics creates and registers session metrics on the given registry.
func NewVisualizerMetrics(reg prometheus.Registerer) *VisualizerMetrics {
	m := &VisualizerMetrics{
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pointer_events_total",
			Help:      "Total number of pointer events, by event, input kind and outcome.",
		}, []string{"event", "kind", "outcome"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of one full surface render in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		ContactsPerFrame: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contacts_per_frame",
			Help:      "Number of active contacts drawn per rendered frame.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10, 16},
		}),
		Clears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clears_total",
			Help:      "Total number of clear-all operations, by reason.",
		}, []string{"reason"}),
		ContactsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_cleared_total",
			Help:      "Total number of contacts dropped by clear-all, by reason.",
		}, []string{"reason"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live tester sessions.",
		}),
	}

	reg.MustRegister(m.EventsProcessed, m.RenderDuration, m.ContactsPerFrame, m.Clears, m.ContactsDropped, m.ActiveSessions)
	return m
}

func (m *VisualizerMetrics) EventProcessed(event, kind, outcome string) {
	m.EventsProcessed.WithLabelValues(event, kind, outcome).Inc()
}

func (m *VisualizerMetrics) FrameRendered(d time.Duration, contacts int) {
	m.RenderDuration.Observe(d.Seconds())
	m.ContactsPerFrame.Observe(float64(contacts))
}

func (m *VisualizerMetrics) ContactsCleared(reason string, dropped int) {
	m.Clears.WithLabelValues(reason).Inc()
	m.ContactsDropped.WithLabelValues(reason).Add(float64(dropped))
}

func (m *VisualizerMetrics) SessionsActive(n int) {
	m.ActiveSessions.Set(float64(n))
}
