package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for tester connections.
type WebSocketMetrics struct {
	ActiveConnections prometheus.Gauge
	MessagesReceived  *prometheus.CounterVec
	FramesSent        prometheus.Counter
	FramesDropped     prometheus.Counter
	FrameBytes        prometheus.Histogram
	LogLinesDropped   prometheus.Counter
}

// NewWebSocketMetrics creates and registers WebSocket metrics on the given registry.
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active WebSocket connections.",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_received_total",
			Help:      "Total number of client messages received, by message type.",
		}, []string{"type"}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_sent_total",
			Help:      "Total number of PNG frames written to clients.",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames superseded before they could be written.",
		}),
		FrameBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frame_bytes",
			Help:      "Size of encoded PNG frames in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		LogLinesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "log_lines_dropped_total",
			Help:      "Total number of log-panel lines dropped for slow clients.",
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.MessagesReceived, m.FramesSent, m.FramesDropped, m.FrameBytes, m.LogLinesDropped)
	return m
}
