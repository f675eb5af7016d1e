package alerting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Published    *prometheus.CounterVec
	Dropped      *prometheus.CounterVec
	SinkFailures prometheus.Counter
	QueueDepth   prometheus.Gauge
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_alerts_published_total",
			Help: "Alerts accepted by the dispatcher, by kind",
		}, []string{"kind"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_alerts_dropped_total",
			Help: "Alerts dropped because the dispatch queue was full, by kind",
		}, []string{"kind"}),
		SinkFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "docverify_alert_sink_failures_total",
			Help: "Alert deliveries rejected by the sink",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "docverify_alert_queue_depth",
			Help: "Alerts waiting in the dispatch queue",
		}),
	}
}

func (m *Metrics) incPublished(kind Kind) {
	if m != nil {
		m.Published.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) incDropped(kind Kind) {
	if m != nil {
		m.Dropped.WithLabelValues(string(kind)).Inc()
	}
}

func (m *Metrics) incSinkFailure() {
	if m != nil {
		m.SinkFailures.Inc()
	}
}

func (m *Metrics) setDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
