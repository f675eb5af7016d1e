package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification engine.
type Metrics struct {
	// Terminal outcomes by modality and error code ("valid" when none)
	Outcomes *prometheus.CounterVec

	VerifyLatency *prometheus.HistogramVec

	RiskScore  prometheus.Histogram
	RiskLevels *prometheus.CounterVec

	// Registry call latency by registry and status
	RegistryLatency *prometheus.HistogramVec

	HistoryWriteFailures prometheus.Counter
	SessionsExpired      prometheus.Counter
	RecordsRegistered    *prometheus.CounterVec
	RecordsRevoked       prometheus.Counter
}

// New registers the metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers with reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_verification_outcomes_total",
			Help: "Verification outcomes by method and result code",
		}, []string{"method", "code"}),

		VerifyLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_verification_duration_seconds",
			Help:    "Duration of a verification including fraud scoring and cross-validation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),

		RiskScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "docverify_fraud_risk_score",
			Help:    "Distribution of fraud risk scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		RiskLevels: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_fraud_risk_levels_total",
			Help: "Fraud assessments by risk level",
		}, []string{"level"}),

		RegistryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_registry_duration_seconds",
			Help:    "Duration of registry cross-validation calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}, []string{"registry", "status"}),

		HistoryWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "docverify_history_write_failures_total",
			Help: "History entries that could not be persisted",
		}),

		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "docverify_sessions_expired_total",
			Help: "Sessions expired by the idle sweep",
		}),

		RecordsRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_records_registered_total",
			Help: "Documents registered by type",
		}, []string{"document_type"}),

		RecordsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "docverify_records_revoked_total",
			Help: "Documents revoked",
		}),
	}
}

func (m *Metrics) IncrementOutcome(method, code string) {
	if m != nil {
		if code == "" {
			code = "valid"
		}
		m.Outcomes.WithLabelValues(method, code).Inc()
	}
}

func (m *Metrics) ObserveVerifyLatency(method string, d time.Duration) {
	if m != nil {
		m.VerifyLatency.WithLabelValues(method).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveRisk(score int, level string) {
	if m != nil {
		m.RiskScore.Observe(float64(score))
		m.RiskLevels.WithLabelValues(level).Inc()
	}
}

func (m *Metrics) ObserveRegistryLatency(registry, status string, d time.Duration) {
	if m != nil {
		m.RegistryLatency.WithLabelValues(registry, status).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementHistoryWriteFailures() {
	if m != nil {
		m.HistoryWriteFailures.Inc()
	}
}

func (m *Metrics) AddSessionsExpired(n int) {
	if m != nil && n > 0 {
		m.SessionsExpired.Add(float64(n))
	}
}

func (m *Metrics) IncrementRegistered(documentType string) {
	if m != nil {
		m.RecordsRegistered.WithLabelValues(documentType).Inc()
	}
}

func (m *Metrics) IncrementRevoked() {
	if m != nil {
		m.RecordsRevoked.Inc()
	}
}
